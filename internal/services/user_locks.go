package services

import "sync"

// userLocks hands out one mutex per user id. Entries are never evicted; the
// map grows with the number of users seen by this process.
type userLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[uint]*sync.Mutex)}
}

func (registry *userLocks) lock(userID uint) func() {
	registry.mu.Lock()
	lock, ok := registry.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		registry.locks[userID] = lock
	}
	registry.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
