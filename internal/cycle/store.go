package cycle

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Store persists a serialized log as a single value. Every save replaces the
// previous payload in full.
type Store interface {
	Load() ([]byte, error)
	Save(payload []byte) error
}

// Load reads the log from store. A corrupt payload is logged and yields the
// readable part of the log together with its report; only a failing store
// returns an error.
func Load(store Store, logger logrus.FieldLogger) (*Log, DecodeReport, error) {
	payload, err := store.Load()
	if err != nil {
		return nil, DecodeReport{}, fmt.Errorf("load cycle log: %w", err)
	}

	log, report, err := Decode(payload)
	if err != nil {
		if !errors.Is(err, ErrCorruptLog) {
			return nil, report, err
		}
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"dropped":    len(report.Dropped),
				"unreadable": report.Unreadable,
			}).Warn("cycle log partially unreadable, continuing with remaining entries")
		}
	}
	return log, report, nil
}

func Save(store Store, log *Log) error {
	payload, err := Encode(log)
	if err != nil {
		return err
	}
	if err := store.Save(payload); err != nil {
		return fmt.Errorf("save cycle log: %w", err)
	}
	return nil
}

type MemoryStore struct {
	mu      sync.Mutex
	payload []byte
}

func NewMemoryStore(payload []byte) *MemoryStore {
	return &MemoryStore{payload: append([]byte(nil), payload...)}
}

func (store *MemoryStore) Load() ([]byte, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return append([]byte(nil), store.payload...), nil
}

func (store *MemoryStore) Save(payload []byte) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.payload = append([]byte(nil), payload...)
	return nil
}
