package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/sakhi-health/sakhi/internal/cycle"
	"github.com/sakhi-health/sakhi/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[uint]models.User
	nextID  uint
	findErr error
}

func newStubUserRepo(users ...models.User) *stubUserRepo {
	stub := &stubUserRepo{users: make(map[uint]models.User)}
	for _, user := range users {
		stub.users[user.ID] = user
		if user.ID > stub.nextID {
			stub.nextID = user.ID
		}
	}
	return stub
}

func (stub *stubUserRepo) FindByID(userID uint) (models.User, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.findErr != nil {
		return models.User{}, stub.findErr
	}
	user, ok := stub.users[userID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (stub *stubUserRepo) FindByNormalizedEmail(email string) (models.User, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	for _, user := range stub.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (stub *stubUserRepo) ExistsByNormalizedEmail(email string) (bool, error) {
	_, err := stub.FindByNormalizedEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (stub *stubUserRepo) Create(user *models.User) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.nextID++
	user.ID = stub.nextID
	stub.users[user.ID] = *user
	return nil
}

func (stub *stubUserRepo) UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	user := stub.users[userID]
	user.PasswordHash = passwordHash
	user.MustChangePassword = mustChangePassword
	stub.users[userID] = user
	return nil
}

func (stub *stubUserRepo) UpdateProfile(userID uint, cycleLength int, periodLength int) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	user := stub.users[userID]
	user.CycleLength = cycleLength
	user.PeriodLength = periodLength
	stub.users[userID] = user
	return nil
}

func (stub *stubUserRepo) UpdateDisplayName(userID uint, displayName string) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	user := stub.users[userID]
	user.DisplayName = displayName
	stub.users[userID] = user
	return nil
}

func (stub *stubUserRepo) ListAll() ([]models.User, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	users := make([]models.User, 0, len(stub.users))
	for _, user := range stub.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type stubCycleLogRepo struct {
	mu       sync.Mutex
	payloads map[uint][]byte
	saves    int
	loadErr  error
	saveErr  error
}

func newStubCycleLogRepo() *stubCycleLogRepo {
	return &stubCycleLogRepo{payloads: make(map[uint][]byte)}
}

func (stub *stubCycleLogRepo) LoadPayload(userID uint) ([]byte, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.loadErr != nil {
		return nil, stub.loadErr
	}
	return stub.payloads[userID], nil
}

func (stub *stubCycleLogRepo) SavePayload(userID uint, payload []byte) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.saveErr != nil {
		return stub.saveErr
	}
	stub.saves++
	stub.payloads[userID] = append([]byte(nil), payload...)
	return nil
}

type stubTrackingRepo struct {
	mu      sync.Mutex
	entries map[string]models.DailyMetric
}

func newStubTrackingRepo() *stubTrackingRepo {
	return &stubTrackingRepo{entries: make(map[string]models.DailyMetric)}
}

func trackingKey(userID uint, day string) string {
	return fmt.Sprintf("%d|%s", userID, day)
}

func (stub *stubTrackingRepo) FindByUserAndDate(userID uint, day string) (models.DailyMetric, bool, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	entry, ok := stub.entries[trackingKey(userID, day)]
	return entry, ok, nil
}

func (stub *stubTrackingRepo) ListRange(userID uint, from string, to string) ([]models.DailyMetric, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	entries := make([]models.DailyMetric, 0)
	for _, entry := range stub.entries {
		if entry.UserID == userID && entry.Date >= from && entry.Date <= to {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
	return entries, nil
}

func (stub *stubTrackingRepo) Upsert(entry *models.DailyMetric) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.entries[trackingKey(entry.UserID, entry.Date)] = *entry
	return nil
}

func quietLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func mustDay(t *testing.T, raw string) civil.Date {
	t.Helper()
	day, err := cycle.ParseDay(raw)
	if err != nil {
		t.Fatalf("parse day %q: %v", raw, err)
	}
	return day
}

func newTestCycleService(users ...models.User) (*CycleService, *stubCycleLogRepo, *stubUserRepo) {
	userRepo := newStubUserRepo(users...)
	logRepo := newStubCycleLogRepo()
	return NewCycleService(logRepo, userRepo, quietLogger()), logRepo, userRepo
}
