package services

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/sakhi-health/sakhi/internal/cycle"
	"github.com/sakhi-health/sakhi/internal/metrics"
	"github.com/sakhi-health/sakhi/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	WarningCycleLengthDefaulted = "cycle length is not set or invalid; predictions use the default 28-day cycle"
	WarningLogPartiallyRead     = "some saved cycle entries could not be read and were skipped"
)

var (
	ErrCycleLogLoadFailed = errors.New("load cycle log failed")
	ErrCycleLogSaveFailed = errors.New("save cycle log failed")
	ErrCycleUserNotFound  = errors.New("cycle user not found")
)

type CycleLogRepository interface {
	LoadPayload(userID uint) ([]byte, error)
	SavePayload(userID uint, payload []byte) error
}

type CycleUserRepository interface {
	FindByID(userID uint) (models.User, error)
}

// userCycleStore binds the repository to one user so it satisfies
// cycle.Store.
type userCycleStore struct {
	repo   CycleLogRepository
	userID uint
}

func (store userCycleStore) Load() ([]byte, error) {
	return store.repo.LoadPayload(store.userID)
}

func (store userCycleStore) Save(payload []byte) error {
	return store.repo.SavePayload(store.userID, payload)
}

// CycleService owns every read-modify-write of a user's cycle log. Writes
// for the same user are serialized; different users proceed in parallel.
type CycleService struct {
	logs   CycleLogRepository
	users  CycleUserRepository
	logger logrus.FieldLogger
	locks  *userLocks
}

// ToggleResult.State is nil when the toggle overwrote the only start on or
// before today.
type ToggleResult struct {
	Recorded cycle.PeriodEvent `json:"recorded"`
	State    *cycle.CycleState `json:"state"`
}

func NewCycleService(logs CycleLogRepository, users CycleUserRepository, logger logrus.FieldLogger) *CycleService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CycleService{
		logs:   logs,
		users:  users,
		logger: logger,
		locks:  newUserLocks(),
	}
}

// loadLog returns the user's log and any warnings raised while reading it.
func (service *CycleService) loadLog(userID uint) (*cycle.Log, []string, error) {
	store := userCycleStore{repo: service.logs, userID: userID}
	log, report, err := cycle.Load(store, service.logger.WithField("user_id", userID))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrCycleLogLoadFailed, err)
	}
	if report.Corrupt() {
		metrics.RecordDroppedEntries(len(report.Dropped))
		return log, []string{WarningLogPartiallyRead}, nil
	}
	return log, nil, nil
}

func (service *CycleService) saveLog(userID uint, log *cycle.Log) error {
	if err := cycle.Save(userCycleStore{repo: service.logs, userID: userID}, log); err != nil {
		return fmt.Errorf("%w: %v", ErrCycleLogSaveFailed, err)
	}
	return nil
}

func (service *CycleService) profileFor(userID uint) (cycle.Profile, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return cycle.Profile{}, fmt.Errorf("%w: %v", ErrCycleUserNotFound, err)
	}
	return ProfileFromUser(user), nil
}

func ProfileFromUser(user models.User) cycle.Profile {
	return cycle.Profile{
		CycleLengthDays:  user.CycleLength,
		PeriodLengthDays: user.PeriodLength,
	}
}

// LoadLog returns a snapshot of the user's log.
func (service *CycleService) LoadLog(userID uint) (*cycle.Log, []string, error) {
	return service.loadLog(userID)
}

func (service *CycleService) RecordEvent(userID uint, date civil.Date, kind cycle.Kind) error {
	return service.RecordEvents(userID, []cycle.PeriodEvent{{Date: date, Kind: kind}})
}

// RecordEvents applies events in order under one lock and persists the log
// once.
func (service *CycleService) RecordEvents(userID uint, events []cycle.PeriodEvent) error {
	for _, event := range events {
		if !event.Kind.Valid() {
			return fmt.Errorf("%w: %q", cycle.ErrInvalidKind, event.Kind)
		}
		if !event.Date.IsValid() {
			return fmt.Errorf("%w: %s", cycle.ErrInvalidDate, event.Date)
		}
	}
	if len(events) == 0 {
		return nil
	}

	unlock := service.locks.lock(userID)
	defer unlock()

	log, _, err := service.loadLog(userID)
	if err != nil {
		return err
	}
	for _, event := range events {
		log.Record(event.Date, event.Kind)
	}
	if err := service.saveLog(userID, log); err != nil {
		return err
	}

	for _, event := range events {
		metrics.RecordEvent(string(event.Kind))
	}
	service.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"events":  len(events),
	}).Debug("cycle events recorded")
	return nil
}

// State computes the cycle state for today. cycle.ErrInsufficientData is
// returned unwrapped so callers can show a placeholder.
func (service *CycleService) State(userID uint, today civil.Date) (cycle.CycleState, error) {
	profile, err := service.profileFor(userID)
	if err != nil {
		return cycle.CycleState{}, err
	}
	log, warnings, err := service.loadLog(userID)
	if err != nil {
		return cycle.CycleState{}, err
	}
	return service.computeState(log, profile, today, warnings)
}

func (service *CycleService) computeState(log *cycle.Log, profile cycle.Profile, today civil.Date, warnings []string) (cycle.CycleState, error) {
	state, outcome, err := resolveState(log, profile, today, warnings)
	if outcome != "" {
		metrics.RecordStateComputation(outcome)
	}
	return state, err
}

// resolveState is computeState without the metrics side effect. outcome is
// empty when err is neither nil nor cycle.ErrInsufficientData.
func resolveState(log *cycle.Log, profile cycle.Profile, today civil.Date, warnings []string) (cycle.CycleState, string, error) {
	state, err := cycle.Compute(log, profile, today)
	outcome := metrics.OutcomeComputed
	if errors.Is(err, cycle.ErrInvalidProfile) {
		profile.CycleLengthDays = cycle.DefaultCycleLength
		state, err = cycle.Compute(log, profile, today)
		warnings = append(warnings, WarningCycleLengthDefaulted)
		outcome = metrics.OutcomeProfileFallback
	}
	if errors.Is(err, cycle.ErrInsufficientData) {
		return cycle.CycleState{}, metrics.OutcomeInsufficientData, err
	}
	if err != nil {
		return cycle.CycleState{}, "", err
	}

	state.Warnings = append(state.Warnings, warnings...)
	return state, outcome, nil
}

// Toggle is the one-button period control: it ends an active period early
// while still inside the expected bleeding span, and otherwise starts a new
// period today.
func (service *CycleService) Toggle(userID uint, today civil.Date) (ToggleResult, error) {
	profile, err := service.profileFor(userID)
	if err != nil {
		return ToggleResult{}, err
	}

	unlock := service.locks.lock(userID)
	defer unlock()

	log, warnings, err := service.loadLog(userID)
	if err != nil {
		return ToggleResult{}, err
	}

	kind := cycle.KindStarted
	current, _, err := resolveState(log, profile, today, nil)
	switch {
	case err == nil:
		periodLength := profile.PeriodLengthDays
		if periodLength <= 0 {
			periodLength = cycle.DefaultPeriodLength
		}
		if current.PeriodActive && current.CurrentCycleDay <= periodLength {
			kind = cycle.KindEnded
		}
	case !errors.Is(err, cycle.ErrInsufficientData):
		return ToggleResult{}, err
	}

	log.Record(today, kind)
	if err := service.saveLog(userID, log); err != nil {
		return ToggleResult{}, err
	}
	metrics.RecordEvent(string(kind))

	result := ToggleResult{Recorded: cycle.PeriodEvent{Date: today, Kind: kind}}
	state, err := service.computeState(log, profile, today, warnings)
	switch {
	case err == nil:
		result.State = &state
	case !errors.Is(err, cycle.ErrInsufficientData):
		return ToggleResult{}, err
	}
	service.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"date":    today.String(),
		"kind":    string(kind),
	}).Info("period toggled")
	return result, nil
}

func (service *CycleService) Starts(userID uint) ([]civil.Date, error) {
	log, _, err := service.loadLog(userID)
	if err != nil {
		return nil, err
	}
	return log.AllStarts(), nil
}

// ExportLog returns the user's log in its canonical persisted form.
func (service *CycleService) ExportLog(userID uint) ([]byte, error) {
	log, _, err := service.loadLog(userID)
	if err != nil {
		return nil, err
	}
	return cycle.Encode(log)
}

func (service *CycleService) Calendar(userID uint, year int, month time.Month, today civil.Date) ([]cycle.DayAnnotation, error) {
	profile, err := service.profileFor(userID)
	if err != nil {
		return nil, err
	}
	if profile.CycleLengthDays < 1 {
		profile.CycleLengthDays = cycle.DefaultCycleLength
	}
	log, _, err := service.loadLog(userID)
	if err != nil {
		return nil, err
	}
	from, to := cycle.MonthBounds(year, month)
	return cycle.Annotate(log, profile, from, to, today)
}
