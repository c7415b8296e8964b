package services

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/sakhi-health/sakhi/internal/cycle"
	"github.com/sakhi-health/sakhi/internal/models"
)

var (
	ErrProfileCycleLengthOutOfRange     = errors.New("profile cycle length out of range")
	ErrProfilePeriodLengthOutOfRange    = errors.New("profile period length out of range")
	ErrProfilePeriodLengthIncompatible  = errors.New("profile period length must be shorter than cycle length")
	ErrProfileLastPeriodDateInvalid     = errors.New("profile last period date invalid")
	ErrProfileLastPeriodDateInTheFuture = errors.New("profile last period date is in the future")
)

type ProfileUserRepository interface {
	FindByID(userID uint) (models.User, error)
	UpdateProfile(userID uint, cycleLength int, periodLength int) error
	UpdateDisplayName(userID uint, displayName string) error
}

// ProfileValidationInput carries raw intake values. A zero PeriodLength
// means the field was omitted.
type ProfileValidationInput struct {
	CycleLength       int
	PeriodLength      int
	LastPeriodDateRaw string
	DisplayName       *string
}

type ProfileUpdate struct {
	CycleLength    int
	PeriodLength   int
	LastPeriodDate *civil.Date
	DisplayName    *string
}

type ProfileService struct {
	users  ProfileUserRepository
	cycles *CycleService
}

func NewProfileService(users ProfileUserRepository, cycles *CycleService) *ProfileService {
	return &ProfileService{users: users, cycles: cycles}
}

func ValidateProfile(input ProfileValidationInput, today civil.Date) (ProfileUpdate, error) {
	if input.CycleLength < models.MinCycleLength || input.CycleLength > models.MaxCycleLength {
		return ProfileUpdate{}, ErrProfileCycleLengthOutOfRange
	}

	periodLength := input.PeriodLength
	if periodLength == 0 {
		periodLength = models.DefaultPeriodLength
	}
	if periodLength < models.MinPeriodLength || periodLength > models.MaxPeriodLength {
		return ProfileUpdate{}, ErrProfilePeriodLengthOutOfRange
	}
	if periodLength >= input.CycleLength {
		return ProfileUpdate{}, ErrProfilePeriodLengthIncompatible
	}

	update := ProfileUpdate{CycleLength: input.CycleLength, PeriodLength: periodLength}
	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		update.DisplayName = &name
	}

	rawDate := strings.TrimSpace(input.LastPeriodDateRaw)
	if rawDate == "" {
		return update, nil
	}
	day, err := cycle.ParseDay(rawDate)
	if err != nil {
		return ProfileUpdate{}, ErrProfileLastPeriodDateInvalid
	}
	if day.After(today) {
		return ProfileUpdate{}, ErrProfileLastPeriodDateInTheFuture
	}
	update.LastPeriodDate = &day
	return update, nil
}

func (service *ProfileService) Load(userID uint) (models.User, error) {
	return service.users.FindByID(userID)
}

// Save validates and stores the profile. A last period date is recorded as
// a period start in the cycle log.
func (service *ProfileService) Save(userID uint, input ProfileValidationInput, today civil.Date) (models.User, error) {
	update, err := ValidateProfile(input, today)
	if err != nil {
		return models.User{}, err
	}

	// The start goes first so a failed cycle log write leaves the profile as it was.
	if update.LastPeriodDate != nil {
		if err := service.cycles.RecordEvent(userID, *update.LastPeriodDate, cycle.KindStarted); err != nil {
			return models.User{}, err
		}
	}
	if err := service.users.UpdateProfile(userID, update.CycleLength, update.PeriodLength); err != nil {
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	if update.DisplayName != nil {
		if err := service.users.UpdateDisplayName(userID, *update.DisplayName); err != nil {
			return models.User{}, fmt.Errorf("update display name: %w", err)
		}
	}
	return service.users.FindByID(userID)
}
