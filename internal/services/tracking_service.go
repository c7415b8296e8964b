package services

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/sakhi-health/sakhi/internal/cycle"
	"github.com/sakhi-health/sakhi/internal/models"
)

const (
	MaxTrackingNotesLength  = 2000
	MaxTrackingSymptoms     = 20
	MaxTrackingSymptomRunes = 40
	MaxWaterGlasses         = 30
	MaxSleepHours           = 24
	MaxExerciseMinutes      = 1440
	MaxTrackingRangeDays    = 366
)

var (
	ErrTrackingWaterOutOfRange    = errors.New("tracking water glasses out of range")
	ErrTrackingSleepOutOfRange    = errors.New("tracking sleep hours out of range")
	ErrTrackingExerciseOutOfRange = errors.New("tracking exercise minutes out of range")
	ErrTrackingMoodInvalid        = errors.New("tracking mood invalid")
	ErrTrackingSymptomsInvalid    = errors.New("tracking symptoms invalid")
	ErrTrackingRangeInvalid       = errors.New("tracking range invalid")
)

type TrackingRepository interface {
	FindByUserAndDate(userID uint, day string) (models.DailyMetric, bool, error)
	ListRange(userID uint, from string, to string) ([]models.DailyMetric, error)
	Upsert(entry *models.DailyMetric) error
}

// TrackingInput is a partial update: nil fields keep the stored value.
type TrackingInput struct {
	WaterGlasses    *int      `json:"water_glasses"`
	SleepHours      *float64  `json:"sleep_hours"`
	ExerciseMinutes *int      `json:"exercise_minutes"`
	Mood            *string   `json:"mood"`
	Symptoms        *[]string `json:"symptoms"`
	Notes           *string   `json:"notes"`
}

type TrackingService struct {
	entries TrackingRepository
	locks   *userLocks
}

func NewTrackingService(entries TrackingRepository) *TrackingService {
	return &TrackingService{entries: entries, locks: newUserLocks()}
}

func NormalizeTrackingInput(input TrackingInput) (TrackingInput, error) {
	if input.WaterGlasses != nil && (*input.WaterGlasses < 0 || *input.WaterGlasses > MaxWaterGlasses) {
		return input, ErrTrackingWaterOutOfRange
	}
	if input.SleepHours != nil && (*input.SleepHours < 0 || *input.SleepHours > MaxSleepHours) {
		return input, ErrTrackingSleepOutOfRange
	}
	if input.ExerciseMinutes != nil && (*input.ExerciseMinutes < 0 || *input.ExerciseMinutes > MaxExerciseMinutes) {
		return input, ErrTrackingExerciseOutOfRange
	}
	if input.Mood != nil {
		mood, err := normalizeMood(*input.Mood)
		if err != nil {
			return input, err
		}
		input.Mood = &mood
	}
	if input.Symptoms != nil {
		symptoms, err := NormalizeSymptoms(*input.Symptoms)
		if err != nil {
			return input, err
		}
		input.Symptoms = &symptoms
	}
	if input.Notes != nil {
		notes := TrimTrackingNotes(*input.Notes)
		input.Notes = &notes
	}
	return input, nil
}

func normalizeMood(raw string) (string, error) {
	switch mood := strings.ToLower(strings.TrimSpace(raw)); mood {
	case models.MoodHappy, models.MoodNeutral, models.MoodSad:
		return mood, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrTrackingMoodInvalid, raw)
	}
}

// NormalizeSymptoms trims entries, drops blanks and case-insensitive
// duplicates, and keeps first-seen order.
func NormalizeSymptoms(raw []string) ([]string, error) {
	symptoms := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, entry := range raw {
		symptom := strings.TrimSpace(entry)
		if symptom == "" {
			continue
		}
		if len([]rune(symptom)) > MaxTrackingSymptomRunes {
			return nil, fmt.Errorf("%w: %q is too long", ErrTrackingSymptomsInvalid, symptom)
		}
		key := strings.ToLower(symptom)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		symptoms = append(symptoms, symptom)
	}
	if len(symptoms) > MaxTrackingSymptoms {
		return nil, fmt.Errorf("%w: more than %d entries", ErrTrackingSymptomsInvalid, MaxTrackingSymptoms)
	}
	return symptoms, nil
}

func TrimTrackingNotes(value string) string {
	runes := []rune(value)
	if len(runes) <= MaxTrackingNotesLength {
		return value
	}
	return string(runes[:MaxTrackingNotesLength])
}

// Get returns the stored entry or an empty one for day.
func (service *TrackingService) Get(userID uint, day civil.Date) (models.DailyMetric, error) {
	entry, found, err := service.entries.FindByUserAndDate(userID, day.String())
	if err != nil {
		return models.DailyMetric{}, fmt.Errorf("load tracking entry: %w", err)
	}
	if !found {
		return models.DailyMetric{UserID: userID, Date: day.String(), Symptoms: []string{}}, nil
	}
	return entry, nil
}

func (service *TrackingService) Save(userID uint, day civil.Date, input TrackingInput) (models.DailyMetric, error) {
	normalized, err := NormalizeTrackingInput(input)
	if err != nil {
		return models.DailyMetric{}, err
	}

	unlock := service.locks.lock(userID)
	defer unlock()

	entry, err := service.Get(userID, day)
	if err != nil {
		return models.DailyMetric{}, err
	}
	applyTrackingInput(&entry, normalized)
	if err := service.entries.Upsert(&entry); err != nil {
		return models.DailyMetric{}, fmt.Errorf("save tracking entry: %w", err)
	}
	return entry, nil
}

// MergeSymptoms adds symptoms to the day's entry without removing existing
// ones. A non-nil mood replaces the stored mood.
func (service *TrackingService) MergeSymptoms(userID uint, day civil.Date, mood *string, symptoms []string) error {
	unlock := service.locks.lock(userID)
	defer unlock()

	entry, err := service.Get(userID, day)
	if err != nil {
		return err
	}
	merged := append(append([]string{}, entry.Symptoms...), symptoms...)
	normalized, err := NormalizeTrackingInput(TrackingInput{Mood: mood, Symptoms: &merged})
	if err != nil {
		return err
	}
	applyTrackingInput(&entry, normalized)
	if err := service.entries.Upsert(&entry); err != nil {
		return fmt.Errorf("save tracking entry: %w", err)
	}
	return nil
}

func (service *TrackingService) List(userID uint, from civil.Date, to civil.Date) ([]models.DailyMetric, error) {
	if to.Before(from) || to.DaysSince(from) >= MaxTrackingRangeDays {
		return nil, ErrTrackingRangeInvalid
	}
	entries, err := service.entries.ListRange(userID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("list tracking entries: %w", err)
	}
	return entries, nil
}

func applyTrackingInput(entry *models.DailyMetric, input TrackingInput) {
	if input.WaterGlasses != nil {
		entry.WaterGlasses = input.WaterGlasses
	}
	if input.SleepHours != nil {
		entry.SleepHours = input.SleepHours
	}
	if input.ExerciseMinutes != nil {
		entry.ExerciseMinutes = input.ExerciseMinutes
	}
	if input.Mood != nil {
		entry.Mood = input.Mood
	}
	if input.Symptoms != nil {
		entry.Symptoms = *input.Symptoms
	}
	if input.Notes != nil {
		entry.Notes = *input.Notes
	}
}

// ParseTrackingRange parses an inclusive from/to pair of YYYY-MM-DD dates.
func ParseTrackingRange(fromRaw string, toRaw string) (civil.Date, civil.Date, error) {
	from, err := cycle.ParseDay(fromRaw)
	if err != nil {
		return civil.Date{}, civil.Date{}, ErrTrackingRangeInvalid
	}
	to, err := cycle.ParseDay(toRaw)
	if err != nil {
		return civil.Date{}, civil.Date{}, ErrTrackingRangeInvalid
	}
	return from, to, nil
}
