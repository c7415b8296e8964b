package cycle

import "cloud.google.com/go/civil"

const (
	DefaultCycleLength  = 28
	DefaultPeriodLength = 5

	// OvulationOffsetDays is counted from the period start and does not scale
	// with the cycle length.
	OvulationOffsetDays = 14
	FertilityWindowDays = 6
)

const WarningStartAfterToday = "period start is after the reference date; cycle day clamped to 1"

type Profile struct {
	CycleLengthDays  int
	PeriodLengthDays int
}

func (profile Profile) periodLength() int {
	if profile.PeriodLengthDays <= 0 {
		return DefaultPeriodLength
	}
	return profile.PeriodLengthDays
}

type CycleState struct {
	MostRecentPeriodStart civil.Date   `json:"most_recent_period_start"`
	DaysSinceStart        int          `json:"days_since_start"`
	CurrentCycleDay       int          `json:"current_cycle_day"`
	PeriodActive          bool         `json:"period_active"`
	PeriodEndedOn         *civil.Date  `json:"period_ended_on,omitempty"`
	NextPeriodDate        civil.Date   `json:"next_period_date"`
	OvulationDate         civil.Date   `json:"ovulation_date"`
	FertilityWindow       []civil.Date `json:"fertility_window"`
	Warnings              []string     `json:"warnings,omitempty"`
}

// Compute derives the cycle state as seen on today. It returns
// ErrInsufficientData when no start is recorded on or before today and
// ErrInvalidProfile when the cycle length is below one day.
func Compute(log *Log, profile Profile, today civil.Date) (CycleState, error) {
	start, ok := log.MostRecentStart(today)
	if !ok {
		return CycleState{}, ErrInsufficientData
	}
	return computeFromStart(log, start, profile, today)
}

func computeFromStart(log *Log, start civil.Date, profile Profile, today civil.Date) (CycleState, error) {
	state := CycleState{MostRecentPeriodStart: start}

	// Compute never passes a start after today; the clamp keeps this total
	// for any start it is given.
	daysSinceStart := today.DaysSince(start)
	if daysSinceStart < 0 {
		daysSinceStart = 0
		state.Warnings = append(state.Warnings, WarningStartAfterToday)
	}
	state.DaysSinceStart = daysSinceStart

	if profile.CycleLengthDays < 1 {
		return CycleState{}, ErrInvalidProfile
	}

	periodLength := profile.periodLength()
	state.PeriodActive = daysSinceStart < periodLength
	if state.PeriodActive {
		// An explicit end inside the bleeding span closes the period early.
		// The cycle day keeps counting from the start regardless.
		if endedOn, ended := log.FirstEndedBetween(start, today); ended {
			state.PeriodActive = false
			state.PeriodEndedOn = &endedOn
		}
	}

	state.CurrentCycleDay = (daysSinceStart % profile.CycleLengthDays) + 1
	state.NextPeriodDate = start.AddDays(profile.CycleLengthDays)
	state.OvulationDate = start.AddDays(OvulationOffsetDays)
	state.FertilityWindow = fertilityWindow(state.OvulationDate)
	return state, nil
}

func fertilityWindow(ovulation civil.Date) []civil.Date {
	window := make([]civil.Date, 0, FertilityWindowDays)
	for offset := FertilityWindowDays - 1; offset >= 0; offset-- {
		window = append(window, ovulation.AddDays(-offset))
	}
	return window
}
