package cycle

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
)

func mustDay(t *testing.T, raw string) civil.Date {
	t.Helper()
	day, err := ParseDay(raw)
	if err != nil {
		t.Fatalf("parse day %q: %v", raw, err)
	}
	return day
}

func dayStrings(days []civil.Date) []string {
	values := make([]string, 0, len(days))
	for _, day := range days {
		values = append(values, day.String())
	}
	return values
}

func logWithStart(t *testing.T, raw string) *Log {
	t.Helper()
	log := NewLog()
	log.Record(mustDay(t, raw), KindStarted)
	return log
}

func TestComputeMidCycle(t *testing.T) {
	t.Parallel()

	log := logWithStart(t, "2024-03-01")

	state, err := Compute(log, Profile{CycleLengthDays: 28, PeriodLengthDays: 5}, mustDay(t, "2024-03-10"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if state.MostRecentPeriodStart.String() != "2024-03-01" {
		t.Fatalf("expected start 2024-03-01, got %s", state.MostRecentPeriodStart)
	}
	if state.DaysSinceStart != 9 || state.CurrentCycleDay != 10 {
		t.Fatalf("expected 9 days since start on cycle day 10, got %d and %d", state.DaysSinceStart, state.CurrentCycleDay)
	}
	if state.PeriodActive {
		t.Fatal("expected period to be inactive on day 10")
	}
	if state.NextPeriodDate.String() != "2024-03-29" {
		t.Fatalf("expected next period 2024-03-29, got %s", state.NextPeriodDate)
	}
	if state.OvulationDate.String() != "2024-03-15" {
		t.Fatalf("expected ovulation 2024-03-15, got %s", state.OvulationDate)
	}
	want := "2024-03-10,2024-03-11,2024-03-12,2024-03-13,2024-03-14,2024-03-15"
	if got := strings.Join(dayStrings(state.FertilityWindow), ","); got != want {
		t.Fatalf("expected fertility window %s, got %s", want, got)
	}
	if len(state.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", state.Warnings)
	}
}

func TestComputeDuringPeriod(t *testing.T) {
	t.Parallel()

	log := logWithStart(t, "2024-03-01")

	state, err := Compute(log, Profile{CycleLengthDays: 28, PeriodLengthDays: 5}, mustDay(t, "2024-03-03"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !state.PeriodActive || state.CurrentCycleDay != 3 {
		t.Fatalf("expected active period on cycle day 3, got %+v", state)
	}
	if state.PeriodEndedOn != nil {
		t.Fatalf("expected no early end, got %s", state.PeriodEndedOn)
	}
}

func TestComputeEmptyLogIsInsufficientData(t *testing.T) {
	t.Parallel()

	state, err := Compute(NewLog(), Profile{CycleLengthDays: 28, PeriodLengthDays: 5}, mustDay(t, "2024-03-03"))
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if state.CurrentCycleDay != 0 {
		t.Fatalf("expected zero state, got %+v", state)
	}

	if _, err := Compute(nil, Profile{CycleLengthDays: 28}, mustDay(t, "2024-03-03")); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for nil log, got %v", err)
	}
}

func TestComputeIgnoresStartsAfterToday(t *testing.T) {
	t.Parallel()

	log := logWithStart(t, "2024-04-01")

	if _, err := Compute(log, Profile{CycleLengthDays: 28}, mustDay(t, "2024-03-20")); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData with only a future start, got %v", err)
	}

	log.Record(mustDay(t, "2024-03-01"), KindStarted)
	state, err := Compute(log, Profile{CycleLengthDays: 28}, mustDay(t, "2024-03-20"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if state.MostRecentPeriodStart.String() != "2024-03-01" {
		t.Fatalf("expected past start to be used, got %s", state.MostRecentPeriodStart)
	}
}

func TestComputeFromStartClampsFutureStart(t *testing.T) {
	t.Parallel()

	start := mustDay(t, "2024-03-05")
	log := NewLog()
	log.Record(start, KindStarted)

	state, err := computeFromStart(log, start, Profile{CycleLengthDays: 28, PeriodLengthDays: 5}, mustDay(t, "2024-03-01"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if state.DaysSinceStart != 0 || state.CurrentCycleDay != 1 {
		t.Fatalf("expected clamp to cycle day 1, got %+v", state)
	}
	if len(state.Warnings) != 1 || state.Warnings[0] != WarningStartAfterToday {
		t.Fatalf("expected clamp warning, got %v", state.Warnings)
	}
}

func TestComputeRejectsZeroCycleLength(t *testing.T) {
	t.Parallel()

	log := logWithStart(t, "2024-03-01")

	for _, cycleLength := range []int{0, -3} {
		_, err := Compute(log, Profile{CycleLengthDays: cycleLength, PeriodLengthDays: 5}, mustDay(t, "2024-03-10"))
		if !errors.Is(err, ErrInvalidProfile) {
			t.Fatalf("cycle length %d: expected ErrInvalidProfile, got %v", cycleLength, err)
		}
	}
}

func TestComputePeriodActivity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		periodLength int
		today        string
		active       bool
	}{
		{name: "default length last day", periodLength: 0, today: "2024-03-05", active: true},
		{name: "default length after", periodLength: 0, today: "2024-03-06", active: false},
		{name: "negative length uses default", periodLength: -2, today: "2024-03-05", active: true},
		{name: "short period", periodLength: 2, today: "2024-03-03", active: false},
		{name: "start day", periodLength: 1, today: "2024-03-01", active: true},
	}

	log := logWithStart(t, "2024-03-01")
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			state, err := Compute(log, Profile{CycleLengthDays: 28, PeriodLengthDays: testCase.periodLength}, mustDay(t, testCase.today))
			if err != nil {
				t.Fatalf("expected nil error, got %v", err)
			}
			if state.PeriodActive != testCase.active {
				t.Fatalf("expected period active=%t, got %t", testCase.active, state.PeriodActive)
			}
		})
	}
}

func TestComputeEarlyEndFlipsPeriodButKeepsCycleDay(t *testing.T) {
	t.Parallel()

	log := logWithStart(t, "2024-03-01")
	log.Record(mustDay(t, "2024-03-03"), KindEnded)
	profile := Profile{CycleLengthDays: 28, PeriodLengthDays: 5}

	before, err := Compute(log, profile, mustDay(t, "2024-03-02"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !before.PeriodActive {
		t.Fatal("expected active period before the end event")
	}

	after, err := Compute(log, profile, mustDay(t, "2024-03-04"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if after.PeriodActive {
		t.Fatal("expected period to end early")
	}
	if after.PeriodEndedOn == nil || after.PeriodEndedOn.String() != "2024-03-03" {
		t.Fatalf("expected period ended on 2024-03-03, got %v", after.PeriodEndedOn)
	}
	if after.CurrentCycleDay != 4 || after.NextPeriodDate.String() != "2024-03-29" {
		t.Fatalf("expected cycle day 4 and next period 2024-03-29, got %d and %s", after.CurrentCycleDay, after.NextPeriodDate)
	}
}

func TestComputeEndedBeforeCurrentStartIsIgnored(t *testing.T) {
	t.Parallel()

	log := logWithStart(t, "2024-02-01")
	log.Record(mustDay(t, "2024-02-04"), KindEnded)
	log.Record(mustDay(t, "2024-03-01"), KindStarted)

	state, err := Compute(log, Profile{CycleLengthDays: 28, PeriodLengthDays: 5}, mustDay(t, "2024-03-02"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !state.PeriodActive || state.PeriodEndedOn != nil {
		t.Fatalf("expected previous cycle's end to be ignored, got %+v", state)
	}
}

func TestComputeCycleDayStaysInRange(t *testing.T) {
	t.Parallel()

	start := mustDay(t, "2024-01-01")
	log := NewLog()
	log.Record(start, KindStarted)

	for cycleLength := 1; cycleLength <= 45; cycleLength++ {
		for elapsed := 0; elapsed <= 120; elapsed++ {
			state, err := Compute(log, Profile{CycleLengthDays: cycleLength, PeriodLengthDays: 5}, start.AddDays(elapsed))
			if err != nil {
				t.Fatalf("length %d elapsed %d: %v", cycleLength, elapsed, err)
			}
			if state.CurrentCycleDay < 1 || state.CurrentCycleDay > cycleLength {
				t.Fatalf("cycle day %d out of range for length %d at elapsed %d", state.CurrentCycleDay, cycleLength, elapsed)
			}
		}
	}
}

func TestComputeIsIdempotentAndMonotonic(t *testing.T) {
	t.Parallel()

	log := logWithStart(t, "2024-03-01")
	profile := Profile{CycleLengthDays: 28, PeriodLengthDays: 5}
	today := mustDay(t, "2024-03-01")

	previous, err := Compute(log, profile, today)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	again, err := Compute(log, profile, today)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !reflect.DeepEqual(previous, again) {
		t.Fatalf("expected identical states, got %+v and %+v", previous, again)
	}

	for step := 1; step <= 60; step++ {
		current, err := Compute(log, profile, today.AddDays(step))
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		if current.DaysSinceStart != previous.DaysSinceStart+1 {
			t.Fatalf("step %d: days since start went %d -> %d", step, previous.DaysSinceStart, current.DaysSinceStart)
		}
		if current.CurrentCycleDay != previous.CurrentCycleDay%28+1 {
			t.Fatalf("step %d: cycle day went %d -> %d", step, previous.CurrentCycleDay, current.CurrentCycleDay)
		}
		if current.NextPeriodDate != previous.NextPeriodDate {
			t.Fatalf("step %d: next period moved from %s to %s", step, previous.NextPeriodDate, current.NextPeriodDate)
		}
		previous = current
	}
}
