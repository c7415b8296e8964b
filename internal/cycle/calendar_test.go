package cycle

import (
	"errors"
	"testing"
)

func annotationKinds(annotations []DayAnnotation) map[string]DayKind {
	kinds := make(map[string]DayKind, len(annotations))
	for _, annotation := range annotations {
		kinds[annotation.Date.String()] = annotation.Kind
	}
	return kinds
}

func expectKinds(t *testing.T, annotations []DayAnnotation, want map[string]DayKind) {
	t.Helper()
	kinds := annotationKinds(annotations)
	for day, kind := range want {
		if kinds[day] != kind {
			t.Fatalf("expected %s to be %q, got %q", day, kind, kinds[day])
		}
	}
}

func TestAnnotateMonthWithSingleStart(t *testing.T) {
	t.Parallel()

	log := logWithStart(t, "2024-03-01")
	from, to := MonthBounds(2024, 3)

	annotations, err := Annotate(log, Profile{CycleLengthDays: 28, PeriodLengthDays: 5}, from, to, mustDay(t, "2024-03-10"))
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if len(annotations) != 31 {
		t.Fatalf("expected 31 days, got %d", len(annotations))
	}

	expectKinds(t, annotations, map[string]DayKind{
		"2024-03-01": DayPeriod,
		"2024-03-02": DayPeriod,
		"2024-03-03": DayPeriod,
		"2024-03-04": DayPeriod,
		"2024-03-05": DayPeriod,
		"2024-03-06": DayNone,
		"2024-03-10": DayFertile,
		"2024-03-11": DayFertile,
		"2024-03-12": DayFertile,
		"2024-03-13": DayFertile,
		"2024-03-14": DayFertile,
		"2024-03-15": DayOvulation,
		"2024-03-16": DayNone,
		"2024-03-29": DayPredictedPeriod,
		"2024-03-30": DayPredictedPeriod,
		"2024-03-31": DayPredictedPeriod,
	})

	if !annotations[9].IsToday {
		t.Fatalf("expected %s to be today", annotations[9].Date)
	}
	if annotations[0].Event != KindStarted {
		t.Fatalf("expected start event on the first day, got %q", annotations[0].Event)
	}
}

func TestAnnotateEarlyEndShortensPeriod(t *testing.T) {
	t.Parallel()

	log := logWithStart(t, "2024-03-01")
	log.Record(mustDay(t, "2024-03-03"), KindEnded)

	annotations, err := Annotate(log, Profile{CycleLengthDays: 28, PeriodLengthDays: 5}, mustDay(t, "2024-03-01"), mustDay(t, "2024-03-06"), mustDay(t, "2024-03-06"))
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}

	expectKinds(t, annotations, map[string]DayKind{
		"2024-03-02": DayPeriod,
		"2024-03-03": DayNone,
		"2024-03-04": DayNone,
	})
	if annotations[2].Event != KindEnded {
		t.Fatalf("expected ended event on 2024-03-03, got %q", annotations[2].Event)
	}
}

func TestAnnotateNextStartCutsPreviousCycle(t *testing.T) {
	t.Parallel()

	log := logWithStart(t, "2024-03-01")
	log.Record(mustDay(t, "2024-03-12"), KindStarted)

	annotations, err := Annotate(log, Profile{CycleLengthDays: 28, PeriodLengthDays: 5}, mustDay(t, "2024-03-01"), mustDay(t, "2024-03-31"), mustDay(t, "2024-03-20"))
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}

	// The first cycle's window (03-10..03-15) stops at the second start.
	expectKinds(t, annotations, map[string]DayKind{
		"2024-03-10": DayFertile,
		"2024-03-11": DayFertile,
		"2024-03-12": DayPeriod,
		"2024-03-15": DayPeriod,
		"2024-03-26": DayOvulation,
	})
}

func TestAnnotateProjectsFutureCycles(t *testing.T) {
	t.Parallel()

	log := logWithStart(t, "2024-03-01")

	annotations, err := Annotate(log, Profile{CycleLengthDays: 20, PeriodLengthDays: 5}, mustDay(t, "2024-03-01"), mustDay(t, "2024-04-30"), mustDay(t, "2024-03-01"))
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}

	expectKinds(t, annotations, map[string]DayKind{
		"2024-03-21": DayPredictedPeriod,
		"2024-04-04": DayOvulation,
		"2024-04-10": DayPredictedPeriod,
	})
}

func TestAnnotateEmptyLog(t *testing.T) {
	t.Parallel()

	annotations, err := Annotate(NewLog(), Profile{CycleLengthDays: 28}, mustDay(t, "2024-03-01"), mustDay(t, "2024-03-07"), mustDay(t, "2024-03-03"))
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if len(annotations) != 7 {
		t.Fatalf("expected 7 days, got %d", len(annotations))
	}
	for _, annotation := range annotations {
		if annotation.Kind != DayNone {
			t.Fatalf("expected %s to be unmarked, got %q", annotation.Date, annotation.Kind)
		}
	}
	if !annotations[2].IsToday {
		t.Fatalf("expected %s to be today", annotations[2].Date)
	}
}

func TestAnnotateRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile Profile
		from    string
		to      string
		want    error
	}{
		{name: "reversed range", profile: Profile{CycleLengthDays: 28}, from: "2024-03-07", to: "2024-03-01", want: ErrInvalidRange},
		{name: "range too long", profile: Profile{CycleLengthDays: 28}, from: "2022-01-01", to: "2024-03-01", want: ErrInvalidRange},
		{name: "missing cycle length", profile: Profile{}, from: "2024-03-01", to: "2024-03-07", want: ErrInvalidProfile},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := Annotate(NewLog(), testCase.profile, mustDay(t, testCase.from), mustDay(t, testCase.to), mustDay(t, "2024-03-01"))
			if !errors.Is(err, testCase.want) {
				t.Fatalf("expected %v, got %v", testCase.want, err)
			}
		})
	}
}

func TestMonthBoundsAndParseMonth(t *testing.T) {
	t.Parallel()

	year, month, err := ParseMonth("2024-02")
	if err != nil {
		t.Fatalf("parse month: %v", err)
	}
	from, to := MonthBounds(year, month)
	if from.String() != "2024-02-01" || to.String() != "2024-02-29" {
		t.Fatalf("expected February 2024 bounds, got %s..%s", from, to)
	}

	if _, _, err := ParseMonth("2024-13"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}
