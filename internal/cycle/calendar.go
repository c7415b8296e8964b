package cycle

import (
	"fmt"

	"cloud.google.com/go/civil"
)

const MaxAnnotationSpanDays = 400

type DayKind string

const (
	DayNone            DayKind = "none"
	DayPredictedPeriod DayKind = "predicted_period"
	DayFertile         DayKind = "fertile"
	DayOvulation       DayKind = "ovulation"
	DayPeriod          DayKind = "period"
)

var dayKindRank = map[DayKind]int{
	DayNone:            0,
	DayPredictedPeriod: 1,
	DayFertile:         2,
	DayOvulation:       3,
	DayPeriod:          4,
}

type DayAnnotation struct {
	Date    civil.Date `json:"date"`
	Kind    DayKind    `json:"kind"`
	IsToday bool       `json:"is_today"`
	Event   Kind       `json:"event,omitempty"`
}

// Annotate classifies every date in [from, to] for a calendar grid. Recorded
// cycles mark their bleeding span, fertility window and ovulation day; cycles
// after the last recorded start are projected from the profile.
func Annotate(log *Log, profile Profile, from civil.Date, to civil.Date, today civil.Date) ([]DayAnnotation, error) {
	if to.Before(from) || to.DaysSince(from) >= MaxAnnotationSpanDays {
		return nil, fmt.Errorf("%w: %s..%s", ErrInvalidRange, from, to)
	}
	if profile.CycleLengthDays < 1 {
		return nil, ErrInvalidProfile
	}

	marks := make(map[civil.Date]DayKind)
	mark := func(day civil.Date, kind DayKind) {
		if day.Before(from) || day.After(to) {
			return
		}
		if dayKindRank[kind] > dayKindRank[marks[day]] {
			marks[day] = kind
		}
	}
	markFertility := func(cycleStart civil.Date, limit civil.Date, bounded bool) {
		ovulation := cycleStart.AddDays(OvulationOffsetDays)
		for _, day := range fertilityWindow(ovulation) {
			if bounded && !day.Before(limit) {
				return
			}
			if day == ovulation {
				mark(day, DayOvulation)
			} else {
				mark(day, DayFertile)
			}
		}
	}

	periodLength := profile.periodLength()
	starts := log.AllStarts()
	for index, start := range starts {
		nextStart := civil.Date{}
		bounded := index+1 < len(starts)
		if bounded {
			nextStart = starts[index+1]
		}
		for offset := 0; offset < periodLength; offset++ {
			day := start.AddDays(offset)
			if bounded && !day.Before(nextStart) {
				break
			}
			if kind, ok := log.KindOn(day); ok && kind == KindEnded && offset > 0 {
				break
			}
			mark(day, DayPeriod)
		}
		markFertility(start, nextStart, bounded)
	}

	if len(starts) > 0 {
		last := starts[len(starts)-1]
		for projected := last.AddDays(profile.CycleLengthDays); !projected.After(to); projected = projected.AddDays(profile.CycleLengthDays) {
			for offset := 0; offset < periodLength; offset++ {
				mark(projected.AddDays(offset), DayPredictedPeriod)
			}
			markFertility(projected, civil.Date{}, false)
		}
	}

	annotations := make([]DayAnnotation, 0, to.DaysSince(from)+1)
	for day := from; !day.After(to); day = day.AddDays(1) {
		annotation := DayAnnotation{
			Date:    day,
			Kind:    DayNone,
			IsToday: day == today,
		}
		if kind, ok := marks[day]; ok {
			annotation.Kind = kind
		}
		if kind, ok := log.KindOn(day); ok {
			annotation.Event = kind
		}
		annotations = append(annotations, annotation)
	}
	return annotations, nil
}
