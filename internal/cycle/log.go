package cycle

import (
	"sort"

	"cloud.google.com/go/civil"
)

// Log holds at most one period event per calendar date. The last Record for
// a date wins. A Log is not safe for concurrent mutation; the owner
// serializes writers.
type Log struct {
	events map[civil.Date]Kind
}

func NewLog() *Log {
	return &Log{events: make(map[civil.Date]Kind)}
}

func (log *Log) Record(date civil.Date, kind Kind) {
	if !kind.Valid() || !date.IsValid() {
		return
	}
	if log.events == nil {
		log.events = make(map[civil.Date]Kind)
	}
	log.events[date] = kind
}

func (log *Log) KindOn(date civil.Date) (Kind, bool) {
	if log == nil {
		return "", false
	}
	kind, ok := log.events[date]
	return kind, ok
}

func (log *Log) Len() int {
	if log == nil {
		return 0
	}
	return len(log.events)
}

// MostRecentStart returns the latest Started date that is not after
// onOrBefore. ok is false when no such date exists.
func (log *Log) MostRecentStart(onOrBefore civil.Date) (civil.Date, bool) {
	var latest civil.Date
	found := false
	if log == nil {
		return latest, false
	}
	for date, kind := range log.events {
		if kind != KindStarted || date.After(onOrBefore) {
			continue
		}
		if !found || date.After(latest) {
			latest = date
			found = true
		}
	}
	return latest, found
}

func (log *Log) AllStarts() []civil.Date {
	return log.datesOf(KindStarted)
}

func (log *Log) Events() []PeriodEvent {
	if log == nil {
		return []PeriodEvent{}
	}
	events := make([]PeriodEvent, 0, len(log.events))
	for date, kind := range log.events {
		events = append(events, PeriodEvent{Date: date, Kind: kind})
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}

// FirstEndedBetween returns the earliest Ended date in [from, to].
func (log *Log) FirstEndedBetween(from civil.Date, to civil.Date) (civil.Date, bool) {
	var earliest civil.Date
	found := false
	if log == nil || to.Before(from) {
		return earliest, false
	}
	for date, kind := range log.events {
		if kind != KindEnded || !betweenInclusive(date, from, to) {
			continue
		}
		if !found || date.Before(earliest) {
			earliest = date
			found = true
		}
	}
	return earliest, found
}

func (log *Log) datesOf(kind Kind) []civil.Date {
	dates := make([]civil.Date, 0)
	if log == nil {
		return dates
	}
	for date, eventKind := range log.events {
		if eventKind == kind {
			dates = append(dates, date)
		}
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}
