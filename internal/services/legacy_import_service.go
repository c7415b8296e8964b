package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/sakhi-health/sakhi/internal/cycle"
	"github.com/sirupsen/logrus"
)

const (
	legacyCycleKey   = "sakhi-cycle"
	legacyTrackerKey = "trackerData"
)

var ErrLegacyImportInvalid = errors.New("legacy import payload invalid")

// LegacyImportReport summarizes one import. StartsFromPeriods counts the
// period runs found across both keys and CollapsedDays the logged period
// days that continued a run. Skipped holds a short reason for every item
// that could not be used.
type LegacyImportReport struct {
	StartsFromPeriods    int      `json:"starts_from_periods"`
	CollapsedDays        int      `json:"collapsed_days"`
	EventsFromCycleLog   int      `json:"events_from_cycle_log"`
	TrackingDaysImported int      `json:"tracking_days_imported"`
	Skipped              []string `json:"skipped"`
}

type legacyTrackerData struct {
	Periods []struct {
		Date string `json:"date"`
		Flow string `json:"flow"`
	} `json:"periods"`
	Symptoms map[string]struct {
		Mood     *string  `json:"mood"`
		Symptoms []string `json:"symptoms"`
	} `json:"symptoms"`
}

type LegacyImportService struct {
	cycles   *CycleService
	tracking *TrackingService
	logger   logrus.FieldLogger
}

func NewLegacyImportService(cycles *CycleService, tracking *TrackingService, logger logrus.FieldLogger) *LegacyImportService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LegacyImportService{cycles: cycles, tracking: tracking, logger: logger}
}

// Import folds an exported browser storage snapshot into the user's data.
// Both keys are optional. Each value may be the JSON object itself or a
// string holding it, the way browser storage keeps values.
func (service *LegacyImportService) Import(userID uint, payload []byte) (LegacyImportReport, error) {
	report := LegacyImportReport{Skipped: []string{}}

	root := map[string]json.RawMessage{}
	if err := json.Unmarshal(payload, &root); err != nil {
		return report, fmt.Errorf("%w: %v", ErrLegacyImportInvalid, err)
	}

	var tracker legacyTrackerData
	periodDays := make(map[civil.Date]struct{})
	if raw, ok := root[legacyTrackerKey]; ok {
		if err := json.Unmarshal(unwrapStoredJSON(raw), &tracker); err != nil {
			return report, fmt.Errorf("%w: %s: %v", ErrLegacyImportInvalid, legacyTrackerKey, err)
		}
		for index, period := range tracker.Periods {
			day, err := cycle.ParseDay(period.Date)
			if err != nil {
				report.Skipped = append(report.Skipped, fmt.Sprintf("%s.periods[%d]: invalid date %q", legacyTrackerKey, index, period.Date))
				continue
			}
			periodDays[day] = struct{}{}
		}
	}

	// The cycle log marks every logged bleeding day as started, so its starts
	// join the tracker days before runs are collapsed. Ended entries are
	// applied afterwards and win for their date.
	ended := make([]cycle.PeriodEvent, 0)
	if raw, ok := root[legacyCycleKey]; ok {
		log, decodeReport, err := cycle.Decode(unwrapStoredJSON(raw))
		if decodeReport.Unreadable {
			return report, fmt.Errorf("%w: %s: %v", ErrLegacyImportInvalid, legacyCycleKey, err)
		}
		for _, key := range decodeReport.Dropped {
			report.Skipped = append(report.Skipped, fmt.Sprintf("%s[%s]: malformed entry", legacyCycleKey, key))
		}
		for _, event := range log.Events() {
			if event.Kind == cycle.KindStarted {
				periodDays[event.Date] = struct{}{}
				continue
			}
			ended = append(ended, event)
		}
		report.EventsFromCycleLog = log.Len()
	}

	starts := periodRunStarts(periodDays)
	events := make([]cycle.PeriodEvent, 0, len(starts)+len(ended))
	for _, start := range starts {
		events = append(events, cycle.PeriodEvent{Date: start, Kind: cycle.KindStarted})
	}
	events = append(events, ended...)
	report.StartsFromPeriods = len(starts)
	report.CollapsedDays = len(periodDays) - len(starts)

	if err := service.cycles.RecordEvents(userID, events); err != nil {
		return report, err
	}

	days := make([]string, 0, len(tracker.Symptoms))
	for day := range tracker.Symptoms {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, rawDay := range days {
		entry := tracker.Symptoms[rawDay]
		day, err := cycle.ParseDay(rawDay)
		if err != nil {
			report.Skipped = append(report.Skipped, fmt.Sprintf("%s.symptoms[%s]: invalid date", legacyTrackerKey, rawDay))
			continue
		}
		mood := entry.Mood
		if mood != nil {
			if _, err := normalizeMood(*mood); err != nil {
				report.Skipped = append(report.Skipped, fmt.Sprintf("%s.symptoms[%s]: unknown mood %q", legacyTrackerKey, rawDay, *mood))
				mood = nil
			}
		}
		if err := service.tracking.MergeSymptoms(userID, day, mood, entry.Symptoms); err != nil {
			if errors.Is(err, ErrTrackingSymptomsInvalid) {
				report.Skipped = append(report.Skipped, fmt.Sprintf("%s.symptoms[%s]: %v", legacyTrackerKey, rawDay, err))
				continue
			}
			return report, err
		}
		report.TrackingDaysImported++
	}

	service.logger.WithFields(logrus.Fields{
		"user_id":       userID,
		"starts":        report.StartsFromPeriods,
		"collapsed":     report.CollapsedDays,
		"cycle_events":  report.EventsFromCycleLog,
		"tracking_days": report.TrackingDaysImported,
		"skipped":       len(report.Skipped),
	}).Info("legacy data imported")
	return report, nil
}

// unwrapStoredJSON turns a JSON string containing JSON into the inner
// document and leaves anything else untouched.
func unwrapStoredJSON(raw json.RawMessage) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return trimmed
	}
	var inner string
	if err := json.Unmarshal(trimmed, &inner); err != nil {
		return trimmed
	}
	return []byte(inner)
}

// periodRunStarts returns the first day of every run of consecutive period
// days, ascending. A gap of one or more days starts a new run.
func periodRunStarts(periodDays map[civil.Date]struct{}) []civil.Date {
	days := make([]civil.Date, 0, len(periodDays))
	for day := range periodDays {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})

	starts := make([]civil.Date, 0)
	for index, day := range days {
		if index == 0 || day.DaysSince(days[index-1]) > 1 {
			starts = append(starts, day)
		}
	}
	return starts
}
