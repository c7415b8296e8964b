package services

import (
	"testing"

	"github.com/sakhi-health/sakhi/internal/cycle"
	"github.com/sakhi-health/sakhi/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImportService(t *testing.T) (*LegacyImportService, *CycleService, *TrackingService) {
	t.Helper()
	cycles, _, _ := newTestCycleService(models.User{ID: 1, CycleLength: 28, PeriodLength: 5})
	tracking := NewTrackingService(newStubTrackingRepo())
	return NewLegacyImportService(cycles, tracking, quietLogger()), cycles, tracking
}

func TestLegacyImportCollapsesPeriodRunsAndLetsCycleLogWin(t *testing.T) {
	service, cycles, _ := newTestImportService(t)

	payload := []byte(`{
		"trackerData": {
			"periods": [
				{"date": "2024-01-03", "flow": "Medium"},
				{"date": "2024-01-01", "flow": "Heavy"},
				{"date": "2024-01-02", "flow": "Medium"},
				{"date": "2024-01-29", "flow": "Light"},
				{"date": "2024-01-30", "flow": "Light"},
				{"date": "someday", "flow": "Light"}
			],
			"symptoms": {}
		},
		"sakhi-cycle": {
			"2024-01-29": {"periodEnded": true},
			"2024-02-26": {"periodStarted": true},
			"bad-key": {"periodStarted": true}
		}
	}`)

	report, err := service.Import(1, payload)
	require.NoError(t, err)
	assert.Equal(t, 3, report.StartsFromPeriods)
	assert.Equal(t, 3, report.CollapsedDays)
	assert.Equal(t, 2, report.EventsFromCycleLog)
	assert.Len(t, report.Skipped, 2)

	log, _, err := cycles.LoadLog(1)
	require.NoError(t, err)
	starts := log.AllStarts()
	require.Len(t, starts, 2)
	assert.Equal(t, "2024-01-01", starts[0].String())
	assert.Equal(t, "2024-02-26", starts[1].String())

	kind, ok := log.KindOn(mustDay(t, "2024-01-29"))
	require.True(t, ok)
	assert.Equal(t, cycle.KindEnded, kind)
}

func TestLegacyImportMergesConsecutiveCycleLogStarts(t *testing.T) {
	service, cycles, _ := newTestImportService(t)

	// Every logged bleeding day is stored in both keys.
	payload := []byte(`{
		"trackerData": {
			"periods": [
				{"date": "2024-03-01", "flow": "Heavy"},
				{"date": "2024-03-02", "flow": "Medium"},
				{"date": "2024-03-03", "flow": "Light"}
			],
			"symptoms": {}
		},
		"sakhi-cycle": {
			"2024-03-01": {"periodStarted": true},
			"2024-03-02": {"periodStarted": true},
			"2024-03-03": {"periodStarted": true}
		}
	}`)

	report, err := service.Import(1, payload)
	require.NoError(t, err)
	assert.Equal(t, 1, report.StartsFromPeriods)
	assert.Equal(t, 2, report.CollapsedDays)
	assert.Equal(t, 3, report.EventsFromCycleLog)

	starts, err := cycles.Starts(1)
	require.NoError(t, err)
	require.Len(t, starts, 1)
	assert.Equal(t, "2024-03-01", starts[0].String())

	state, err := cycles.State(1, mustDay(t, "2024-03-10"))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", state.MostRecentPeriodStart.String())
	assert.Equal(t, 9, state.DaysSinceStart)
	assert.Equal(t, 10, state.CurrentCycleDay)
	assert.Equal(t, "2024-03-29", state.NextPeriodDate.String())
}

func TestLegacyImportJoinsRunsAcrossBothKeys(t *testing.T) {
	service, cycles, _ := newTestImportService(t)

	payload := []byte(`{
		"trackerData": {"periods": [{"date": "2024-03-02"}, {"date": "2024-03-03"}]},
		"sakhi-cycle": {
			"2024-03-01": {"periodStarted": true},
			"2024-03-30": {"periodStarted": true},
			"2024-03-31": {"periodStarted": true}
		}
	}`)

	report, err := service.Import(1, payload)
	require.NoError(t, err)
	assert.Equal(t, 2, report.StartsFromPeriods)

	starts, err := cycles.Starts(1)
	require.NoError(t, err)
	require.Len(t, starts, 2)
	assert.Equal(t, "2024-03-01", starts[0].String())
	assert.Equal(t, "2024-03-30", starts[1].String())
}

func TestLegacyImportAcceptsStringEncodedValues(t *testing.T) {
	service, cycles, _ := newTestImportService(t)

	payload := []byte(`{"sakhi-cycle": "{\"2024-03-01\":{\"periodStarted\":true}}"}`)
	report, err := service.Import(1, payload)
	require.NoError(t, err)
	assert.Equal(t, 1, report.EventsFromCycleLog)

	state, err := cycles.State(1, mustDay(t, "2024-03-02"))
	require.NoError(t, err)
	assert.True(t, state.PeriodActive)
}

func TestLegacyImportMergesSymptoms(t *testing.T) {
	service, _, tracking := newTestImportService(t)

	payload := []byte(`{
		"trackerData": {
			"periods": [],
			"symptoms": {
				"2024-03-02": {"date": "2024-03-02", "mood": "Happy", "symptoms": ["Cramps", "Bloating"]},
				"2024-03-03": {"date": "2024-03-03", "mood": "Anxious", "symptoms": ["Headache"]},
				"03-04-2024": {"date": "03-04-2024", "mood": null, "symptoms": []}
			}
		}
	}`)

	report, err := service.Import(1, payload)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TrackingDaysImported)
	assert.Len(t, report.Skipped, 2)

	entry, err := tracking.Get(1, mustDay(t, "2024-03-02"))
	require.NoError(t, err)
	require.NotNil(t, entry.Mood)
	assert.Equal(t, models.MoodHappy, *entry.Mood)
	assert.Equal(t, []string{"Cramps", "Bloating"}, entry.Symptoms)

	entry, err = tracking.Get(1, mustDay(t, "2024-03-03"))
	require.NoError(t, err)
	assert.Nil(t, entry.Mood)
	assert.Equal(t, []string{"Headache"}, entry.Symptoms)
}

func TestLegacyImportRejectsUnreadablePayload(t *testing.T) {
	service, _, _ := newTestImportService(t)

	_, err := service.Import(1, []byte(`[1,2,3]`))
	require.ErrorIs(t, err, ErrLegacyImportInvalid)

	_, err = service.Import(1, []byte(`{"sakhi-cycle": [1]}`))
	require.ErrorIs(t, err, ErrLegacyImportInvalid)

	_, err = service.Import(1, []byte(`{"trackerData": {"periods": "nope"}}`))
	require.ErrorIs(t, err, ErrLegacyImportInvalid)
}

func TestPeriodRunStartsSplitsOnGaps(t *testing.T) {
	tracker := legacyTrackerData{}
	for _, day := range []string{"2024-01-01", "2024-01-02", "2024-01-02", "2024-01-04", "2024-02-01"} {
		tracker.Periods = append(tracker.Periods, struct {
			Date string `json:"date"`
			Flow string `json:"flow"`
		}{Date: day})
	}

	starts, skipped := periodRunStarts(tracker)
	assert.Empty(t, skipped)
	require.Len(t, starts, 3)
	assert.Equal(t, "2024-01-01", starts[0].String())
	assert.Equal(t, "2024-01-04", starts[1].String())
	assert.Equal(t, "2024-02-01", starts[2].String())
}
