package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeComputed         = "computed"
	OutcomeInsufficientData = "insufficient_data"
	OutcomeProfileFallback  = "profile_fallback"

	DigestPeriodActive     = "period_active"
	DigestInsufficientData = "insufficient_data"
	DigestTracking         = "tracking"
)

var (
	eventsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sakhi",
		Subsystem: "cycle",
		Name:      "events_recorded_total",
		Help:      "Period events written to cycle logs, labeled by kind.",
	}, []string{"kind"})

	stateComputations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sakhi",
		Subsystem: "cycle",
		Name:      "state_computations_total",
		Help:      "Cycle state computations, labeled by outcome.",
	}, []string{"outcome"})

	droppedEntries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sakhi",
		Subsystem: "cycle",
		Name:      "log_dropped_entries_total",
		Help:      "Malformed cycle log entries discarded while loading.",
	})

	digestUsers = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sakhi",
		Subsystem: "digest",
		Name:      "users",
		Help:      "Users per cycle state at the last digest run.",
	}, []string{"state"})

	digestLastRun = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sakhi",
		Subsystem: "digest",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix timestamp of the most recent completed digest run.",
	})

	digestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sakhi",
		Subsystem: "digest",
		Name:      "run_duration_seconds",
		Help:      "Time spent computing the daily digest for all users.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(eventsRecorded, stateComputations, droppedEntries, digestUsers, digestLastRun, digestDuration)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordEvent(kind string) {
	eventsRecorded.WithLabelValues(kind).Inc()
}

func RecordStateComputation(outcome string) {
	stateComputations.WithLabelValues(outcome).Inc()
}

func RecordDroppedEntries(count int) {
	if count <= 0 {
		return
	}
	droppedEntries.Add(float64(count))
}

// RecordDigest publishes the per-state user counts of one digest run. States
// missing from counts are reset to zero.
func RecordDigest(counts map[string]int, finishedAt time.Time, took time.Duration) {
	for _, state := range []string{DigestPeriodActive, DigestInsufficientData, DigestTracking} {
		digestUsers.WithLabelValues(state).Set(float64(counts[state]))
	}
	digestDuration.Observe(took.Seconds())
	if !finishedAt.IsZero() {
		digestLastRun.Set(float64(finishedAt.Unix()))
	}
}
