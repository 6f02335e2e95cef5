package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const outcomeOK = "ok"

// TrackingMetrics records the outcome and latency of tracking service operations.
type TrackingMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewTrackingMetrics registers the tracking metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewTrackingMetrics(reg prometheus.Registerer) *TrackingMetrics {
	if reg == nil {
		return &TrackingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "xntrack",
		Name:      "operation_duration_seconds",
		Help:      "Duration of tracking document operations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "xntrack",
		Name:      "operation_total",
		Help:      "Tracking document operations by outcome.",
	}, []string{"operation", "outcome"})
	reg.MustRegister(duration, outcomes)
	return &TrackingMetrics{
		duration: duration,
		outcomes: outcomes,
	}
}

// Observe records one finished operation. An empty outcome counts as success; otherwise
// it is the error code the operation failed with.
func (m *TrackingMetrics) Observe(operation, outcome string, elapsed time.Duration) {
	if m == nil || m.duration == nil || m.outcomes == nil {
		return
	}
	operation = normalizeLabel(operation)
	if outcome == "" {
		outcome = outcomeOK
	}
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
	m.outcomes.WithLabelValues(operation, outcome).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
