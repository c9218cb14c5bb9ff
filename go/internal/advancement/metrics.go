package advancement

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector defines the interface for collecting advancement metrics
type MetricsCollector interface {
	RecordAttempt(kind string, failure FailureKind, duration time.Duration)
	RecordInvocation(kind string, success bool, duration time.Duration)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) RecordAttempt(kind string, failure FailureKind, duration time.Duration) {
}
func (n *NoOpMetricsCollector) RecordInvocation(kind string, success bool, duration time.Duration) {}

const outcomeSucceeded = "succeeded"

// PrometheusMetrics records attempts and procedure calls per advancement kind.
type PrometheusMetrics struct {
	attempts           *prometheus.CounterVec
	attemptDuration    *prometheus.HistogramVec
	invocations        *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
}

// NewPrometheusMetrics creates the advancement collectors and registers them with reg
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dynasty",
			Subsystem: "advancement",
			Name:      "attempts_total",
			Help:      "Advancement attempts by kind and outcome (succeeded or the failure kind).",
		}, []string{"kind", "outcome"}),
		attemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dynasty",
			Subsystem: "advancement",
			Name:      "attempt_duration_seconds",
			Help:      "Time from authorization to presentation of an advancement attempt.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dynasty",
			Subsystem: "advancement",
			Name:      "invocations_total",
			Help:      "Remote procedure calls by kind and result.",
		}, []string{"kind", "result"}),
		invocationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dynasty",
			Subsystem: "advancement",
			Name:      "invocation_duration_seconds",
			Help:      "Duration of the remote advancement procedure call.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"kind"}),
	}
	reg.MustRegister(m.attempts, m.attemptDuration, m.invocations, m.invocationDuration)
	return m
}

func (m *PrometheusMetrics) RecordAttempt(kind string, failure FailureKind, duration time.Duration) {
	outcome := outcomeSucceeded
	if failure != 0 {
		outcome = failure.String()
	}
	m.attempts.WithLabelValues(kind, outcome).Inc()
	m.attemptDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordInvocation(kind string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.invocations.WithLabelValues(kind, result).Inc()
	m.invocationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}
