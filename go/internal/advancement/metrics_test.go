package advancement

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_RecordsPerKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	m.RecordAttempt("week", 0, time.Second)
	m.RecordAttempt("recruiting_week", Configuration, 10*time.Millisecond)
	m.RecordInvocation("week", true, 900*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("week", "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("recruiting_week", "configuration")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.invocations.WithLabelValues("week", "success")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.attemptDuration))

	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP dynasty_advancement_invocations_total Remote procedure calls by kind and result.
# TYPE dynasty_advancement_invocations_total counter
dynasty_advancement_invocations_total{kind="week",result="success"} 1
`), "dynasty_advancement_invocations_total")
	require.NoError(t, err)
}

func TestPrometheusMetrics_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusMetrics(reg)

	assert.Panics(t, func() { NewPrometheusMetrics(reg) })
}
