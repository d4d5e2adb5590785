package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveScore(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveScore("success", 2*time.Second)
	m.ObserveScore("success", time.Second)
	m.ObserveScore("upstream_error", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.scoreRequests.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scoreRequests.WithLabelValues("upstream_error")))

	count, err := testutil.GatherAndCount(reg, "scorelink_score_generation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMetrics_Relay(t *testing.T) {
	m := New(prometheus.NewRegistry(), WithNamespace("test"))

	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()
	m.EventRelayed(3)
	m.EventRelayed(2)
	m.ClientDropped()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.relayConnections))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.relayEvents))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.relayDeliveries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.relayDropped))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveScore("success", time.Second)
		m.ConnectionOpened()
		m.ConnectionClosed()
		m.EventRelayed(1)
		m.ClientDropped()
	})
}
