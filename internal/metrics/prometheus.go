// Package metrics provides Prometheus metrics for the score generator and the
// sensor relay.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultNamespace = "scorelink"
)

// Metrics holds every collector the server exports. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	namespace string
	buckets   []float64

	scoreRequests *prometheus.CounterVec
	scoreLatency  prometheus.Histogram

	relayConnections prometheus.Gauge
	relayEvents      prometheus.Counter
	relayDeliveries  prometheus.Counter
	relayDropped     prometheus.Counter
}

// Option configures Metrics
type Option func(*Metrics)

// WithNamespace overrides the metric namespace
func WithNamespace(namespace string) Option {
	return func(m *Metrics) {
		m.namespace = namespace
	}
}

// WithHistogramBuckets overrides the score latency buckets (seconds)
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Metrics) {
		m.buckets = buckets
	}
}

// New registers all collectors on reg
func New(reg prometheus.Registerer, opts ...Option) *Metrics {
	m := &Metrics{
		namespace: defaultNamespace,
		// completions routinely take tens of seconds
		buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
	}
	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(reg)
	m.scoreRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "score",
		Name:      "requests_total",
		Help:      "Score generation requests by outcome",
	}, []string{"outcome"})

	m.scoreLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "score",
		Name:      "generation_duration_seconds",
		Help:      "Time spent building, completing and extracting one score",
		Buckets:   m.buckets,
	})

	m.relayConnections = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "relay",
		Name:      "connections",
		Help:      "Currently connected relay clients",
	})

	m.relayEvents = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "relay",
		Name:      "events_total",
		Help:      "Sensor events received for broadcast",
	})

	m.relayDeliveries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "relay",
		Name:      "deliveries_total",
		Help:      "Sensor events queued to clients",
	})

	m.relayDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "relay",
		Name:      "dropped_clients_total",
		Help:      "Clients disconnected because their send buffer was full",
	})

	return m
}

// ObserveScore records one finished score request
func (m *Metrics) ObserveScore(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.scoreRequests.WithLabelValues(outcome).Inc()
	m.scoreLatency.Observe(elapsed.Seconds())
}

// ConnectionOpened increments the relay connection gauge
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.relayConnections.Inc()
}

// ConnectionClosed decrements the relay connection gauge
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.relayConnections.Dec()
}

// EventRelayed records one broadcast and how many clients it reached
func (m *Metrics) EventRelayed(deliveries int) {
	if m == nil {
		return
	}
	m.relayEvents.Inc()
	m.relayDeliveries.Add(float64(deliveries))
}

// ClientDropped records a slow client eviction
func (m *Metrics) ClientDropped() {
	if m == nil {
		return
	}
	m.relayDropped.Inc()
}
