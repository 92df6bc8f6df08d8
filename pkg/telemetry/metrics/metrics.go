// Package metrics provides Prometheus instrumentation for the routing
// layer: request outcomes, failover activity, provider availability,
// latency and cost.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace is the metric namespace used when none is configured.
const DefaultNamespace = "relay"

// defaultLatencyBuckets covers LLM call latencies from tens of
// milliseconds to a minute.
var defaultLatencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Metrics tracks router and provider activity.
//
// Metrics:
//   - relay_requests_total: Generation attempts by provider and outcome
//   - relay_failovers_total: Candidates skipped or failed over by reason
//   - relay_provider_available: Availability gauge (1=available)
//   - relay_request_duration_seconds: Provider call latency
//   - relay_cost_usd_total: Accumulated estimated cost
//
// All methods are safe on a nil receiver so instrumentation can be
// disabled by passing a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	requests  *prometheus.CounterVec
	failovers *prometheus.CounterVec
	available *prometheus.GaugeVec
	duration  *prometheus.HistogramVec
	cost      *prometheus.CounterVec
}

// New creates and registers the routing metrics against a fresh
// registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Generation attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),

		failovers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failovers_total",
				Help:      "Failover loop continuations by reason",
			},
			[]string{"provider", "reason"},
		),

		available: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "provider_available",
				Help:      "Provider availability (1=available, 0=not)",
			},
			[]string{"provider"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Provider call latency in seconds",
				Buckets:   defaultLatencyBuckets,
			},
			[]string{"provider", "model"},
		),

		cost: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cost_usd_total",
				Help:      "Accumulated estimated cost in USD",
			},
			[]string{"provider", "model"},
		),
	}

	m.registry.MustRegister(
		m.requests,
		m.failovers,
		m.available,
		m.duration,
		m.cost,
	)

	return m
}

// RecordRequest records one generation attempt outcome.
// Outcome is "success" or the classified error kind.
func (m *Metrics) RecordRequest(provider, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(provider, outcome).Inc()
}

// RecordFailover records a candidate being skipped or failed over.
func (m *Metrics) RecordFailover(provider, reason string) {
	if m == nil {
		return
	}
	m.failovers.WithLabelValues(provider, reason).Inc()
}

// SetAvailability updates the availability gauge for a provider.
func (m *Metrics) SetAvailability(provider string, available bool) {
	if m == nil {
		return
	}
	value := 0.0
	if available {
		value = 1.0
	}
	m.available.WithLabelValues(provider).Set(value)
}

// RecordLatency records the latency of one provider call.
func (m *Metrics) RecordLatency(provider, model string, seconds float64) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(provider, model).Observe(seconds)
}

// RecordCost adds the estimated cost of one successful call.
func (m *Metrics) RecordCost(provider, model string, usd float64) {
	if m == nil {
		return
	}
	m.cost.WithLabelValues(provider, model).Add(usd)
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
