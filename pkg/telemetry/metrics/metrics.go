// Package metrics exposes Prometheus metrics for the gateway: request
// routing counts, forwarding attempts and failures, backend probes, and
// backend connectivity.
//
// All recorder methods are nil-safe so components can take an optional
// *Collector without guarding every call site.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the gateway's Prometheus registry and metric instances.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal        *prometheus.CounterVec
	forwardAttemptsTotal prometheus.Counter
	forwardFailuresTotal prometheus.Counter
	probesTotal          prometheus.Counter
	transitionsTotal     *prometheus.CounterVec
	backendConnected     prometheus.Gauge
}

// NewCollector creates a collector registered on its own registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests handled, by route (local, forward, status).",
		}, []string{"route"}),
		forwardAttemptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forward_attempts_total",
			Help:      "Individual forwarding attempts, including retries.",
		}),
		forwardFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forward_failures_total",
			Help:      "Forward requests that exhausted all attempts.",
		}),
		probesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Backend liveness probes issued.",
		}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_transitions_total",
			Help:      "Backend instance connectivity transitions, by new state.",
		}, []string{"state"}),
		backendConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backend_connected",
			Help:      "Whether the primary backend answered its last probe (1/0).",
		}),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.forwardAttemptsTotal,
		c.forwardFailuresTotal,
		c.probesTotal,
		c.transitionsTotal,
		c.backendConnected,
	)

	return c
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordRequest counts a handled request for the given route.
func (c *Collector) RecordRequest(route string) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(route).Inc()
}

// RecordForwardAttempt counts a single forwarding attempt.
func (c *Collector) RecordForwardAttempt() {
	if c == nil {
		return
	}
	c.forwardAttemptsTotal.Inc()
}

// RecordForwardFailure counts a forward that exhausted all attempts.
func (c *Collector) RecordForwardFailure() {
	if c == nil {
		return
	}
	c.forwardFailuresTotal.Inc()
}

// RecordProbe counts a liveness probe.
func (c *Collector) RecordProbe() {
	if c == nil {
		return
	}
	c.probesTotal.Inc()
}

// RecordTransition counts a connectivity transition to the given state.
func (c *Collector) RecordTransition(connected bool) {
	if c == nil {
		return
	}
	state := "disconnected"
	if connected {
		state = "connected"
	}
	c.transitionsTotal.WithLabelValues(state).Inc()
}

// SetBackendConnected records the primary backend's current connectivity.
func (c *Collector) SetBackendConnected(connected bool) {
	if c == nil {
		return
	}
	if connected {
		c.backendConnected.Set(1)
	} else {
		c.backendConnected.Set(0)
	}
}
