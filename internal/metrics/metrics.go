// Package metrics exposes driver activity as Prometheus collectors: an
// operation counter by command kind, a completion timeout counter and a
// completion wait latency histogram. A Metrics value plugs into the driver
// as its operation recorder and serves the standard /metrics endpoint.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the driver's Prometheus collectors with the HTTP handler
// that serves them. Each Metrics value owns its own registry, so multiple
// instances (one per test, for example) never collide.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	operations *prometheus.CounterVec
	timeouts   prometheus.Counter
	waits      prometheus.Histogram
}

// NewMetrics creates the collectors and registers them, together with the
// Go runtime collectors, on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mme_operations_total",
			Help: "Commands issued to the accelerator, by kind.",
		}, []string{"kind"}),
		timeouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "mme_completion_timeouts_total",
			Help: "Completion waits that exhausted their budget.",
		}),
		waits: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "mme_completion_wait_seconds",
			Help: "Time spent waiting for operation completion.",
			// The pipeline completes in microseconds; the last buckets
			// catch the 140ms timeout path.
			Buckets: []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 0.1, 0.15, 0.5},
		}),
	}
	reg.MustRegister(collectors.NewGoCollector())

	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return m
}

// OperationStarted counts one issued command of the given kind.
func (m *Metrics) OperationStarted(kind string) {
	m.operations.WithLabelValues(kind).Inc()
}

// WaitObserved records one completion wait. Timed-out waits are counted
// separately on top of the latency observation.
func (m *Metrics) WaitObserved(d time.Duration, completed bool) {
	m.waits.Observe(d.Seconds())
	if !completed {
		m.timeouts.Inc()
	}
}

// WritePrometheus serves the metrics in Prometheus exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler { return m.handler }
