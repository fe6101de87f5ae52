// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	gatherer        prometheus.Gatherer
	requestDuration *prometheus.HistogramVec
	toggles         *prometheus.CounterVec
	staleRemovals   *prometheus.CounterVec
}

// New registers the collectors with reg. Passing a fresh
// prometheus.NewRegistry keeps tests isolated from the global registry.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "combohub",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "combohub",
			Name:      "toggles_total",
			Help:      "Like, favorite and comment like submissions by action.",
		}, []string{"kind", "action"}),
		staleRemovals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "combohub",
			Name:      "stale_removals_total",
			Help:      "Removals that targeted a record already gone.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		m.requestDuration,
		m.toggles,
		m.staleRemovals,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (m *Metrics) Toggle(kind, action string) {
	if m == nil {
		return
	}
	m.toggles.WithLabelValues(kind, action).Inc()
}

func (m *Metrics) StaleRemoval(kind string) {
	if m == nil {
		return
	}
	m.staleRemovals.WithLabelValues(kind).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
