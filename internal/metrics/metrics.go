// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the dashboard pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "salesdash"

// Default buckets
var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultPipelineDurationBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1}
)

// Metrics holds the registry and every collector salesdash exports.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	PipelineDuration    *prometheus.HistogramVec
	DatasetRows         prometheus.Gauge
	ServiceUptime       prometheus.GaugeFunc
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	started := time.Now()
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   DefaultHTTPDurationBuckets,
		}, []string{"method", "route"}),
		PipelineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Dashboard pipeline latency by stage (compute, render).",
			Buckets:   DefaultPipelineDurationBuckets,
		}, []string{"stage"}),
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "rows",
			Help:      "Rows in the loaded sales dataset.",
		}),
		ServiceUptime: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Seconds since the service started.",
		}, func() float64 { return time.Since(started).Seconds() }),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PipelineDuration,
		m.DatasetRows,
		m.ServiceUptime,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObservePipeline records one pipeline stage duration.
func (m *Metrics) ObservePipeline(stage string, d time.Duration) {
	m.PipelineDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// SetDatasetRows publishes the loaded dataset size.
func (m *Metrics) SetDatasetRows(n int) {
	m.DatasetRows.Set(float64(n))
}
