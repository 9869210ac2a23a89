// Package metrics exposes Prometheus instrumentation for the analysis pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks analyses, cache effectiveness and HTTP traffic.
// All methods are safe on a nil receiver.
type Metrics struct {
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	Diagnostics      *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	SinkFailures     *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_analyses_total",
			Help: "Documents analysed, by property category",
		}, []string{"category"}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "registry_analysis_duration_seconds",
			Help:    "Time spent reconstructing one document",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		Diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_diagnostics_total",
			Help: "Diagnostics emitted by the engine, by code",
		}, []string{"code"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_cache_lookups_total",
			Help: "Analysis cache lookups, by outcome",
		}, []string{"outcome"}),
		SinkFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_sink_failures_total",
			Help: "Failed writes to persistence sinks",
		}, []string{"sink"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_http_requests_total",
			Help: "HTTP requests served, by route and status",
		}, []string{"route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registry_http_request_duration_seconds",
			Help:    "HTTP request latency, by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObserveAnalysis records one finished engine run.
func (m *Metrics) ObserveAnalysis(category string, start time.Time, diagnosticCodes []string) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(category).Inc()
	m.AnalysisDuration.Observe(time.Since(start).Seconds())
	for _, code := range diagnosticCodes {
		m.Diagnostics.WithLabelValues(code).Inc()
	}
}

// CacheHit counts a cache hit.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("hit").Inc()
}

// CacheMiss counts a cache miss.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}

// SinkFailure counts a failed write to sink ("graph", "history", "cache").
func (m *Metrics) SinkFailure(sink string) {
	if m == nil {
		return
	}
	m.SinkFailures.WithLabelValues(sink).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, statusClass(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
