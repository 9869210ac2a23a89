package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveAnalysis(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAnalysis("APT", time.Now(), []string{"section_not_found", "section_not_found"})
	m.ObserveAnalysis("Non-APT", time.Now(), nil)

	if got := testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("APT")); got != 1 {
		t.Fatalf("expected 1 APT analysis, got %v", got)
	}
	if got := testutil.ToFloat64(m.Diagnostics.WithLabelValues("section_not_found")); got != 2 {
		t.Fatalf("expected 2 diagnostics, got %v", got)
	}
	if got := testutil.CollectAndCount(m.AnalysisDuration); got != 1 {
		t.Fatalf("expected one histogram series, got %d", got)
	}
}

func TestCacheAndSinkCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()
	m.SinkFailure("graph")

	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")); got != 2 {
		t.Fatalf("expected 2 misses, got %v", got)
	}
	if got := testutil.ToFloat64(m.SinkFailures.WithLabelValues("graph")); got != 1 {
		t.Fatalf("expected 1 graph failure, got %v", got)
	}
}

func TestObserveHTTPStatusClasses(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveHTTP("/v1/analyses", 201, time.Millisecond)
	m.ObserveHTTP("/v1/analyses", 422, time.Millisecond)
	m.ObserveHTTP("/v1/analyses", 503, time.Millisecond)

	for _, class := range []string{"2xx", "4xx", "5xx"} {
		if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/v1/analyses", class)); got != 1 {
			t.Fatalf("expected 1 %s request, got %v", class, got)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAnalysis("APT", time.Now(), []string{"x"})
	m.CacheHit()
	m.CacheMiss()
	m.SinkFailure("graph")
	m.ObserveHTTP("/", 200, 0)
}
