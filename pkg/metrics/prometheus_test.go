package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer(reg)

	r.RecordCacheResult("markets", "hit")
	r.RecordCacheResult("markets", "hit")
	r.RecordUpstream("markets", 429)
	r.RecordUpstream("markets", 0)
	r.RecordRosterSize(7)

	if got := testutil.ToFloat64(r.cacheResults.WithLabelValues("markets", "hit")); got != 2 {
		t.Fatalf("expected 2 hits, got %v", got)
	}
	if got := testutil.ToFloat64(r.upstream.WithLabelValues("markets", "429")); got != 1 {
		t.Fatalf("expected one 429, got %v", got)
	}
	if got := testutil.ToFloat64(r.upstream.WithLabelValues("markets", "network_error")); got != 1 {
		t.Fatalf("expected one network error, got %v", got)
	}
	if got := testutil.ToFloat64(r.rosterSize); got != 7 {
		t.Fatalf("expected roster size 7, got %v", got)
	}
}
