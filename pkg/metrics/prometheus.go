package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheResults *prometheus.CounterVec
	upstream     *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	rosterSize   prometheus.Gauge
	analyses     *prometheus.CounterVec
}

// New creates a Prometheus metrics recorder on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registering its collectors on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cacheResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptoview_cache_results_total",
				Help: "Cache lookups by scope and result (hit, miss, stale)",
			},
			[]string{"scope", "result"},
		),
		upstream: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptoview_upstream_requests_total",
				Help: "Upstream requests by endpoint and status code",
			},
			[]string{"endpoint", "status"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptoview_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cryptoview_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		rosterSize: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "cryptoview_roster_assets",
				Help: "Number of assets currently tracked",
			},
		),
		analyses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cryptoview_analyses_total",
				Help: "Analysis lookups by outcome",
			},
			[]string{"result"},
		),
	}
}

func (r *Recorder) RecordCacheResult(scope, result string) {
	r.cacheResults.WithLabelValues(scope, result).Inc()
}

// RecordUpstream records an upstream call. Status 0 means a transport failure.
func (r *Recorder) RecordUpstream(endpoint string, status int) {
	label := "network_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	r.upstream.WithLabelValues(endpoint, label).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordRosterSize(n int) {
	r.rosterSize.Set(float64(n))
}

func (r *Recorder) RecordAnalysis(result string) {
	r.analyses.WithLabelValues(result).Inc()
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) RecordCacheResult(string, string) {}
func (Nop) RecordUpstream(string, int) {}
func (Nop) RecordError(string) {}
func (Nop) RecordLatency(string, float64) {}
func (Nop) RecordRosterSize(int) {}
func (Nop) RecordAnalysis(string) {}
