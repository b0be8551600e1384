// Package metrics holds the prometheus collectors for matching and ingestion.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Ingest row outcomes.
const (
	IngestStored   = "stored"
	IngestRejected = "rejected"
	IngestFailed   = "failed"
)

// Metrics provides observability for scheme matching.
type Metrics struct {
	// Per-scheme evaluations by eligibility
	Evaluations *prometheus.CounterVec

	// Duration of ranking one farmer against the scheme list
	MatchRunDuration prometheus.Histogram

	CacheRequests *prometheus.CounterVec

	// CSV rows by outcome
	IngestRows *prometheus.CounterVec
}

// Default is registered with the global prometheus registry and served at /metrics.
var Default = New(prometheus.DefaultRegisterer)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scheme_evaluations_total",
			Help: "Total scheme evaluations by scheme and eligibility",
		}, []string{"scheme_id", "eligible"}),

		MatchRunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scheme_match_run_duration_seconds",
			Help:    "Duration of matching one farmer against all schemes",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),

		CacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "match_cache_requests_total",
			Help: "Match cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "error"

		IngestRows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "farmer_ingest_rows_total",
			Help: "Farmer rows ingested by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementEvaluation records one scheme evaluation.
func (m *Metrics) IncrementEvaluation(schemeID string, eligible bool) {
	if m != nil {
		m.Evaluations.WithLabelValues(schemeID, strconv.FormatBool(eligible)).Inc()
	}
}

// ObserveMatchRun records how long a ranking took.
func (m *Metrics) ObserveMatchRun(d time.Duration) {
	if m != nil {
		m.MatchRunDuration.Observe(d.Seconds())
	}
}

// IncrementCache records a cache lookup result.
func (m *Metrics) IncrementCache(result string) {
	if m != nil {
		m.CacheRequests.WithLabelValues(result).Inc()
	}
}

// AddIngestRows records n ingested rows with the given outcome.
func (m *Metrics) AddIngestRows(outcome string, n int) {
	if m != nil && n > 0 {
		m.IngestRows.WithLabelValues(outcome).Add(float64(n))
	}
}
