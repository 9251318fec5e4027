// Package metrics exposes engine instrumentation via Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soundcu/benefit-engine/internal/model"
)

// Collector implements engine.MetricsRecorder on a private Prometheus
// registry so tests can run many collectors side by side.
type Collector struct {
	registry             *prometheus.Registry
	transactionsIngested prometheus.Counter
	duplicatesDropped    prometheus.Counter
	alertsEmitted        *prometheus.CounterVec
	alertsSwept          prometheus.Counter
	ingestDuration       prometheus.Histogram
	scoreDistribution    prometheus.Histogram
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		transactionsIngested: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "benefit_transactions_ingested_total",
			Help: "Total number of newly ingested transactions",
		}),
		duplicatesDropped: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "benefit_transactions_duplicates_total",
			Help: "Total number of duplicate transactions dropped at ingest",
		}),
		alertsEmitted: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "benefit_alerts_emitted_total",
			Help: "Total number of savings alerts emitted",
		}, []string{"kind"}),
		alertsSwept: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "benefit_alerts_swept_total",
			Help: "Total number of pending alerts expired by the sweep",
		}),
		ingestDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "benefit_ingest_duration_seconds",
			Help:    "Time taken to ingest a transaction batch",
			Buckets: prometheus.DefBuckets,
		}),
		scoreDistribution: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "benefit_score_distribution",
			Help:    "Distribution of computed composite scores",
			Buckets: []float64{0, 20, 40, 60, 80, 100},
		}),
	}
}

// TransactionsIngested records an ingest batch outcome.
func (c *Collector) TransactionsIngested(count, duplicates int) {
	c.transactionsIngested.Add(float64(count))
	c.duplicatesDropped.Add(float64(duplicates))
}

// AlertEmitted records one emitted alert by kind.
func (c *Collector) AlertEmitted(kind model.AlertKind) {
	c.alertsEmitted.WithLabelValues(string(kind)).Inc()
}

// AlertsSwept records how many alerts one sweep pass expired.
func (c *Collector) AlertsSwept(count int) {
	c.alertsSwept.Add(float64(count))
}

// ScoreComputed records one computed composite score.
func (c *Collector) ScoreComputed(score int) {
	c.scoreDistribution.Observe(float64(score))
}

// IngestDuration records how long an ingest batch took.
func (c *Collector) IngestDuration(d time.Duration) {
	c.ingestDuration.Observe(d.Seconds())
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
