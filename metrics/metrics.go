// Package metrics exports crawl session counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/use-agent/fahndung/models"
)

const namespace = "fahndung"

// Metrics holds the crawl metrics. It implements session.Observer.
type Metrics struct {
	SessionsRunning  *prometheus.GaugeVec
	SessionsTotal    *prometheus.CounterVec
	AdapterRuns      *prometheus.CounterVec
	AdapterDuration  *prometheus.HistogramVec
	ListingPages     *prometheus.CounterVec
	ItemsPersisted   *prometheus.CounterVec
	ItemConflicts    *prometheus.CounterVec
	ItemFailures     *prometheus.CounterVec
	RetentionDeleted prometheus.Counter
}

// New registers the metrics with reg. Use prometheus.NewRegistry in tests
// to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SessionsRunning: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_running",
			Help:      "Crawl sessions currently running, by kind",
		}, []string{"kind"}),
		SessionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Finished sessions by kind and final state",
		}, []string{"kind", "state"}),
		AdapterRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adapter_runs_total",
			Help:      "Adapter runs by source and termination reason",
		}, []string{"source", "termination"}),
		AdapterDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "adapter_duration_seconds",
			Help:      "Wall time of one adapter run",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"source"}),
		ListingPages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_pages_total",
			Help:      "Listing pages read, by source",
		}, []string{"source"}),
		ItemsPersisted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_persisted_total",
			Help:      "Records inserted, by source",
		}, []string{"source"}),
		ItemConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_conflicts_total",
			Help:      "Records skipped because they were already stored, by source",
		}, []string{"source"}),
		ItemFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "item_failures_total",
			Help:      "Items that could not be extracted or stored, by source and error code",
		}, []string{"source", "code"}),
		RetentionDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retention_deleted_total",
			Help:      "Records deleted by retention passes",
		}),
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) SessionStarted(r models.SessionReport) {
	m.SessionsRunning.WithLabelValues(r.Kind).Inc()
}

func (m *Metrics) AdapterFinished(_ models.SessionReport, o models.CrawlOutcome) {
	m.AdapterRuns.WithLabelValues(o.Source, string(o.Termination)).Inc()
	m.AdapterDuration.WithLabelValues(o.Source).Observe(o.Duration.Seconds())
	m.ListingPages.WithLabelValues(o.Source).Add(float64(o.Pages))
	m.ItemsPersisted.WithLabelValues(o.Source).Add(float64(o.Persisted))
	m.ItemConflicts.WithLabelValues(o.Source).Add(float64(o.Conflicts))
	for _, f := range o.Failed {
		m.ItemFailures.WithLabelValues(o.Source, f.Code).Inc()
	}
}

func (m *Metrics) SessionFinished(r models.SessionReport) {
	m.SessionsRunning.WithLabelValues(r.Kind).Dec()
	m.SessionsTotal.WithLabelValues(r.Kind, string(r.State)).Inc()
	if r.Deleted > 0 {
		m.RetentionDeleted.Add(float64(r.Deleted))
	}
}
