package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the sync service.
type Metrics struct {
	// Event outcomes by entity kind and result (created, updated, ...)
	Outcomes *prometheus.CounterVec

	// Events that failed and were left for redelivery
	Failures *prometheus.CounterVec

	ReconcileLatency *prometheus.HistogramVec

	// Repair runs by kind and status ("ok" or the failing stage)
	Repairs        *prometheus.CounterVec
	RepairLatency  *prometheus.HistogramVec
	RepairMappings *prometheus.CounterVec

	// Redelivered messages acknowledged without replay
	DedupeHits prometheus.Counter
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers metrics on reg. Tests pass a fresh registry so
// repeated construction does not collide.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contactsync_event_outcomes_total",
			Help: "Processed change events by entity kind and outcome",
		}, []string{"kind", "result"}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contactsync_event_failures_total",
			Help: "Change events that failed and were left for redelivery",
		}, []string{"kind"}),
		ReconcileLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contactsync_reconcile_duration_seconds",
			Help:    "Duration of single-event reconciliation including remote calls",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
		Repairs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contactsync_repairs_total",
			Help: "Aggregate repairs by entity kind and status",
		}, []string{"kind", "status"}),
		RepairLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contactsync_repair_duration_seconds",
			Help:    "Duration of full aggregate repairs",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
		RepairMappings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contactsync_repair_mappings_total",
			Help: "Mapping changes applied by repairs, by kind and change",
		}, []string{"kind", "change"}),
		DedupeHits: f.NewCounter(prometheus.CounterOpts{
			Name: "contactsync_dedupe_hits_total",
			Help: "Redelivered messages acknowledged without replay",
		}),
	}
}

func (m *Metrics) IncrementOutcome(kind, result string) {
	if m != nil {
		m.Outcomes.WithLabelValues(kind, result).Inc()
	}
}

func (m *Metrics) IncrementFailure(kind string) {
	if m != nil {
		m.Failures.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) ObserveReconcileLatency(kind string, d time.Duration) {
	if m != nil {
		m.ReconcileLatency.WithLabelValues(kind).Observe(d.Seconds())
	}
}

// ObserveRepair records one repair run and its mapping changes.
func (m *Metrics) ObserveRepair(kind, status string, d time.Duration, created, updated, removed int) {
	if m == nil {
		return
	}
	m.Repairs.WithLabelValues(kind, status).Inc()
	m.RepairLatency.WithLabelValues(kind).Observe(d.Seconds())
	m.RepairMappings.WithLabelValues(kind, "created").Add(float64(created))
	m.RepairMappings.WithLabelValues(kind, "updated").Add(float64(updated))
	m.RepairMappings.WithLabelValues(kind, "removed").Add(float64(removed))
}

func (m *Metrics) IncrementDedupeHit() {
	if m != nil {
		m.DedupeHits.Inc()
	}
}
