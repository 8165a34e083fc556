package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	LedgerOperations *prometheus.CounterVec
	LedgerDuration   *prometheus.HistogramVec
	LedgerRetries    *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	OutboxBacklog   prometheus.Gauge
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers all metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		LedgerOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cantina_ledger_operations_total",
				Help: "Ledger operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		LedgerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cantina_ledger_operation_duration_seconds",
				Help:    "Duration of ledger operations including retries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		LedgerRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cantina_ledger_retries_total",
				Help: "Attempts retried after a concurrent modification",
			},
			[]string{"operation"},
		),
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cantina_events_published_total",
				Help: "Outbox events delivered, by type and outcome",
			},
			[]string{"event_type", "outcome"},
		),
		OutboxBacklog: factory.NewGauge(prometheus.GaugeOpts{
			Name: "cantina_outbox_backlog",
			Help: "Unpublished events seen by the last poll",
		}),
	}
}

// RecordOperation records one finished ledger operation.
func (m *Metrics) RecordOperation(operation, outcome string, d time.Duration) {
	m.LedgerOperations.WithLabelValues(operation, outcome).Inc()
	m.LedgerDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordRetry records one retried attempt.
func (m *Metrics) RecordRetry(operation string) {
	m.LedgerRetries.WithLabelValues(operation).Inc()
}

// RecordPublished records the delivery of one outbox event.
func (m *Metrics) RecordPublished(eventType string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.EventsPublished.WithLabelValues(eventType, outcome).Inc()
}

// RecordBacklog sets the number of pending outbox events.
func (m *Metrics) RecordBacklog(n int) {
	m.OutboxBacklog.Set(float64(n))
}
