package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

var (
	// LinesProcessed counts log lines consumed from the connector
	LinesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "authwatch",
			Name:      "lines_total",
			Help:      "Total number of log lines classified",
		},
		[]string{"source"},
	)

	// EventsClassified counts classification results by kind
	EventsClassified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "authwatch",
			Name:      "events_total",
			Help:      "Total number of classified events by kind",
		},
		[]string{"kind", "alert_worthy"},
	)

	// AlertsDispatched counts alerts handed to the dispatcher
	AlertsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "authwatch",
			Name:      "alerts_total",
			Help:      "Total number of alerts dispatched",
		},
		[]string{"title"},
	)

	// Deliveries counts notification attempts per channel and result
	Deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "authwatch",
			Name:      "deliveries_total",
			Help:      "Total number of notification channel deliveries",
		},
		[]string{"channel", "result"},
	)

	// AuditErrors counts failed audit log appends
	AuditErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "authwatch",
			Name:      "audit_errors_total",
			Help:      "Total number of failed audit log writes",
		},
	)

	// ClassificationErrors counts lines whose classification failed
	ClassificationErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "authwatch",
			Name:      "classification_errors_total",
			Help:      "Total number of lines that failed classification",
		},
	)

	once sync.Once
)

// Delivery results.
const (
	ResultDelivered = "delivered"
	ResultSkipped   = "skipped"
	ResultFailed    = "failed"
	ResultDropped   = "dropped"
)

// DeliveryCount reads the current authwatch_deliveries_total value for one
// channel and result.
func DeliveryCount(channel, result string) float64 {
	var m dto.Metric
	if err := Deliveries.WithLabelValues(channel, result).Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// InitMetrics registers all metrics with the global Prometheus registry.
// Safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(LinesProcessed)
		prometheus.DefaultRegisterer.Register(EventsClassified)
		prometheus.DefaultRegisterer.Register(AlertsDispatched)
		prometheus.DefaultRegisterer.Register(Deliveries)
		prometheus.DefaultRegisterer.Register(AuditErrors)
		prometheus.DefaultRegisterer.Register(ClassificationErrors)
	})
}
