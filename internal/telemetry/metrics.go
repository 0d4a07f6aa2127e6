package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for order-pipeline observability. They
// count what the audit log already records, for dashboards and alerting.
type Metrics struct {
	OrdersCreated      prometheus.Counter
	OrderValue         prometheus.Histogram
	StatusTransitions  *prometheus.CounterVec
	HighValueOrders    prometheus.Counter
	SideEffectFailures *prometheus.CounterVec
	NotificationsSent  *prometheus.CounterVec
	OrdersDeleted      prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics on the given
// registerer. Pass prometheus.DefaultRegisterer for the usual /metrics
// endpoint.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "ordercore"
	}

	subsystem := "orders"
	factory := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}
	}

	m := &Metrics{
		OrdersCreated: prometheus.NewCounter(factory(
			"created_total", "Total orders created",
		)),
		OrderValue: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "value_cents",
			Help:      "Order total distribution in minor currency units",
			Buckets:   prometheus.ExponentialBuckets(500, 4, 10),
		}),
		StatusTransitions: prometheus.NewCounterVec(factory(
			"status_transitions_total", "Order status transitions applied",
		), []string{"from", "to"}),
		HighValueOrders: prometheus.NewCounter(factory(
			"high_value_total", "Orders above the high-value review threshold",
		)),
		SideEffectFailures: prometheus.NewCounterVec(factory(
			"side_effect_failures_total", "Side effects that failed and were logged for reconciliation",
		), []string{"kind"}),
		NotificationsSent: prometheus.NewCounterVec(factory(
			"notifications_enqueued_total", "Customer notifications enqueued",
		), []string{"template"}),
		OrdersDeleted: prometheus.NewCounter(factory(
			"deleted_total", "Orders removed via the administrative escape hatch",
		)),
	}

	reg.MustRegister(
		m.OrdersCreated,
		m.OrderValue,
		m.StatusTransitions,
		m.HighValueOrders,
		m.SideEffectFailures,
		m.NotificationsSent,
		m.OrdersDeleted,
	)

	return m
}
