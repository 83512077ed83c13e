package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts order pipeline outcomes.
type OrderMetrics struct {
	created     *prometheus.CounterVec
	cancelled   *prometheus.CounterVec
	transitions *prometheus.CounterVec
	rejected    *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer. A
// nil registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created from carts, by vendor kind.",
	}, []string{"vendor"})
	cancelled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Orders cancelled, by the role of the actor.",
	}, []string{"role"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status changes, by target status.",
	}, []string{"status"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_rejections_total",
		Help: "Order creations rejected, by error code.",
	}, []string{"code"})
	reg.MustRegister(created, cancelled, transitions, rejected)
	return &OrderMetrics{
		created:     created,
		cancelled:   cancelled,
		transitions: transitions,
		rejected:    rejected,
	}
}

func (m *OrderMetrics) IncCreated(vendor string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(vendor)).Inc()
}

func (m *OrderMetrics) IncCancelled(role string) {
	if m == nil || m.cancelled == nil {
		return
	}
	m.cancelled.WithLabelValues(normalizeLabel(role)).Inc()
}

func (m *OrderMetrics) IncTransition(status string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncRejected records a failed checkout keyed by its error code.
func (m *OrderMetrics) IncRejected(code string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(code)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
