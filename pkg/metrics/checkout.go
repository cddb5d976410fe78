package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// CheckoutMetrics records placed orders.
type CheckoutMetrics struct {
	orders     prometheus.Counter
	orderValue prometheus.Histogram
	events     *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on reg.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	orders := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_orders_total",
		Help:      "Orders placed through checkout.",
	})
	orderValue := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "checkout_order_value_dollars",
		Help:      "Order grand totals in dollars.",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2000, 5000},
	})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_order_events_total",
		Help:      "Order events handed to the publisher, by result.",
	}, []string{"result"})
	reg.MustRegister(orders, orderValue, events)
	return &CheckoutMetrics{orders: orders, orderValue: orderValue, events: events}
}

// ObserveOrder counts an order and records its total.
func (m *CheckoutMetrics) ObserveOrder(total decimal.Decimal) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.Inc()
	m.orderValue.Observe(total.InexactFloat64())
}

// IncEvent counts an order event publish attempt ("published", "failed", "skipped").
func (m *CheckoutMetrics) IncEvent(result string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(result)).Inc()
}
