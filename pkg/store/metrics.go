package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors a store reports to. A nil
// *Metrics records nothing.
type Metrics struct {
	writes        *prometheus.CounterVec
	errors        *prometheus.CounterVec
	notifications prometheus.Counter
	subscriptions prometheus.Gauge
	pending       prometheus.Gauge
	batchSize     prometheus.Histogram
}

// NewMetrics registers the store collectors with reg under namespace. Stores
// sharing a Metrics value aggregate into the same series.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "ptrstore"
	}
	factory := promauto.With(reg)
	return &Metrics{
		writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Pointer mutations applied, by operation and mode",
		}, []string{"op", "mode"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Rejected mutations and recovered subscriber panics",
		}, []string{"op"}),
		notifications: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "notifications_total",
			Help:      "Values delivered to subscribers",
		}),
		subscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "active_subscriptions",
			Help:      "Open pointer subscriptions",
		}),
		pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "pending_mutations",
			Help:      "Deferred mutations waiting for the next tick",
		}),
		batchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "batch_size",
			Help:      "Mutations applied per batch",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
		}),
	}
}

func mode(deferred bool) string {
	if deferred {
		return "deferred"
	}
	return "immediate"
}

func (m *Metrics) write(op string, deferred bool, n int) {
	if m == nil || n == 0 {
		return
	}
	m.writes.WithLabelValues(op, mode(deferred)).Add(float64(n))
}

func (m *Metrics) batch(n int) {
	if m == nil || n == 0 {
		return
	}
	m.batchSize.Observe(float64(n))
}

func (m *Metrics) fail(op string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(op).Inc()
}

func (m *Metrics) notified() {
	if m == nil {
		return
	}
	m.notifications.Inc()
}

func (m *Metrics) subscribed(delta int) {
	if m == nil {
		return
	}
	m.subscriptions.Add(float64(delta))
}

func (m *Metrics) queued(n int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(n))
}

// Writes exposes the writes counter.
func (m *Metrics) Writes() *prometheus.CounterVec { return m.writes }

// Errors exposes the errors counter.
func (m *Metrics) Errors() *prometheus.CounterVec { return m.errors }

// Notifications exposes the notifications counter.
func (m *Metrics) Notifications() prometheus.Counter { return m.notifications }

// Subscriptions exposes the active subscriptions gauge.
func (m *Metrics) Subscriptions() prometheus.Gauge { return m.subscriptions }

// Pending exposes the pending mutations gauge.
func (m *Metrics) Pending() prometheus.Gauge { return m.pending }
