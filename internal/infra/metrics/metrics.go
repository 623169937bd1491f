package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"cinema-booking/internal/domain/booking"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cinema_booking"

// QueueDepth reports how many items are parked on a queue.
type QueueDepth interface {
	Len(ctx context.Context) (int64, error)
}

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry   *prometheus.Registry
	checkouts  *prometheus.CounterVec
	reconciles *prometheus.CounterVec
	redeems    *prometheus.CounterVec
	swept      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Checkout attempts by outcome",
		}, []string{"outcome"}),
		reconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_reconciliations_total",
			Help:      "Payment confirmations processed by outcome",
		}, []string{"outcome"}),
		redeems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_scans_total",
			Help:      "Check-in scans by outcome",
		}, []string{"outcome"}),
		swept: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeper_items_total",
			Help:      "Rows processed by background sweeps",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.checkouts,
		m.reconciles,
		m.redeems,
		m.swept,
	)
	return m
}

func (m *Metrics) Checkout(outcome string) {
	m.checkouts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Reconcile(outcome booking.ReconcileOutcome) {
	m.reconciles.WithLabelValues(outcome.String()).Inc()
}

func (m *Metrics) Redeem(outcome booking.RedeemOutcome) {
	m.redeems.WithLabelValues(outcome.String()).Inc()
}

func (m *Metrics) Swept(kind string, n int) {
	if n <= 0 {
		return
	}
	m.swept.WithLabelValues(kind).Add(float64(n))
}

// WatchQueue exports the depth of q, sampled at scrape time.
func (m *Metrics) WatchQueue(name string, q QueueDepth) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "retry_queue_depth",
		Help:        "Items waiting on a retry queue",
		ConstLabels: prometheus.Labels{"queue": name},
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		n, err := q.Len(ctx)
		if err != nil {
			slog.Warn("failed to sample queue depth", "queue", name, "error", err.Error())
			return 0
		}
		return float64(n)
	}))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
