// Package metrics exposes ledger and HTTP metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fishledger/internal/core/types"
)

// Config holds metrics configuration.
type Config struct {
	Namespace string
}

// DefaultConfig returns default metrics configuration.
func DefaultConfig() Config {
	return Config{Namespace: "fishledger"}
}

// Recorder implements ledger.Metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	salesTotal          prometheus.Counter
	soldKgTotal         prometheus.Counter
	allocationsRejected prometheus.Counter
	paymentsTotal       prometheus.Counter
	paymentAmountTotal  prometheus.Counter
	paymentsRejected    prometheus.Counter
	receiptTransitions  *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates a Recorder with Go and process collectors registered.
func New(cfg Config) *Recorder {
	ns := cfg.Namespace
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		salesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "sales_recorded_total",
			Help: "Sales committed to the ledger",
		}),
		soldKgTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "sold_kilograms_total",
			Help: "Kilograms of fish sold",
		}),
		allocationsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "allocations_rejected_total",
			Help: "Sales rejected for insufficient stock",
		}),
		paymentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "payments_recorded_total",
			Help: "Payments accepted against sales",
		}),
		paymentAmountTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "payment_amount_total",
			Help: "Sum of accepted payment amounts",
		}),
		paymentsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Name: "payments_rejected_total",
			Help: "Payments rejected as overpayment",
		}),
		receiptTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "receipt_transitions_total",
			Help: "Receipt lifecycle transitions by action",
		}, []string{"action"}),

		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "path"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.salesTotal, r.soldKgTotal, r.allocationsRejected,
		r.paymentsTotal, r.paymentAmountTotal, r.paymentsRejected,
		r.receiptTransitions,
		r.httpRequestsTotal, r.httpRequestDuration,
	)
	return r
}

// SaleRecorded implements ledger.Metrics.
func (r *Recorder) SaleRecorded(quantityKg types.Kilograms) {
	r.salesTotal.Inc()
	r.soldKgTotal.Add(quantityKg.InexactFloat64())
}

// AllocationRejected implements ledger.Metrics.
func (r *Recorder) AllocationRejected() { r.allocationsRejected.Inc() }

// PaymentRecorded implements ledger.Metrics.
func (r *Recorder) PaymentRecorded(amount types.Money) {
	r.paymentsTotal.Inc()
	r.paymentAmountTotal.Add(amount.InexactFloat64())
}

// PaymentRejected implements ledger.Metrics.
func (r *Recorder) PaymentRejected() { r.paymentsRejected.Inc() }

// ReceiptTransition implements ledger.Metrics.
func (r *Recorder) ReceiptTransition(action string) {
	r.receiptTransitions.WithLabelValues(action).Inc()
}

// ObserveHTTP records one served request. path is the route template, not the raw URL.
func (r *Recorder) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	r.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// PoolStats is the subset of connection pool statistics exported as gauges.
type PoolStats struct {
	Total    int32
	Acquired int32
	Idle     int32
}

// WatchPool exports database pool gauges sampled from stats at scrape time.
func (r *Recorder) WatchPool(stats func() PoolStats) {
	gauge := func(name, help string, pick func(PoolStats) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "fishledger", Subsystem: "db_pool", Name: name, Help: help,
		}, func() float64 { return float64(pick(stats())) })
	}
	r.registry.MustRegister(
		gauge("connections_total", "Open connections", func(s PoolStats) int32 { return s.Total }),
		gauge("connections_acquired", "Connections in use", func(s PoolStats) int32 { return s.Acquired }),
		gauge("connections_idle", "Idle connections", func(s PoolStats) int32 { return s.Idle }),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
