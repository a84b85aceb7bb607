// Package metrics holds the Prometheus collectors exported by the API.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	checkouts        *prometheus.CounterVec
	checkoutDuration prometheus.Histogram
	numberRetries    prometheus.Counter
	publishFailures  *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	lowStockEvents   prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkout_total",
			Help: "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		checkoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "checkout_duration_seconds",
			Help:    "Duration of checkout transactions in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
		numberRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "order_number_retries_total",
			Help: "Order number collisions that triggered a regeneration.",
		}),
		publishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_event_publish_failed_total",
			Help: "Count of order-related event publish failures.",
		}, []string{"event"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		lowStockEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listing_stock_low_total",
			Help: "Low-stock events emitted by the inventory watcher.",
		}),
	}
	reg.MustRegister(m.checkouts, m.checkoutDuration, m.numberRetries, m.publishFailures,
		m.httpRequests, m.httpDuration, m.lowStockEvents)
	return m
}

func (m *Metrics) ObserveCheckout(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(outcome).Inc()
	m.checkoutDuration.Observe(d.Seconds())
}

func (m *Metrics) OrderNumberRetry() {
	if m == nil {
		return
	}
	m.numberRetries.Inc()
}

func (m *Metrics) PublishFailed(event string) {
	if m == nil {
		return
	}
	m.publishFailures.WithLabelValues(event).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) LowStock() {
	if m == nil {
		return
	}
	m.lowStockEvents.Inc()
}
