package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the application's Prometheus collectors. Recording helpers are
// safe on a nil *Metrics so services can run without instrumentation.
type Metrics struct {
	// method, path, status_code
	HTTPRequestsTotal *prometheus.CounterVec

	// method, path
	HTTPRequestDuration *prometheus.HistogramVec

	// status: created, replayed, overbooked, invalid, lock_failed, error
	ReservationsTotal *prometheus.CounterVec

	// operation: acquire/release, status: success/failed
	DistributedLockDuration *prometheus.HistogramVec

	DiscountRedemptionsTotal prometheus.Counter

	// channel, status: sent/failed
	NotificationsTotal *prometheus.CounterVec

	// status: created/failed/skipped
	PaymentSessionsTotal *prometheus.CounterVec

	// result: hit/miss/error
	AvailabilityCacheTotal *prometheus.CounterVec

	// source: admin/webhook/cleaner/lifecycle, status: new status
	StatusTransitionsTotal *prometheus.CounterVec
}

// New creates Metrics registered on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors on reg.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservations_total",
				Help: "Total number of checkout attempts by outcome",
			},
			[]string{"status"},
		),
		DistributedLockDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "distributed_lock_duration_seconds",
				Help:    "Time spent on distributed lock operations",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
		DiscountRedemptionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "discount_redemptions_total",
				Help: "Total number of discount codes redeemed by reservations",
			},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_total",
				Help: "Order notifications by channel and outcome",
			},
			[]string{"channel", "status"},
		),
		PaymentSessionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_sessions_total",
				Help: "Payment session requests by outcome",
			},
			[]string{"status"},
		),
		AvailabilityCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "availability_cache_total",
				Help: "Availability cache lookups by result",
			},
			[]string{"result"},
		),
		StatusTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservation_status_transitions_total",
				Help: "Reservation status changes by source and new status",
			},
			[]string{"source", "status"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsTotal,
		m.DistributedLockDuration,
		m.DiscountRedemptionsTotal,
		m.NotificationsTotal,
		m.PaymentSessionsTotal,
		m.AvailabilityCacheTotal,
		m.StatusTransitionsTotal,
	)

	return m
}

func (m *Metrics) RecordReservation(status string) {
	if m == nil {
		return
	}
	m.ReservationsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordLock(operation, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.DistributedLockDuration.WithLabelValues(operation, status).Observe(d.Seconds())
}

func (m *Metrics) RecordRedemption() {
	if m == nil {
		return
	}
	m.DiscountRedemptionsTotal.Inc()
}

func (m *Metrics) RecordNotification(channel, status string) {
	if m == nil {
		return
	}
	m.NotificationsTotal.WithLabelValues(channel, status).Inc()
}

func (m *Metrics) RecordPaymentSession(status string) {
	if m == nil {
		return
	}
	m.PaymentSessionsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordCache(result string) {
	if m == nil {
		return
	}
	m.AvailabilityCacheTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordTransition(source, status string) {
	if m == nil {
		return
	}
	m.StatusTransitionsTotal.WithLabelValues(source, status).Inc()
}

var defaultMetrics *Metrics

// Init creates the default instance on the default registry.
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get returns the default instance, nil before Init.
func Get() *Metrics {
	return defaultMetrics
}
