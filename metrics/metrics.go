package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)

	// Engine metrics
	OrdersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Successful order placements",
		},
		[]string{"side"},
	)
	OrdersCancelled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "Successful order cancellations",
		},
		[]string{"side"},
	)
	OrdersRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_rejected_total",
			Help: "Rejected book operations by error kind",
		},
		[]string{"reason"},
	)
	RestingOrders = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "resting_orders",
			Help: "Resting orders currently in a book side",
		},
		[]string{"pair", "side"},
	)
	CustodyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "custody_failures_total",
			Help: "Debit/credit calls rejected by the custodian",
		},
	)
	PairsRegistered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pairs_registered_total",
			Help: "Order books created",
		},
	)

	// Outbox metrics
	EventsPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Notification events acked by the broker",
		},
	)
	OutboxPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "outbox_pending",
			Help: "Outbox rows not yet acked",
		},
	)
)

func Init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)

	prometheus.MustRegister(OrdersPlaced)
	prometheus.MustRegister(OrdersCancelled)
	prometheus.MustRegister(OrdersRejected)
	prometheus.MustRegister(RestingOrders)
	prometheus.MustRegister(CustodyFailures)
	prometheus.MustRegister(PairsRegistered)

	prometheus.MustRegister(EventsPublished)
	prometheus.MustRegister(OutboxPending)
}
