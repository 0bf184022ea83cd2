package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "park_requests_total",
			Help: "Total number of requests",
		},
		[]string{"route", "code", "method"},
	)

	BookingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "park_bookings_total",
			Help: "Booking attempts by path (person, guest) and outcome code",
		},
		[]string{"path", "outcome"},
	)

	PaymentValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "park_payment_validation_failures_total",
			Help: "Rejected payment inputs by validation code",
		},
		[]string{"code"},
	)

	DBTxDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "park_db_tx_seconds",
			Help:    "Duration of DB transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	OutboxLag = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "park_outbox_lag_seconds",
			Help: "Age of the oldest record published in the last relay pass",
		},
	)

	OutboxPublishFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "park_outbox_publish_failures_total",
			Help: "Total failed outbox publishes",
		},
	)

	RateLimitExceeded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "park_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)

	StatsRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "park_stats_refresh_total",
			Help: "Popularity statistics refresh runs by result",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// InitMetrics registers the collectors with the default registry. Safe to
// call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			BookingsTotal,
			PaymentValidationFailures,
			DBTxDuration,
			OutboxLag,
			OutboxPublishFailures,
			RateLimitExceeded,
			StatsRefreshTotal,
		)
	})
}
