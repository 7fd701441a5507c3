package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	BookingsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookings_submitted_total",
		Help: "Total number of persisted seat bookings",
	})

	CheckoutFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Total number of cart submissions aborted by a failed write",
	})

	PromoValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promo_validations_total",
		Help: "Total number of promo code validations by outcome",
	}, []string{"result"})

	ProfileLoadTimeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_load_timeouts_total",
		Help: "Total number of sign-in profile loads that exceeded the timeout",
	})

	ProfileLoadFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "profile_load_failures_total",
		Help: "Total number of profile loads that fell back to a minimal identity",
	})

	AppSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "app_sessions_active",
		Help: "Number of app sessions held in memory",
	})

	MessagesProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messages_processed_total",
		Help: "Total number of messages processed",
	}, []string{"subject"})

	MessagesProcessingFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "messages_processing_failed_total",
		Help: "Total number of messages processing failures",
	}, []string{"subject"})

	MessagesProcessingDuration = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Name:       "messages_processing_duration_seconds",
		Help:       "Duration of message processing in seconds",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"subject"})
)
