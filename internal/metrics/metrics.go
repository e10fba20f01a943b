package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPResponseSizeBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "Size of HTTP responses in bytes.",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8),
	}, []string{"method", "path", "status"})

	InFlightRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "Current number of in-flight HTTP requests.",
	})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "http_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter.",
	})
)

// Database metrics
var (
	DBQueryDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"query_type", "repository", "status"})

	DBQueryErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "db_query_errors_total",
		Help: "Total number of failed database queries.",
	}, []string{"query_type", "repository"})
)

// User activity metrics
var (
	NewUsersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_new_users_total",
		Help: "Total number of new user registrations.",
	})
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_login_attempts_total",
		Help: "Total number of login attempts (successful and failed).",
	}, []string{"status"}) // status: "success" or "failed"
	TotalUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "app_total_users",
		Help: "Total number of registered users in the application.",
	})
	OTPIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_otp_issued_total",
		Help: "Total number of password reset OTPs issued.",
	})
	PasswordResetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "app_password_resets_total",
		Help: "Total number of completed password resets.",
	})
	EmailsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_emails_sent_total",
		Help: "Total number of outbound emails by delivery mode and status.",
	}, []string{"mode", "status"})
)

// AI feature metrics
var (
	AIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "app_ai_requests_total",
		Help: "Total number of AI requests by kind and outcome.",
	}, []string{"kind", "outcome"}) // outcome: "generated", "cache_hit" or "fallback"
	AIRequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "app_ai_request_duration_seconds",
		Help:    "Duration of calls to the AI provider in seconds.",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"kind", "provider"})
)
