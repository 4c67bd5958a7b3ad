package http

import "github.com/prometheus/client_golang/prometheus"

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platform_request_duration_seconds",
			Help:    "Request duration",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method"},
	)

	// RateLimitRejected counts requests rejected by the rate limiter.
	RateLimitRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "platform_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		RateLimitRejected,
	)
}
