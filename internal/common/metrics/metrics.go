// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"method", "path"},
	)

	AIProxyCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_proxy_calls_total",
			Help: "Total number of calls forwarded to the AI provider",
		},
		[]string{"operation", "outcome"},
	)

	ApplicationsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "applications_submitted_total",
			Help: "Total number of application submissions by outcome",
		},
		[]string{"outcome"},
	)
)
