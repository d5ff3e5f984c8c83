package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	statusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_status_transitions_total",
			Help: "Total number of report status transitions",
		},
		[]string{"target"},
	)

	bidsAcceptedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bids_accepted_total",
			Help: "Total number of accepted bids",
		},
	)

	moderationActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_actions_total",
			Help: "Total number of moderation actions",
		},
		[]string{"action"},
	)
)

// Metrics collects request counters and latency histograms for every route.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		httpRequestsInFlight.Inc()

		err := c.Next()

		httpRequestsInFlight.Dec()

		endpoint := c.Route().Path
		if endpoint == "" {
			endpoint = "unknown"
		}
		status := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(c.Method(), endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), endpoint).Observe(time.Since(start).Seconds())

		return err
	}
}

// RecordStatusTransition records one lifecycle transition by target status.
func RecordStatusTransition(target string) {
	statusTransitionsTotal.WithLabelValues(target).Inc()
}

// RecordBidAccepted records one successful bid acceptance.
func RecordBidAccepted() {
	bidsAcceptedTotal.Inc()
}

// RecordModerationAction records one moderation action by tag.
func RecordModerationAction(action string) {
	moderationActionsTotal.WithLabelValues(action).Inc()
}
