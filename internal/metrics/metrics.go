package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trip_service",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "trip_service",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Upstream lookups against the route, schedule and permit services
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trip_service",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Upstream lookups by service and outcome",
	}, []string{"service", "outcome"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "trip_service",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Upstream lookup latency in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"service"})

	// Trip writes
	TripsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trip_service",
		Subsystem: "trips",
		Name:      "created_total",
		Help:      "Total trips created",
	})

	TripCreateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trip_service",
		Subsystem: "trips",
		Name:      "create_failures_total",
		Help:      "Trip creations rejected or failed, by reason",
	}, []string{"reason"})

	SeatsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "trip_service",
		Subsystem: "trips",
		Name:      "seats_confirmed_total",
		Help:      "Total seats moved from available to confirmed",
	})
)

// ObserveUpstream records one upstream lookup
func ObserveUpstream(service, outcome string, elapsed time.Duration) {
	UpstreamRequests.WithLabelValues(service, outcome).Inc()
	UpstreamDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}

// Middleware records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// FullPath is the route pattern, which keeps label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler returns a gin handler serving the Prometheus /metrics endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
