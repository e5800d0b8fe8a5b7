package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Gateway pipeline metrics
	GatewayRequestsTotal *prometheus.CounterVec
	GatewayRejections    *prometheus.CounterVec
	HandlerDuration      *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// API key metrics
	KeysIssued  prometheus.Counter
	KeysRevoked prometheus.Counter

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
}

var metrics *Metrics

// Init initializes all Prometheus metrics
func Init() *Metrics {
	if metrics != nil {
		return metrics
	}

	metrics = &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		GatewayRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_requests_total",
				Help: "Total number of requests admitted through the gateway pipeline",
			},
			[]string{"endpoint", "outcome"},
		),
		GatewayRejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_rejections_total",
				Help: "Total number of requests rejected by a pipeline step",
			},
			[]string{"code"},
		),
		HandlerDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_handler_duration_seconds",
				Help:    "Resource handler execution time in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"endpoint"},
		),

		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_hits_total",
				Help: "Total number of rate limit hits",
			},
			[]string{"api_key_id"},
		),

		KeysIssued: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "api_keys_issued_total",
				Help: "Total number of API keys issued",
			},
		),
		KeysRevoked: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "api_keys_revoked_total",
				Help: "Total number of API keys revoked",
			},
		),

		CircuitBreakerState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 0.5=half-open)",
			},
			[]string{"category"},
		),
	}

	return metrics
}

// Get returns the global metrics instance
func Get() *Metrics {
	if metrics == nil {
		return Init()
	}
	return metrics
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// GinHandler returns a Gin-compatible handler for Prometheus metrics
func GinHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// MetricsMiddleware is a Gin middleware for collecting HTTP metrics
func MetricsMiddleware() gin.HandlerFunc {
	m := Get()
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// RecordGatewayRequest counts one completed pipeline pass
func RecordGatewayRequest(endpoint string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	Get().GatewayRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}

// RecordRejection counts a pipeline rejection by error code
func RecordRejection(code string) {
	Get().GatewayRejections.WithLabelValues(code).Inc()
}

// RecordRateLimitHit records a rate limit hit for a key
func RecordRateLimitHit(keyID string) {
	Get().RateLimitHits.WithLabelValues(keyID).Inc()
}

// RecordHandlerDuration records resource handler execution time
func RecordHandlerDuration(endpoint string, duration time.Duration) {
	Get().HandlerDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordKeyIssued counts an issued API key
func RecordKeyIssued() {
	Get().KeysIssued.Inc()
}

// RecordKeyRevoked counts a revoked API key
func RecordKeyRevoked() {
	Get().KeysRevoked.Inc()
}

// SetCircuitBreakerState records circuit breaker state for a category
func SetCircuitBreakerState(category string, state float64) {
	Get().CircuitBreakerState.WithLabelValues(category).Set(state)
}
