package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for monitoring.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Chat metrics
	ChatCompletionsTotal    *prometheus.CounterVec
	ProviderRequestDuration prometheus.Histogram
	ActiveSessions          prometheus.Gauge

	// Health metrics
	HealthChecksTotal *prometheus.CounterVec
}

// NewMetrics creates and returns Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chat_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ChatCompletionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_completions_total",
				Help: "Total number of chat completion requests by outcome",
			},
			[]string{"outcome"},
		),
		ProviderRequestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chat_provider_request_duration_seconds",
				Help:    "Upstream completion call duration in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
			},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "chat_active_sessions",
				Help: "Number of live conversation sessions",
			},
		),
		HealthChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_health_checks_total",
				Help: "Total number of health checks",
			},
			[]string{"endpoint"},
		),
	}
}

// Register registers all metrics with the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ChatCompletionsTotal,
		m.ProviderRequestDuration,
		m.ActiveSessions,
		m.HealthChecksTotal,
	)
}

// InstrumentHTTP wraps a handler to record request counts and durations.
func (m *Metrics) InstrumentHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		m.HTTPRequestsTotal.WithLabelValues(
			r.Method, r.URL.Path, strconv.Itoa(wrapped.statusCode),
		).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).
			Observe(time.Since(start).Seconds())
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter

	statusCode int
}

// WriteHeader captures the status code.
func (s *statusRecorder) WriteHeader(code int) {
	s.statusCode = code
	s.ResponseWriter.WriteHeader(code)
}
