// Package middleware provides HTTP middleware components for the chat service
// including rate limiting, CORS, logging, security headers, and request validation.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/config"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/constants"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/models"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/ratelimit"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/pkg/logger"
)

const (
	// HTTPClientError minimum status code (4xx).
	HTTPClientError = 400
	// HTTPServerError minimum status code (5xx).
	HTTPServerError = 500
)

// contextKey is an unexported type for keys stored in context to avoid collisions.
type contextKey string

// requestIDKey is the context key used to store the request ID.
const requestIDKey contextKey = "request_id"

// Stack holds all middleware dependencies and provides
// methods to create HTTP middleware handlers.
type Stack struct {
	config  *config.Config
	limiter *ratelimit.Limiter
	logger  *logrus.Logger
}

// NewStack creates a new middleware stack with the provided dependencies.
func NewStack(cfg *config.Config, limiter *ratelimit.Limiter, logger *logrus.Logger) *Stack {
	return &Stack{
		config:  cfg,
		limiter: limiter,
		logger:  logger,
	}
}

// Chain applies multiple middleware functions to an HTTP handler.
func (m *Stack) Chain(h http.Handler, middleware ...func(http.Handler) http.Handler) http.Handler {
	for i := range middleware {
		h = middleware[len(middleware)-1-i](h)
	}
	return h
}

// RequestLogger logs HTTP requests with structured logging including
// request details, response status, and processing duration.
func (m *Stack) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Generate request ID and store it in the typed context key
		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)

		// Also store the correlation ID using the logger's correlation ID system
		ctx = logger.SetCorrelationID(ctx, requestID)
		r = r.WithContext(ctx)

		// Wrap response writer to capture the status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		// Add request ID to response headers
		wrapped.Header().Set(constants.HeaderXRequestID, requestID)

		// Process request
		next.ServeHTTP(wrapped, r)

		// Skip logging for health check endpoints
		if strings.HasPrefix(r.URL.Path, "/api/health") {
			return
		}

		// Log request details using correlation ID
		duration := time.Since(start)

		logEntry := logger.WithCorrelationID(r.Context(), m.logger)
		fields := logrus.Fields{
			"method":         r.Method,
			"path":           r.URL.Path,
			"status":         wrapped.statusCode,
			"duration":       duration.String(),
			"duration_ms":    duration.Milliseconds(),
			"remote_addr":    ClientIP(r),
			"user_agent":     r.UserAgent(),
			"content_length": r.ContentLength,
		}

		if referer := r.Header.Get(constants.HeaderReferer); referer != "" {
			fields["referer"] = referer
		}

		level := logrus.InfoLevel
		if wrapped.statusCode >= HTTPClientError {
			level = logrus.WarnLevel
		}
		if wrapped.statusCode >= HTTPServerError {
			level = logrus.ErrorLevel
		}

		logEntry.WithFields(fields).Log(level, "HTTP request processed")
	})
}

// RateLimit enforces the per-client sliding-window admission control.
// Rejected requests receive a 429 JSON body with a Retry-After header;
// trusted proxies bypass the check.
func (m *Stack) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := ClientIP(r)

		// Allow requests from trusted proxies without rate limiting
		if m.isTrustedProxy(clientIP) {
			next.ServeHTTP(w, r)
			return
		}

		now := time.Now()
		if !m.limiter.Allow(clientIP, now) {
			m.logger.WithFields(logrus.Fields{
				"client_ip": clientIP,
				"path":      r.URL.Path,
				"method":    r.Method,
			}).Warn("Rate limit exceeded")

			retryAfter := m.limiter.RetryAfter(clientIP, now)
			seconds := int(retryAfter.Seconds())
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(seconds))
			m.writeError(w, models.NewRateLimitedError())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CORS handles Cross-Origin Resource Sharing headers based on configuration.
func (m *Stack) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.setCORSHeaders(w, r)

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// setCORSHeaders sets the CORS headers based on the configured security settings.
func (m *Stack) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")

	// Check if origin is allowed
	if origin != "" && m.isOriginAllowed(origin) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
	} else if len(m.config.Security.AllowedOrigins) == 1 && m.config.Security.AllowedOrigins[0] == "*" {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	}

	// Set other CORS headers
	if len(m.config.Security.AllowedMethods) > 0 {
		w.Header().Set("Access-Control-Allow-Methods", strings.Join(m.config.Security.AllowedMethods, ", "))
	}

	if len(m.config.Security.AllowedHeaders) > 0 {
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(m.config.Security.AllowedHeaders, ", "))
	}

	if m.config.Security.MaxAge > 0 {
		// Format Max-Age as decimal seconds.
		w.Header().Set("Access-Control-Max-Age", strconv.Itoa(m.config.Security.MaxAge))
	}
}

// SecurityHeaders adds security-related HTTP headers to responses.
func (m *Stack) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Security headers
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// HSTS header for HTTPS
		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

// Recovery recovers from panics and logs them while returning a proper error response.
func (m *Stack) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logEntry := logger.WithCorrelationID(r.Context(), m.logger)

				logEntry.WithFields(logrus.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
					"panic":  err,
				}).Error("Panic recovered")

				// Return generic error to client
				m.writeError(w, models.NewInternalError())
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// ContentType validates Content-Type headers for POST requests.
func (m *Stack) ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only validate Content-Type for POST requests with body
		if r.Method == http.MethodPost && r.ContentLength > 0 {
			contentType := r.Header.Get(constants.HeaderContentType)

			if !strings.Contains(contentType, constants.ContentTypeJSON) {
				w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
				w.WriteHeader(http.StatusUnsupportedMediaType)
				body := models.ErrorResponse{Error: "Content-Type must be application/json"}
				_ = json.NewEncoder(w).Encode(body)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// writeError writes a ChatError as a JSON response with its status code.
func (m *Stack) writeError(w http.ResponseWriter, chatErr *models.ChatError) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(chatErr.StatusCode)
	if err := json.NewEncoder(w).Encode(models.ErrorResponse{Error: chatErr.Message}); err != nil {
		m.logger.WithError(err).Error("Failed to encode error response")
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter

	statusCode int
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// ClientIP extracts the real client IP address from various headers.
func ClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (load balancers, proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	// Check X-Real-IP header (nginx, some proxies)
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	return strings.Split(r.RemoteAddr, ":")[0]
}

// isTrustedProxy checks if the IP address is in the trusted proxies list.
func (m *Stack) isTrustedProxy(ip string) bool {
	for _, trustedIP := range m.config.Security.TrustedProxies {
		if ip == trustedIP {
			return true
		}
	}
	return false
}

// isOriginAllowed checks if an origin is allowed for CORS.
func (m *Stack) isOriginAllowed(origin string) bool {
	for _, allowedOrigin := range m.config.Security.AllowedOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}
	return false
}
