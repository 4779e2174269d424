package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/config"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/middleware"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/models"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/ratelimit"
)

func newTestStack(maxRequests int) *middleware.Stack {
	cfg := &config.Config{
		Security: config.SecurityConfig{
			RateLimitRequests: maxRequests,
			RateLimitWindow:   time.Minute,
			AllowedOrigins:    []string{"*"},
			AllowedMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:    []string{"*"},
			TrustedProxies:    []string{"10.10.10.10"},
			MaxAge:            86400,
		},
	}

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	limiter := ratelimit.New(maxRequests, time.Minute)
	return middleware.NewStack(cfg, limiter, log)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	stack := newTestStack(2)
	handler := stack.RateLimit(okHandler())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.RemoteAddr = "192.0.2.1:5000"
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.RemoteAddr = "192.0.2.1:5000"
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)

	// A different client is unaffected.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.RemoteAddr = "192.0.2.2:5000"
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitTrustedProxyBypass(t *testing.T) {
	stack := newTestStack(1)
	handler := stack.RateLimit(okHandler())

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.RemoteAddr = "10.10.10.10:5000"
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitUsesForwardedForHeader(t *testing.T) {
	stack := newTestStack(1)
	handler := stack.RateLimit(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.RemoteAddr = "192.0.2.1:5000"
	req.Header.Set("X-Forwarded-For", "198.51.100.9, 192.0.2.1")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Same RemoteAddr with a different forwarded client is a new identity.
	other := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	other.RemoteAddr = "192.0.2.1:5000"
	other.Header.Set("X-Forwarded-For", "198.51.100.10")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	stack := newTestStack(10)
	handler := stack.Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestCORSPreflight(t *testing.T) {
	stack := newTestStack(10)
	handler := stack.CORS(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:8000")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestContentTypeValidation(t *testing.T) {
	stack := newTestStack(10)
	handler := stack.ContentType(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("Content-Type", "text/plain")
	req.ContentLength = 10

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
