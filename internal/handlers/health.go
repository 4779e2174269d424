package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/chat"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/config"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/constants"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/models"
)

// HealthHandler provides health check and monitoring endpoints.
type HealthHandler struct {
	config    *config.Config
	svc       *chat.Service
	logger    *logrus.Logger
	metrics   *Metrics
	startTime time.Time
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(cfg *config.Config, svc *chat.Service, log *logrus.Logger, metrics *Metrics) *HealthHandler {
	return &HealthHandler{
		config:    cfg,
		svc:       svc,
		logger:    log,
		metrics:   metrics,
		startTime: time.Now(),
	}
}

// Health handles GET /api/health with service status, session count, and
// provider configuration state.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Processing health check request")
	h.metrics.HealthChecksTotal.WithLabelValues("health").Inc()

	activeSessions := h.svc.ActiveSessions()
	h.metrics.ActiveSessions.Set(float64(activeSessions))

	resp := models.HealthResponse{
		Status:           "healthy",
		Timestamp:        time.Now(),
		ActiveSessions:   activeSessions,
		OpenAIConfigured: h.svc.ProviderConfigured(),
	}

	// Uptime and version are diagnostics; omit them in production.
	if !h.config.IsProduction() {
		resp.Uptime = time.Since(h.startTime).Round(time.Second).String()
		resp.Version = ServiceVersion
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Liveness handles GET /api/health/live as a minimal process-up probe.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	h.metrics.HealthChecksTotal.WithLabelValues("liveness").Inc()

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

// writeJSON writes a JSON response with the given status code.
func (h *HealthHandler) writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Error("Failed to encode JSON response")
	}
}
