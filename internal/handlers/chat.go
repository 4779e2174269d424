// Package handlers implements the HTTP endpoints of the chat service:
// the chat completion API, session management, health checks, and API
// metadata, together with their Prometheus instrumentation.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/chat"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/config"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/constants"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/models"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/pkg/logger"
)

// ServiceVersion is reported by the health and info endpoints.
const ServiceVersion = "1.0.0"

// ChatHandler serves the chat completion and session management endpoints.
type ChatHandler struct {
	svc     *chat.Service
	config  *config.Config
	logger  *logrus.Logger
	metrics *Metrics
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *chat.Service, cfg *config.Config, log *logrus.Logger, metrics *Metrics) *ChatHandler {
	return &ChatHandler{
		svc:     svc,
		config:  cfg,
		logger:  log,
		metrics: metrics,
	}
}

// RegisterRoutes registers the chat API routes on the router.
func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/chat", h.Chat).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{session_id}", h.ClearSession).Methods(http.MethodDelete)
	router.HandleFunc("/api/info", h.Info).Methods(http.MethodGet)
}

// Chat handles POST /api/chat: it relays the user message with accumulated
// conversation context to the completion provider and returns the reply.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.WithCorrelationID(ctx, h.logger)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeChatError(w, models.NewInvalidRequestError())
		h.metrics.ChatCompletionsTotal.WithLabelValues(string(models.KindInvalidInput)).Inc()
		return
	}

	resp, err := h.svc.Complete(ctx, req.SessionID, req.Message)
	if err != nil {
		var chatErr *models.ChatError
		if !errors.As(err, &chatErr) {
			log.WithError(err).Error("Completion returned an untyped error")
			chatErr = models.NewInternalError()
		}
		h.writeChatError(w, chatErr)
		h.metrics.ChatCompletionsTotal.WithLabelValues(string(chatErr.Kind)).Inc()
		return
	}

	h.metrics.ChatCompletionsTotal.WithLabelValues("success").Inc()
	h.metrics.ProviderRequestDuration.Observe(resp.ProcessingTime)
	h.metrics.ActiveSessions.Set(float64(h.svc.ActiveSessions()))

	h.writeJSON(w, http.StatusOK, resp)
}

// ClearSession handles DELETE /api/sessions/{session_id}.
func (h *ChatHandler) ClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]

	if !h.svc.ClearSession(sessionID) {
		h.writeChatError(w, models.NewSessionNotFoundError())
		return
	}

	h.metrics.ActiveSessions.Set(float64(h.svc.ActiveSessions()))
	h.writeJSON(w, http.StatusOK, models.MessageResponse{Message: models.SessionClearedMessage()})
}

// Info handles GET /api/info with static metadata describing the API surface.
func (h *ChatHandler) Info(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, models.InfoResponse{
		Name:        "AI Chat API",
		Version:     ServiceVersion,
		Description: "OpenAI GPT-3.5 Turbo پر مبنی چیٹ API",
		Endpoints: map[string]string{
			"chat":          "POST /api/chat",
			"health":        "GET /api/health",
			"clear_session": "DELETE /api/sessions/<session_id>",
		},
	})
}

// NotFound is the JSON handler for unmatched routes.
func (h *ChatHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeChatError(w, models.NewRouteNotFoundError())
}

// writeJSON writes a JSON response with the given status code.
func (h *ChatHandler) writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Error("Failed to encode JSON response")
	}
}

// writeChatError writes a ChatError as a JSON error body with its status code.
func (h *ChatHandler) writeChatError(w http.ResponseWriter, chatErr *models.ChatError) {
	h.writeJSON(w, chatErr.StatusCode, models.ErrorResponse{Error: chatErr.Message})
}
