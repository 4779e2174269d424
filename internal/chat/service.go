// Package chat implements the completion orchestrator: it validates inbound
// messages, assembles the prompt from the session history, invokes the
// upstream provider, and records the exchange on success.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/config"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/llm"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/models"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/session"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/pkg/logger"
)

// defaultSystemPrompt instructs the model in the configured response
// language. Matches the deployed assistant's behavior.
const defaultSystemPrompt = "آپ ایک مفید AI معاون ہیں۔ اردو میں جواب دیں اور صارف کی مدد کے لیے تیار رہیں۔"

// Service orchestrates a chat completion end to end. It owns no state of
// its own; sessions live in the store and provider failures are mapped to
// the ChatError taxonomy before leaving this package.
type Service struct {
	cfg      *config.Config
	store    *session.Store
	provider llm.Client
	logger   *logrus.Logger
}

// NewService creates a completion orchestrator.
func NewService(cfg *config.Config, store *session.Store, provider llm.Client, log *logrus.Logger) *Service {
	return &Service{
		cfg:      cfg,
		store:    store,
		provider: provider,
		logger:   log,
	}
}

// Complete validates the user message, resolves the session, invokes the
// provider with the accumulated history, and returns the generated reply.
// A failed validation or provider call leaves the session unmodified.
// Every returned error is a *models.ChatError.
func (s *Service) Complete(ctx context.Context, sessionID, userText string) (*models.ChatResponse, error) {
	log := logger.WithCorrelationID(ctx, s.logger)

	userText = strings.TrimSpace(userText)
	if userText == "" {
		return nil, models.NewEmptyMessageError()
	}
	if utf8.RuneCountInString(userText) > s.cfg.Chat.MaxMessageLength {
		return nil, models.NewMessageTooLongError(s.cfg.Chat.MaxMessageLength)
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	sess := s.store.GetOrCreate(sessionID)

	prompt := s.buildPrompt(sess.Messages, userText)

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.OpenAI.RequestTimeout)
	defer cancel()

	start := time.Now()
	completion, err := s.provider.Complete(callCtx, llm.Request{
		Messages:    prompt,
		MaxTokens:   s.cfg.OpenAI.MaxTokens,
		Temperature: s.cfg.OpenAI.Temperature,
	})
	elapsed := time.Since(start)

	if err != nil {
		return nil, s.mapProviderError(log, sessionID, err)
	}

	s.store.AppendExchange(sessionID, userText, completion.Content, time.Now())

	log.WithFields(logrus.Fields{
		"session_id":        sessionID,
		"processing_time":   fmt.Sprintf("%.2fs", elapsed.Seconds()),
		"prompt_tokens":     completion.PromptTokens,
		"completion_tokens": completion.CompletionTokens,
	}).Info("Chat processed")

	return &models.ChatResponse{
		Reply:          completion.Content,
		SessionID:      sessionID,
		ProcessingTime: elapsed.Seconds(),
	}, nil
}

// ClearSession removes a session's history and reports whether it existed.
func (s *Service) ClearSession(sessionID string) bool {
	return s.store.Delete(sessionID)
}

// ActiveSessions returns the number of live sessions.
func (s *Service) ActiveSessions() int {
	return s.store.Count()
}

// ProviderConfigured reports whether an upstream API key is set.
func (s *Service) ProviderConfigured() bool {
	return s.cfg.IsProviderConfigured()
}

// buildPrompt assembles system instruction + history (oldest first) + the
// new user turn.
func (s *Service) buildPrompt(history []models.Message, userText string) []models.Message {
	systemPrompt := s.cfg.Chat.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	prompt := make([]models.Message, 0, len(history)+2)
	prompt = append(prompt, models.Message{Role: models.RoleSystem, Content: systemPrompt})
	prompt = append(prompt, history...)
	prompt = append(prompt, models.Message{Role: models.RoleUser, Content: userText})
	return prompt
}

// mapProviderError translates the provider's closed failure set into the
// caller-facing taxonomy. The provider detail stays in the logs.
func (s *Service) mapProviderError(log *logrus.Entry, sessionID string, err error) *models.ChatError {
	var llmErr *llm.Error
	if !errors.As(err, &llmErr) {
		log.WithError(err).WithField("session_id", sessionID).Error("Unexpected completion error")
		return models.NewInternalError()
	}

	entry := log.WithField("session_id", sessionID).WithError(llmErr)
	switch llmErr.Kind {
	case llm.KindAuth:
		entry.Error("OpenAI authentication failed")
		return models.NewAuthFailureError()
	case llm.KindRateLimited:
		entry.Error("OpenAI rate limit exceeded")
		return models.NewUpstreamRateLimitedError()
	case llm.KindTimeout:
		entry.Error("OpenAI request timeout")
		return models.NewUpstreamTimeoutError()
	case llm.KindAPI:
		entry.Error("OpenAI API error")
		return models.NewUpstreamError()
	default:
		entry.Error("Unclassified OpenAI error")
		return models.NewUpstreamError()
	}
}
