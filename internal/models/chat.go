// Package models defines the API data transfer objects and the chat error
// taxonomy shared across the service.
package models

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem marks the fixed system instruction.
	RoleSystem Role = "system"
	// RoleUser marks a caller-supplied message.
	RoleUser Role = "user"
	// RoleAssistant marks a model-generated reply.
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn in OpenAI chat-completions format.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	// Message is the user's message text.
	Message string `json:"message"`
	// SessionID optionally continues an existing conversation.
	// When empty the server generates a fresh session.
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	// Reply is the generated assistant reply.
	Reply string `json:"reply"`
	// SessionID identifies the conversation for follow-up requests.
	SessionID string `json:"session_id"`
	// ProcessingTime is the upstream call wall-clock duration in seconds.
	ProcessingTime float64 `json:"processing_time"`
}

// MessageResponse is a generic informational response body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status           string    `json:"status"`
	Timestamp        time.Time `json:"timestamp"`
	ActiveSessions   int       `json:"active_sessions"`
	OpenAIConfigured bool      `json:"openai_configured"`
	Uptime           string    `json:"uptime,omitempty"`
	Version          string    `json:"version,omitempty"`
}

// InfoResponse is the static API metadata returned by GET /api/info.
type InfoResponse struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}
