// Package llm provides the client for the upstream OpenAI-compatible
// chat-completions service. Provider failures are reported as a closed set
// of typed error kinds so callers can map them exhaustively without
// inspecting raw provider detail.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/config"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/models"
)

// ErrorKind classifies an upstream failure.
type ErrorKind string

const (
	// KindAuth marks rejected credentials (HTTP 401/403).
	KindAuth ErrorKind = "auth"
	// KindRateLimited marks provider-side throttling (HTTP 429).
	KindRateLimited ErrorKind = "rate_limited"
	// KindTimeout marks an exceeded time budget or cancelled context.
	KindTimeout ErrorKind = "timeout"
	// KindAPI marks any other provider fault, including malformed responses.
	KindAPI ErrorKind = "api"
)

// Error is a classified upstream failure. It implements the error interface.
type Error struct {
	// Kind is the failure classification.
	Kind ErrorKind
	// Detail is the provider-reported message, for logs only. It is never
	// surfaced to API callers.
	Detail string
}

// Error returns a string representation of the upstream failure.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("llm %s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("llm %s", e.Kind)
}

// Request carries one chat-completion invocation.
type Request struct {
	// Messages is the full prompt: system instruction, history, new user turn.
	Messages []models.Message
	// MaxTokens is the completion token ceiling.
	MaxTokens int
	// Temperature is the sampling temperature.
	Temperature float64
}

// Completion is a successful provider response.
type Completion struct {
	// Content is the generated reply text from the first choice.
	Content string
	// PromptTokens and CompletionTokens report upstream token usage.
	PromptTokens     int
	CompletionTokens int
}

// Client generates chat completions. Implementations must honor context
// cancellation and return *Error for every failure.
type Client interface {
	// Complete sends the prompt and returns the generated reply.
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// OpenAIClient implements Client against the OpenAI-compatible
// chat-completions API.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// Option configures the OpenAI client.
type Option func(*OpenAIClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *OpenAIClient) { o.httpClient = c }
}

// NewOpenAIClient creates a client from the provider configuration.
// The HTTP client carries no timeout of its own; callers bound each
// request through its context.
func NewOpenAIClient(cfg *config.OpenAIConfig, opts ...Option) *OpenAIClient {
	c := &OpenAIClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- OpenAI API request/response types ---

type oaiRequest struct {
	Model       string           `json:"model"`
	Messages    []models.Message `json:"messages"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature float64          `json:"temperature"`
}

type oaiResponse struct {
	Choices []oaiChoice `json:"choices"`
	Usage   oaiUsage    `json:"usage"`
	Error   *oaiError   `json:"error,omitempty"`
}

type oaiChoice struct {
	Message      models.Message `json:"message"`
	FinishReason string         `json:"finish_reason"`
}

type oaiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type oaiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Complete sends a non-streaming chat-completion request and returns the
// first choice's message content.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	body, err := json.Marshal(oaiRequest{
		Model:       c.model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, &Error{Kind: KindAPI, Detail: fmt.Sprintf("marshal request: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindAPI, Detail: fmt.Sprintf("create request: %v", err)}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(resp)
	}

	var oaiResp oaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&oaiResp); err != nil {
		return nil, &Error{Kind: KindAPI, Detail: fmt.Sprintf("decode response: %v", err)}
	}

	if oaiResp.Error != nil {
		return nil, &Error{Kind: KindAPI, Detail: oaiResp.Error.Message}
	}

	if len(oaiResp.Choices) == 0 {
		return nil, &Error{Kind: KindAPI, Detail: "response contained no choices"}
	}

	return &Completion{
		Content:          oaiResp.Choices[0].Message.Content,
		PromptTokens:     oaiResp.Usage.PromptTokens,
		CompletionTokens: oaiResp.Usage.CompletionTokens,
	}, nil
}

// classifyTransportError maps connection-level failures, distinguishing
// deadline expiry from other transport faults.
func classifyTransportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTimeout, Detail: err.Error()}
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Detail: err.Error()}
	}
	return &Error{Kind: KindAPI, Detail: err.Error()}
}

// classifyHTTPError maps non-200 provider responses to error kinds,
// draining a bounded amount of the body for the log detail.
func classifyHTTPError(resp *http.Response) *Error {
	detail := fmt.Sprintf("HTTP %d", resp.StatusCode)

	var oaiResp oaiResponse
	limited := io.LimitReader(resp.Body, 4096)
	if err := json.NewDecoder(limited).Decode(&oaiResp); err == nil && oaiResp.Error != nil {
		detail = fmt.Sprintf("HTTP %d: %s: %s", resp.StatusCode, oaiResp.Error.Type, oaiResp.Error.Message)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{Kind: KindAuth, Detail: detail}
	case http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Detail: detail}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &Error{Kind: KindTimeout, Detail: detail}
	default:
		return &Error{Kind: KindAPI, Detail: detail}
	}
}
