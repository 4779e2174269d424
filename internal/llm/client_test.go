package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/config"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/llm"
	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/models"
)

func newTestClient(serverURL string) *llm.OpenAIClient {
	return llm.NewOpenAIClient(&config.OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Model:   "gpt-3.5-turbo",
	})
}

func testRequest() llm.Request {
	return llm.Request{
		Messages: []models.Message{
			{Role: models.RoleSystem, Content: "You are helpful."},
			{Role: models.RoleUser, Content: "hello"},
		},
		MaxTokens:   500,
		Temperature: 0.7,
	}
}

func TestCompleteSuccess(t *testing.T) {
	var captured map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "generated reply"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	completion, err := client.Complete(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, "generated reply", completion.Content)
	assert.Equal(t, 12, completion.PromptTokens)
	assert.Equal(t, 4, completion.CompletionTokens)

	// The wire request carries model, full prompt, and sampling settings.
	assert.Equal(t, "gpt-3.5-turbo", captured["model"])
	assert.InDelta(t, 0.7, captured["temperature"], 1e-9)
	assert.EqualValues(t, 500, captured["max_tokens"])
	msgs, ok := captured["messages"].([]interface{})
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestCompleteErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantKind   llm.ErrorKind
	}{
		{
			name:       "invalid_api_key",
			statusCode: http.StatusUnauthorized,
			body:       `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`,
			wantKind:   llm.KindAuth,
		},
		{
			name:       "forbidden",
			statusCode: http.StatusForbidden,
			body:       `{"error": {"message": "forbidden", "type": "access_error"}}`,
			wantKind:   llm.KindAuth,
		},
		{
			name:       "throttled",
			statusCode: http.StatusTooManyRequests,
			body:       `{"error": {"message": "Rate limit reached", "type": "rate_limit_error"}}`,
			wantKind:   llm.KindRateLimited,
		},
		{
			name:       "gateway_timeout",
			statusCode: http.StatusGatewayTimeout,
			body:       `{}`,
			wantKind:   llm.KindTimeout,
		},
		{
			name:       "server_error",
			statusCode: http.StatusInternalServerError,
			body:       `{"error": {"message": "The server had an error", "type": "server_error"}}`,
			wantKind:   llm.KindAPI,
		},
		{
			name:       "non_json_error_body",
			statusCode: http.StatusBadGateway,
			body:       `upstream exploded`,
			wantKind:   llm.KindAPI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			_, err := client.Complete(context.Background(), testRequest())

			var llmErr *llm.Error
			require.ErrorAs(t, err, &llmErr)
			assert.Equal(t, tt.wantKind, llmErr.Kind)
		})
	}
}

func TestCompleteContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Complete(ctx, testRequest())

	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.KindTimeout, llmErr.Kind)
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": [], "usage": {}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Complete(context.Background(), testRequest())

	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.KindAPI, llmErr.Kind)
}
