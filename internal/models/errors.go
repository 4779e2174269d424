package models

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies a chat failure into a closed set of outcomes.
// Every error path in the service maps to exactly one kind.
type ErrorKind string

const (
	// KindInvalidInput marks an empty or oversized message. User-correctable;
	// retrying the same request will not help.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindRateLimited marks local admission-control rejection. The caller
	// should back off and retry later.
	KindRateLimited ErrorKind = "rate_limited"
	// KindAuthFailure marks invalid upstream credentials. Operator-correctable,
	// not retryable by the caller.
	KindAuthFailure ErrorKind = "auth_failure"
	// KindUpstreamTimeout marks the provider exceeding its time budget.
	// Safe to retry.
	KindUpstreamTimeout ErrorKind = "upstream_timeout"
	// KindUpstreamRateLimited marks provider-side throttling. Retry after backoff.
	KindUpstreamRateLimited ErrorKind = "upstream_rate_limited"
	// KindUpstreamError marks a generic provider fault. Retryable.
	KindUpstreamError ErrorKind = "upstream_error"
	// KindInternal marks an unexpected fault. Logged server-side; the caller
	// only sees a generic message.
	KindInternal ErrorKind = "internal"
)

// Caller-facing messages in the service's conversational language.
// Raw provider detail is never exposed to callers.
const (
	msgInvalidInputEmpty    = "خالی پیغام نہیں بھیجا جا سکتا۔"
	msgInvalidInputTooLong  = "پیغام بہت طویل ہے۔ زیادہ سے زیادہ %d حروف allowed ہیں۔"
	msgRateLimited          = "درخواست کی حد سے تجاوز۔ براہ کرم ایک منٹ بعد دوبارہ کوشش کریں۔"
	msgAuthFailure          = "API key غلط ہے۔ براہ کرم درست API key سیٹ کریں۔"
	msgUpstreamTimeout      = "درخواست ٹائم آؤٹ ہو گئی۔ براہ کرم دوبارہ کوشش کریں۔"
	msgUpstreamRateLimited  = "API استعمال کی حد سے تجاوز۔ براہ کرم تھوڑی دیر بعد دوبارہ کوشش کریں۔"
	msgUpstreamError        = "API میں عارضی مسئلہ ہے۔ براہ کرم دوبارہ کوشش کریں۔"
	msgInternal             = "سرور میں عارضی مسئلہ ہے۔ براہ کرم دوبارہ کوشش کریں۔"
	msgSessionNotFound      = "سیشن نہیں ملا۔"
	msgRouteNotFound        = "راستہ نہیں ملا۔"
	msgSessionCleared       = "سیشن ہسٹری صاف کر دی گئی ہے۔"
	msgInvalidRequestFormat = "غلط درخواست۔ 'message' فیلڈ ضروری ہے۔"
)

// ChatError represents a failed chat operation with a classified kind,
// a caller-facing message, and the HTTP status code to return.
// It implements the error interface.
type ChatError struct {
	// Kind is the failure classification.
	Kind ErrorKind `json:"-"`
	// Message is the human-readable, caller-language description.
	Message string `json:"error"`
	// StatusCode is the HTTP status code to return (excluded from JSON).
	StatusCode int `json:"-"`
}

// Error returns a string representation of the chat error.
// It implements the error interface.
func (e *ChatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewEmptyMessageError creates an InvalidInput error for an empty or
// all-whitespace message. Returns HTTP 400 Bad Request.
func NewEmptyMessageError() *ChatError {
	return &ChatError{
		Kind:       KindInvalidInput,
		Message:    msgInvalidInputEmpty,
		StatusCode: http.StatusBadRequest,
	}
}

// NewMessageTooLongError creates an InvalidInput error for a message
// exceeding the configured character limit. Returns HTTP 400 Bad Request.
func NewMessageTooLongError(limit int) *ChatError {
	return &ChatError{
		Kind:       KindInvalidInput,
		Message:    fmt.Sprintf(msgInvalidInputTooLong, limit),
		StatusCode: http.StatusBadRequest,
	}
}

// NewInvalidRequestError creates an InvalidInput error for a malformed
// request body. Returns HTTP 400 Bad Request.
func NewInvalidRequestError() *ChatError {
	return &ChatError{
		Kind:       KindInvalidInput,
		Message:    msgInvalidRequestFormat,
		StatusCode: http.StatusBadRequest,
	}
}

// NewRateLimitedError creates a RateLimited error for admission-control
// rejection. Returns HTTP 429 Too Many Requests.
func NewRateLimitedError() *ChatError {
	return &ChatError{
		Kind:       KindRateLimited,
		Message:    msgRateLimited,
		StatusCode: http.StatusTooManyRequests,
	}
}

// NewAuthFailureError creates an AuthFailure error for invalid upstream
// credentials. Returns HTTP 401 Unauthorized.
func NewAuthFailureError() *ChatError {
	return &ChatError{
		Kind:       KindAuthFailure,
		Message:    msgAuthFailure,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewUpstreamTimeoutError creates an UpstreamTimeout error for a provider
// call exceeding its time budget. Returns HTTP 408 Request Timeout.
func NewUpstreamTimeoutError() *ChatError {
	return &ChatError{
		Kind:       KindUpstreamTimeout,
		Message:    msgUpstreamTimeout,
		StatusCode: http.StatusRequestTimeout,
	}
}

// NewUpstreamRateLimitedError creates an UpstreamRateLimited error for
// provider-side throttling. Returns HTTP 429 Too Many Requests.
func NewUpstreamRateLimitedError() *ChatError {
	return &ChatError{
		Kind:       KindUpstreamRateLimited,
		Message:    msgUpstreamRateLimited,
		StatusCode: http.StatusTooManyRequests,
	}
}

// NewUpstreamError creates an UpstreamError for a generic provider fault.
// Returns HTTP 500 Internal Server Error.
func NewUpstreamError() *ChatError {
	return &ChatError{
		Kind:       KindUpstreamError,
		Message:    msgUpstreamError,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewInternalError creates an Internal error for an unexpected fault.
// Returns HTTP 500 Internal Server Error.
func NewInternalError() *ChatError {
	return &ChatError{
		Kind:       KindInternal,
		Message:    msgInternal,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewSessionNotFoundError creates the error body for an unknown session id.
// Returns HTTP 404 Not Found.
func NewSessionNotFoundError() *ChatError {
	return &ChatError{
		Kind:       KindInvalidInput,
		Message:    msgSessionNotFound,
		StatusCode: http.StatusNotFound,
	}
}

// NewRouteNotFoundError creates the error body for an unmatched route.
// Returns HTTP 404 Not Found.
func NewRouteNotFoundError() *ChatError {
	return &ChatError{
		Kind:       KindInvalidInput,
		Message:    msgRouteNotFound,
		StatusCode: http.StatusNotFound,
	}
}

// SessionClearedMessage returns the confirmation text for a deleted session.
func SessionClearedMessage() string {
	return msgSessionCleared
}
