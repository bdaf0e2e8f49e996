// Package httperr maps errors to JSON error responses
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/astroview/internal/upstream"
)

// Error names used in the "error" field of a response body
const (
	KindValidation  = "ValidationError"
	KindNotFound    = "NotFoundError"
	KindRateLimit   = "RateLimitError"
	KindExternalAPI = "ExternalAPIError"
	KindInternal    = "Error"
)

// APIError is an error with an HTTP status and a client-safe message
type APIError struct {
	Kind       string
	Status     int
	Message    string
	Details    any
	APIName    string
	RetryAfter string
	// Upstream holds the status an external API answered with, if any
	Upstream int
	cause    error
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return e.Kind + ": " + e.Message
}

func (e *APIError) Unwrap() error { return e.cause }

func Validation(msg string, details any) *APIError {
	return &APIError{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg, Details: details}
}

func NotFound(msg string) *APIError {
	if msg == "" {
		msg = "Resource not found"
	}
	return &APIError{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg}
}

func RateLimit(msg, retryAfter string) *APIError {
	if msg == "" {
		msg = "Rate limit exceeded"
	}
	return &APIError{Kind: KindRateLimit, Status: http.StatusTooManyRequests, Message: msg, RetryAfter: retryAfter}
}

// External wraps a failed upstream call. The response status mirrors the
// upstream's when it answered, 502 otherwise.
func External(api string, err error) *APIError {
	e := &APIError{
		Kind:    KindExternalAPI,
		Status:  http.StatusBadGateway,
		Message: "External API error",
		APIName: api,
		cause:   err,
	}
	var se *upstream.StatusError
	switch {
	case errors.As(err, &se):
		e.Status = se.StatusCode
		e.Upstream = se.StatusCode
		if msg := se.Message(); msg != "" {
			e.Message = msg
		}
		if se.StatusCode == http.StatusTooManyRequests {
			e.RetryAfter = se.RetryAfter
		}
	case errors.Is(err, context.DeadlineExceeded):
		e.Status = http.StatusGatewayTimeout
		e.Message = "External API timed out"
	}
	return e
}

type body struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	APIName    string `json:"apiName,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	RetryAfter string `json:"retryAfter,omitempty"`
	Stack      string `json:"stack,omitempty"`
}

// Writer renders errors; Verbose adds the underlying error chain to bodies
type Writer struct {
	Verbose bool
}

// Write logs err and renders it. Errors that are not *APIError become a 500
// without leaking their text unless Verbose is set.
func (wr Writer) Write(w http.ResponseWriter, r *http.Request, err error) {
	var ae *APIError
	if !errors.As(err, &ae) {
		ae = &APIError{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "Internal Server Error", cause: err}
	}

	logger := hlog.FromRequest(r)
	ev := logger.Warn()
	if ae.Status >= 500 {
		ev = logger.Error()
	}
	ev.Err(err).
		Str("kind", ae.Kind).
		Int("status", ae.Status).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")

	b := body{
		Error:      ae.Kind,
		Message:    ae.Message,
		Details:    ae.Details,
		APIName:    ae.APIName,
		StatusCode: ae.Upstream,
		RetryAfter: ae.RetryAfter,
	}
	if wr.Verbose && ae.cause != nil {
		b.Stack = fmt.Sprintf("%+v", ae.cause)
	}
	if ae.RetryAfter != "" {
		w.Header().Set("Retry-After", ae.RetryAfter)
	}
	JSON(w, ae.Status, b)
}

// JSON writes v with status
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
