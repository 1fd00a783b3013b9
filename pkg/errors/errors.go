// Package errors defines the structured request errors for the apikit service.
// Every error carries its canonical HTTP status and serializes to the
// normalized JSON envelope shared by all API responses.
package errors

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

// AppError represents a structured application error with an HTTP status.
type AppError struct {
	Status  int
	Message string
	cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error for error chain support.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause attaches a cause error. The cause is folded into the envelope
// message so unexpected failures are never silently swallowed.
func (e *AppError) WithCause(cause error) *AppError {
	return &AppError{
		Status:  e.Status,
		Message: fmt.Sprintf("%s: %v", e.Message, cause),
		cause:   cause,
	}
}

// ================================================================================
// Error Constructors
// ================================================================================

// New creates an AppError with an explicit HTTP status.
func New(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

// BadRequest creates a 400 error.
func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message)
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return New(http.StatusForbidden, message)
}

// NotFound creates a 404 error.
func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message)
}

// MethodNotAllowed creates a 405 error.
func MethodNotAllowed() *AppError {
	return New(http.StatusMethodNotAllowed, "Method not allowed")
}

// Timeout creates a 408 error.
func Timeout() *AppError {
	return New(http.StatusRequestTimeout, "Request timeout")
}

// PayloadTooLarge creates a 413 error.
func PayloadTooLarge() *AppError {
	return New(http.StatusRequestEntityTooLarge, "Payload too large")
}

// UnprocessableEntity creates a 422 error.
func UnprocessableEntity(message string) *AppError {
	return New(http.StatusUnprocessableEntity, message)
}

// TooManyRequests creates a 429 error.
func TooManyRequests() *AppError {
	return New(http.StatusTooManyRequests, "Too many requests")
}

// InternalServerError creates a 500 error.
func InternalServerError(message string) *AppError {
	return New(http.StatusInternalServerError, message)
}

// ServiceUnavailable creates a 503 error.
func ServiceUnavailable(message string) *AppError {
	return New(http.StatusServiceUnavailable, message)
}

// ================================================================================
// Normalized Error Envelope
// ================================================================================

// Response is the JSON structure shared by all error responses.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// Envelope builds the normalized error body. The trace id is included only
// when a valid trace context is active on ctx.
func (e *AppError) Envelope(ctx context.Context) Response {
	resp := Response{
		Code:    e.Status,
		Message: e.Message,
	}

	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		resp.TraceID = span.TraceID().String()
	}

	return resp
}

// FromError converts any error to an AppError. Unrecognized errors degrade
// to an internal server error carrying the underlying message.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return InternalServerError(err.Error())
}
