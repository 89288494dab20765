package internal

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes carried in the "code" field of the error envelope.
const (
	CodeAuthRequired          = "AUTH_REQUIRED"
	CodeInvalidUUID           = "INVALID_UUID"
	CodeResourceNotFound      = "RESOURCE_NOT_FOUND_OR_FORBIDDEN"
	CodeMissingParameter      = "MISSING_PARAMETER"
	CodeMethodHandlerError    = "METHOD_HANDLER_ERROR"
	CodeServerError           = "SERVER_ERROR"
	CodeRouteNotFound         = "ROUTE_NOT_FOUND"
	CodeValidationError       = "VALIDATION_ERROR"
	CodeInvalidJSON           = "INVALID_JSON"
	CodeResourceConflict      = "RESOURCE_CONFLICT"
	CodeRequestEntityTooLarge = "REQUEST_ENTITY_TOO_LARGE"
)

// HTTPError is an error a handler returns to answer with a specific status
// and error code instead of the generic 500.
type HTTPError struct {
	// Err is the underlying error (logged, never exposed).
	Err error

	// Details is serialized into the envelope "details" field.
	Details any

	// Message is the user-facing error message.
	Message string

	// ErrorCode is the machine-readable envelope code.
	ErrorCode string

	// Code is the HTTP status code.
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{
		Code:    code,
		Message: message,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.ErrorCode = code
	}
}

func WithErrorDetails(details any) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Details = details
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, append([]HTTPErrorOption{WithErrorCode(CodeAuthRequired)}, opts...)...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusConflict, message, append([]HTTPErrorOption{WithErrorCode(CodeResourceConflict)}, opts...)...)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnprocessableEntity, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, append([]HTTPErrorOption{WithErrorCode(CodeServerError)}, opts...)...)
}

// ErrValidation reports per-field validation failures.
func ErrValidation(fields map[string]string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, "Validation failed",
		WithErrorCode(CodeValidationError),
		WithErrorDetails(fields),
	)
}

// Helper functions for error inspection.

func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// AsHTTPError extracts the HTTPError from an error chain if present.
// Returns nil if the error is not an HTTPError.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

// PanicError represents a recovered panic.
type PanicError struct {
	Value any    // The panic value
	Stack []byte // Stack trace (nil if disabled)
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
