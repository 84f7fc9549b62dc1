package errors

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

// Error codes used across the gateway
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeNotFound        = "NOT_FOUND"
	CodeUpstream        = "UPSTREAM_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
	CodeRateLimited     = "RATE_LIMIT_EXCEEDED"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	// RawBody carries an upstream response body that should be returned
	// to the client verbatim instead of the standard error envelope.
	RawBody []byte `json:"-"`
	Stack   string `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// NewError creates a new application error
func NewError(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Stack:      string(debug.Stack()),
	}
}

// NewValidationError creates a 400 error naming the offending field
func NewValidationError(field string, message string) *AppError {
	appErr := NewError(http.StatusBadRequest, CodeValidation, message)
	appErr.Details = map[string]string{"field": field}
	return appErr
}

// NewSessionNotFoundError creates a 404 error for an unknown session identifier
func NewSessionNotFoundError(sessionID string) *AppError {
	appErr := NewError(http.StatusNotFound, CodeSessionNotFound, "Session not found")
	appErr.Details = map[string]string{"session_id": sessionID}
	return appErr
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(code string, message string) *AppError {
	return NewError(http.StatusNotFound, code, message)
}

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(code string, message string) *AppError {
	return NewError(http.StatusBadRequest, code, message)
}

// NewUpstreamError creates an error that reproduces an upstream non-success
// response. When status is zero (transport failure, timeout) the error maps
// to 502 with a generic message and no body pass-through.
func NewUpstreamError(status int, body []byte) *AppError {
	if status == 0 {
		return NewError(http.StatusBadGateway, CodeUpstream, "Analysis service is unavailable")
	}
	appErr := NewError(status, CodeUpstream, fmt.Sprintf("Analysis service returned status %d", status))
	appErr.RawBody = body
	return appErr
}

// NewInternalServerError creates a 500 Internal Server Error
func NewInternalServerError(code string, message string) *AppError {
	return NewError(http.StatusInternalServerError, code, message)
}

// FromError converts a standard error to an AppError.
// If the error is already an AppError, it is returned as-is;
// otherwise it is wrapped as an internal server error.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	return NewInternalServerError(CodeInternal, "An unexpected error occurred")
}

// GetStatusCode extracts the HTTP status code from an AppError, returns 500 if not an AppError
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// Is checks if the target error shares the given error code
func Is(err error, code string) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	return appErr.Code == code
}
