package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode is a stable machine-readable error code. Codes never change once
// published; integrators switch on them rather than on HTTP status.
type ErrorCode string

const (
	// Admission pipeline errors
	CodeInvalidAPIKey           ErrorCode = "INVALID_API_KEY"
	CodeRateLimitExceeded       ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeEndpointNotFound        ErrorCode = "ENDPOINT_NOT_FOUND"
	CodeInsufficientPermissions ErrorCode = "INSUFFICIENT_PERMISSIONS"
	CodeValidationError         ErrorCode = "VALIDATION_ERROR"
	CodeNotImplemented          ErrorCode = "NOT_IMPLEMENTED"

	// Handler-level domain errors. These share HTTP 404 with
	// ENDPOINT_NOT_FOUND but are distinct codes: the route existed, the
	// resource did not.
	CodeWalkerNotFound  ErrorCode = "WALKER_NOT_FOUND"
	CodeServiceNotFound ErrorCode = "SERVICE_NOT_FOUND"
	CodeBookingNotFound ErrorCode = "BOOKING_NOT_FOUND"
	CodeReviewNotFound  ErrorCode = "REVIEW_NOT_FOUND"

	// Dispatch infrastructure errors
	CodeInternal            ErrorCode = "INTERNAL_ERROR"
	CodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
)

// APIError is the uniform failure type every gateway check produces. It is
// immutable once constructed; details, when present, are ordered and list
// each violation individually.
type APIError struct {
	Code       ErrorCode `json:"error"`
	Message    string    `json:"message"`
	Details    []string  `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Response is the wire shape of an error envelope.
type Response struct {
	Error   ErrorCode `json:"error"`
	Message string    `json:"message"`
	Details []string  `json:"details,omitempty"`
}

// ToResponse converts the error to its wire envelope.
func (e *APIError) ToResponse() Response {
	return Response{Error: e.Code, Message: e.Message, Details: e.Details}
}

// Fixed taxonomy errors
var (
	ErrInvalidAPIKey = &APIError{
		Code:       CodeInvalidAPIKey,
		Message:    "Invalid, inactive, or expired API key",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrRateLimitExceeded = &APIError{
		Code:       CodeRateLimitExceeded,
		Message:    "Hourly rate limit exceeded for this API key",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrInsufficientPermissions = &APIError{
		Code:       CodeInsufficientPermissions,
		Message:    "API key lacks the permission required by this endpoint",
		HTTPStatus: http.StatusForbidden,
	}

	ErrUpstreamUnavailable = &APIError{
		Code:       CodeUpstreamUnavailable,
		Message:    "Resource handler temporarily unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
	}
)

// NewEndpointNotFound reports that no registry entry matched (path, method).
func NewEndpointNotFound(method, path string) *APIError {
	return &APIError{
		Code:       CodeEndpointNotFound,
		Message:    fmt.Sprintf("No endpoint for %s %s", method, path),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewValidationError wraps the full, ordered list of parameter violations.
func NewValidationError(violations []string) *APIError {
	return &APIError{
		Code:       CodeValidationError,
		Message:    "Request parameters failed validation",
		Details:    violations,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotImplemented reports a registered endpoint with no bound handler.
func NewNotImplemented(method, path string) *APIError {
	return &APIError{
		Code:       CodeNotImplemented,
		Message:    fmt.Sprintf("%s %s is registered but not implemented", method, path),
		HTTPStatus: http.StatusNotImplemented,
	}
}

// NewNotFound builds a handler-level 404 with a resource-specific code.
func NewNotFound(code ErrorCode, message string) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusNotFound,
	}
}

// NewInternal wraps an unexpected handler failure. The underlying error is
// logged by the pipeline, never leaked to the caller.
func NewInternal() *APIError {
	return &APIError{
		Code:       CodeInternal,
		Message:    "Internal error while handling the request",
		HTTPStatus: http.StatusInternalServerError,
	}
}
