package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies failures surfaced to the user
type ErrorCode string

const (
	// CodeUnauthorized means the shared password is missing or wrong
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// CodeMisconfigured means the server lacks its AI credential
	CodeMisconfigured ErrorCode = "MISCONFIGURED"
	// CodeBadRequest means the client sent a malformed request body
	CodeBadRequest ErrorCode = "BAD_REQUEST"
	// CodeUpstream means the AI provider failed or replied with nothing
	CodeUpstream ErrorCode = "UPSTREAM_ERROR"
	// CodeBadFormat means the AI reply did not have the expected shape
	CodeBadFormat ErrorCode = "BAD_FORMAT"
)

// AppError is a classified failure carrying a short user-facing message
type AppError struct {
	Code    ErrorCode
	Message string
	// Status is the HTTP status observed or to be returned, 0 if unknown
	Status int
	Cause  error
}

// Error implements the error interface
func (e *AppError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status for the error
func (e *AppError) StatusCode() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUpstream, CodeBadFormat:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Detail renders the message together with the cause for logging
func (e *AppError) Detail() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
}

// NewAuthError creates an unauthorized error
func NewAuthError(message string) *AppError {
	if message == "" {
		message = "Unauthorized"
	}
	return &AppError{Code: CodeUnauthorized, Message: message, Status: http.StatusUnauthorized}
}

// NewConfigError creates a server misconfiguration error
func NewConfigError(message string) *AppError {
	return &AppError{Code: CodeMisconfigured, Message: message, Status: http.StatusInternalServerError}
}

// NewValidationError creates a bad request error
func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message, Status: http.StatusBadRequest}
}

// NewUpstreamError creates an upstream failure with the observed status
func NewUpstreamError(status int, message string, cause error) *AppError {
	return &AppError{Code: CodeUpstream, Message: message, Status: status, Cause: cause}
}

// NewFormatError creates an unexpected response format error
func NewFormatError(message string, cause error) *AppError {
	return &AppError{Code: CodeBadFormat, Message: message, Cause: cause}
}

// HasCode reports whether err wraps an AppError with the given code
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsAuthError reports whether err is an unauthorized error
func IsAuthError(err error) bool {
	return HasCode(err, CodeUnauthorized)
}

// Message returns the user-facing text for err, or fallback when err
// carries nothing presentable
func Message(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
