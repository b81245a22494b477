// Package errors provides the standardized error taxonomy shared across services.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"

	ErrCodeDatabaseQueryFailed  ErrorCode = "DATABASE_QUERY_FAILED"
	ErrCodeDatabaseInsertFailed ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeStorageUploadFailed ErrorCode = "STORAGE_UPLOAD_FAILED"

	ErrCodeAIUpstreamFailed    ErrorCode = "AI_UPSTREAM_FAILED"
	ErrCodeAIResponseTruncated ErrorCode = "AI_RESPONSE_TRUNCATED"
	ErrCodeAIResponseInvalid   ErrorCode = "AI_RESPONSE_INVALID"

	ErrCodeEmailSendFailed    ErrorCode = "EMAIL_SEND_FAILED"
	ErrCodeAuthAdminFailed    ErrorCode = "AUTH_ADMIN_FAILED"
	ErrCodeInvalidAdminAction ErrorCode = "INVALID_ADMIN_ACTION"
	ErrCodeInvalidBanDuration ErrorCode = "INVALID_BAN_DURATION"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a non-retryable request validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable resource not found error.
func NewNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResourceNotFound,
		Message:   "Resource not found",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseQueryFailedError creates a retryable query error.
func NewDatabaseQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseQueryFailed,
		Message:   "Database query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStorageUploadFailedError creates a retryable file storage error.
func NewStorageUploadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStorageUploadFailed,
		Message:   "File upload failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIUpstreamError creates a retryable upstream AI failure with the upstream
// detail attached.
func NewAIUpstreamError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAIUpstreamFailed,
		Message:   "AI provider request failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIResponseTruncatedError signals the model stopped on its token limit.
func NewAIResponseTruncatedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeAIResponseTruncated,
		Message:   "AI response too long",
		Details:   "model output was truncated before completion",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIResponseInvalidError signals non-JSON or schema-violating model output.
func NewAIResponseInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAIResponseInvalid,
		Message:   "AI response is not valid JSON",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmailSendFailedError creates a retryable email provider error.
func NewEmailSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailSendFailed,
		Message:   "Email delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthAdminError creates a retryable privileged auth API error.
func NewAuthAdminError(action string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthAdminFailed,
		Message:   "Auth platform admin call failed",
		Details:   fmt.Sprintf("action: %s, error: %s", action, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidAdminActionError creates a non-retryable unknown action error.
func NewInvalidAdminActionError(action string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidAdminAction,
		Message:   "Unsupported admin action",
		Details:   fmt.Sprintf("action: %s", action),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidBanDurationError creates a non-retryable unknown duration error.
func NewInvalidBanDurationError(duration string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidBanDuration,
		Message:   "Unsupported ban duration",
		Details:   fmt.Sprintf("duration: %s", duration),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unclassified failure.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatus maps an error code to the response status used by handlers.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeInvalidAdminAction, ErrCodeInvalidBanDuration:
		return http.StatusBadRequest
	case ErrCodeResourceNotFound:
		return http.StatusNotFound
	case ErrCodeAIUpstreamFailed, ErrCodeEmailSendFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AsStandardError unwraps err into a StandardError when possible.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}
