// Package errors provides standardized error handling for the HTTP pipeline.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Transport/auth errors, rejected before any domain logic runs.
	ErrCodeSignatureInvalid  ErrorCode = "SIGNATURE_INVALID"
	ErrCodeSourceNotAllowed  ErrorCode = "SOURCE_NOT_ALLOWED"
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeUnauthenticated   ErrorCode = "UNAUTHENTICATED"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"

	// Validation errors, rejected with no mutation.
	ErrCodePayloadInvalid    ErrorCode = "PAYLOAD_INVALID"
	ErrCodeFieldMissing      ErrorCode = "REQUIRED_FIELD_MISSING"
	ErrCodeFieldInvalid      ErrorCode = "FIELD_INVALID"
	ErrCodeInvalidIdentifier ErrorCode = "INVALID_IDENTIFIER"

	// Domain-state conflicts.
	ErrCodeStageMismatch      ErrorCode = "STAGE_MISMATCH"
	ErrCodeAlreadyReviewed    ErrorCode = "ASSESSMENT_ALREADY_REVIEWED"
	ErrCodeInterviewConflict  ErrorCode = "INTERVIEW_CONFLICT"
	ErrCodeDecisionIncomplete ErrorCode = "DECISION_REASON_REQUIRED"

	// Lookup failures.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Infrastructure failures.
	ErrCodeDatabaseFailed         ErrorCode = "DATABASE_OPERATION_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
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
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HTTPStatus maps error codes to the response status codes of the public API.
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeSignatureInvalid, ErrCodeSourceNotAllowed, ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodePayloadInvalid, ErrCodeFieldMissing, ErrCodeFieldInvalid,
		ErrCodeInvalidIdentifier, ErrCodeStageMismatch, ErrCodeAlreadyReviewed,
		ErrCodeInterviewConflict, ErrCodeDecisionIncomplete:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// AsStandard extracts a *StandardError from an error chain, or nil.
func AsStandard(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return nil
}

// --- Constructors ---

// NewSignatureInvalidError creates a non-retryable signature verification error.
func NewSignatureInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSignatureInvalid,
		Message:   "Webhook signature verification failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSourceNotAllowedError creates a non-retryable IP allow-list error.
func NewSourceNotAllowedError(ip string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceNotAllowed,
		Message:   "Source address is not on the allow-list",
		Details:   fmt.Sprintf("ip: %s", ip),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitExceededError creates a retryable rate-limit error.
func NewRateLimitExceededError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimitExceeded,
		Message:   "Too many requests",
		Details:   fmt.Sprintf("key: %s", key),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnauthenticatedError creates an error for missing or invalid sessions.
func NewUnauthenticatedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthenticated,
		Message:   "Authentication required",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewForbiddenError creates an error for insufficient role/capability.
func NewForbiddenError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeForbidden,
		Message:   "Insufficient permissions for this action",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPayloadInvalidError creates a non-retryable payload shape error.
func NewPayloadInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadInvalid,
		Message:   "Webhook payload failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFieldMissingError reports a required form field that could not be resolved.
func NewFieldMissingError(field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFieldMissing,
		Message:   "Required form field is missing",
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFieldInvalidError reports a form field with an unusable value.
func NewFieldInvalidError(field, reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFieldInvalid,
		Message:   "Form field has an invalid value",
		Details:   fmt.Sprintf("field: %s, reason: %s", field, reason),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidIdentifierError reports a malformed path or payload id.
func NewInvalidIdentifierError(name, value string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidIdentifier,
		Message:   "Identifier is not a well-formed UUID",
		Details:   fmt.Sprintf("%s: %s", name, value),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStageMismatchError reports an operation attempted at the wrong stage/status.
func NewStageMismatchError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStageMismatch,
		Message:   "Application is not in a valid stage/status for this operation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlreadyReviewedError reports a second review of the same assessment.
func NewAlreadyReviewedError(assessmentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadyReviewed,
		Message:   "Assessment has already been reviewed",
		Details:   fmt.Sprintf("assessmentId: %s", assessmentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInterviewConflictError reports open-interview invariant violations.
func NewInterviewConflictError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInterviewConflict,
		Message:   "Interview state conflicts with the requested operation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDecisionIncompleteError reports a rejection recorded without a reason.
func NewDecisionIncompleteError() *StandardError {
	return &StandardError{
		Code:      ErrCodeDecisionIncomplete,
		Message:   "A rejection decision must include a reason",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError reports a missing referenced entity.
func NewNotFoundError(entity, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", entity),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseError creates a retryable database error.
func NewDatabaseError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseFailed,
		Message:   "Database operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
// Dispatch failures are logged, never surfaced to webhook callers.
func NewNotificationSendFailedError(template string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("template: %s, error: %s", template, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure; details stay server-side.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected internal error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
