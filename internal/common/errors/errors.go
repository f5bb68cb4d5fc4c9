// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Quota errors
const (
	ErrCodeQuotaExceeded    ErrorCode = "QUOTA_EXCEEDED"
	ErrCodeQuotaCheckFailed ErrorCode = "QUOTA_CHECK_FAILED"
)

// Extraction and cache errors
const (
	ErrCodeExtractionFailed  ErrorCode = "EXTRACTION_FAILED"
	ErrCodeExtractionEmpty   ErrorCode = "EXTRACTION_EMPTY"
	ErrCodeExtractionTimeout ErrorCode = "EXTRACTION_TIMEOUT"
	ErrCodeCacheReadFailed   ErrorCode = "CACHE_READ_FAILED"
)

// Profile and input errors
const (
	ErrCodeProfileNotFound     ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeProfileLookupFailed ErrorCode = "PROFILE_LOOKUP_FAILED"
	ErrCodeInvalidInput        ErrorCode = "INVALID_INPUT"
)

const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError finds the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// ==========================
// 2. BPMN Error
// ==========================

type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewQuotaExceededError(dinerID string, limit int) *StandardError {
	return newError(ErrCodeQuotaExceeded,
		"Daily menu scan limit reached",
		fmt.Sprintf("dinerId: %s, dailyLimit: %d", dinerID, limit),
		false, nil)
}

func NewQuotaCheckFailedError(err error) *StandardError {
	return newError(ErrCodeQuotaCheckFailed, "Quota ledger unavailable", err.Error(), true, err)
}

func NewExtractionFailedError(sourceKey string, err error) *StandardError {
	return newError(ErrCodeExtractionFailed,
		"Menu extraction failed",
		fmt.Sprintf("sourceKey: %s, error: %s", sourceKey, err.Error()),
		false, err)
}

func NewExtractionEmptyError(sourceKey string) *StandardError {
	return newError(ErrCodeExtractionEmpty,
		"Menu extraction returned no items",
		fmt.Sprintf("sourceKey: %s", sourceKey),
		false, nil)
}

func NewExtractionTimeoutError(sourceKey string, err error) *StandardError {
	return newError(ErrCodeExtractionTimeout,
		"Menu extraction timed out",
		fmt.Sprintf("sourceKey: %s", sourceKey),
		true, err)
}

func NewCacheReadFailedError(sourceKey string, err error) *StandardError {
	return newError(ErrCodeCacheReadFailed,
		"Menu cache read failed",
		fmt.Sprintf("sourceKey: %s, error: %s", sourceKey, err.Error()),
		true, err)
}

func NewProfileNotFoundError(userID string) *StandardError {
	return newError(ErrCodeProfileNotFound,
		"Diner profile not found",
		fmt.Sprintf("userId: %s", userID),
		false, nil)
}

func NewProfileLookupFailedError(userID string, err error) *StandardError {
	return newError(ErrCodeProfileLookupFailed,
		"Diner profile lookup failed",
		fmt.Sprintf("userId: %s, error: %s", userID, err.Error()),
		true, err)
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false, nil)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError("EXTERNAL_SERVICE_ERROR",
		fmt.Sprintf("External service '%s' error", service), err.Error(), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError("TIMEOUT_ERROR",
		fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError("RESOURCE_NOT_FOUND",
		fmt.Sprintf("Resource not found in %s", service), details, false, nil)
}

func NewAuthenticationError(details string) *StandardError {
	return newError("AUTHENTICATION_ERROR", "Authentication failed", details, false, nil)
}

func NewBusinessRuleError(message, details string) *StandardError {
	return newError("BUSINESS_RULE_VIOLATION", message, details, false, nil)
}

// ==========================
// 4. BPMN mapping and retry policy
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeQuotaExceeded:       "QUOTA_EXCEEDED",
	ErrCodeQuotaCheckFailed:    "QUOTA_CHECK_FAILED",
	ErrCodeExtractionFailed:    "EXTRACTION_FAILED",
	ErrCodeExtractionEmpty:     "EXTRACTION_EMPTY",
	ErrCodeExtractionTimeout:   "EXTRACTION_FAILED",
	ErrCodeCacheReadFailed:     "CACHE_READ_FAILED",
	ErrCodeProfileNotFound:     "PROFILE_NOT_FOUND",
	ErrCodeProfileLookupFailed: "PROFILE_LOOKUP_FAILED",
	ErrCodeInvalidInput:        "INVALID_INPUT",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeQuotaCheckFailed,
		ErrCodeCacheReadFailed,
		ErrCodeProfileLookupFailed:
		return 3 // infrastructure hiccups

	case ErrCodeExtractionTimeout:
		return 1 // the quota was credited, one more attempt is cheap

	default:
		return 0 // business errors: throw to the workflow
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "QUOTA"):
		return "QUOTA"
	case strings.HasPrefix(codeStr, "EXTRACTION"):
		return "EXTRACTION"
	case strings.HasPrefix(codeStr, "CACHE"):
		return "CACHE"
	case strings.HasPrefix(codeStr, "PROFILE"):
		return "PROFILE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
