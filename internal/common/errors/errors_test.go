package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name          string
		err           *StandardError
		wantCode      string
		wantRetries   int
		wantRetryable bool
	}{
		{"quota exceeded is thrown", NewQuotaExceededError("diner-1", 5), "QUOTA_EXCEEDED", 0, false},
		{"ledger outage retries", NewQuotaCheckFailedError(fmt.Errorf("dial tcp")), "QUOTA_CHECK_FAILED", 3, true},
		{"extraction failure is thrown", NewExtractionFailedError("place-1", fmt.Errorf("502")), "EXTRACTION_FAILED", 0, false},
		{"extraction timeout maps to failure code", NewExtractionTimeoutError("place-1", fmt.Errorf("deadline")), "EXTRACTION_FAILED", 1, true},
		{"empty extraction", NewExtractionEmptyError("place-1"), "EXTRACTION_EMPTY", 0, false},
		{"profile not found", NewProfileNotFoundError("u-1"), "PROFILE_NOT_FOUND", 0, false},
		{"invalid input", NewInvalidInputError("items missing"), "INVALID_INPUT", 0, false},
		{"unmapped code passes through", NewInternalError(fmt.Errorf("boom")), "INTERNAL_ERROR", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, tt.wantRetryable, bpmn.Retryable)
			assert.Equal(t, string(tt.err.Code), bpmn.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_CarriesMetadata(t *testing.T) {
	err := NewQuotaExceededError("diner-1", 5).WithMetadata("quotaRemaining", 0)

	vars := ConvertToBPMNError(err).ToErrorVariables()

	assert.Equal(t, 0, vars["quotaRemaining"])
	assert.Equal(t, "QUOTA_EXCEEDED", vars["errorCode"])
	assert.Equal(t, false, vars["retryable"])
}

func TestAsStandardError_Unwraps(t *testing.T) {
	cause := stderrors.New("connection reset")
	wrapped := fmt.Errorf("analyze menu: %w", NewQuotaCheckFailedError(cause))

	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeQuotaCheckFailed, stdErr.Code)
	assert.True(t, stderrors.Is(wrapped, cause))

	_, ok = AsStandardError(cause)
	assert.False(t, ok)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "QUOTA", GetErrorCategory(ErrCodeQuotaExceeded))
	assert.Equal(t, "EXTRACTION", GetErrorCategory(ErrCodeExtractionEmpty))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheReadFailed))
	assert.Equal(t, "PROFILE", GetErrorCategory(ErrCodeProfileLookupFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeQuotaCheckFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeQuotaExceeded))
	assert.False(t, IsRetryableErrorCode(ErrCodeExtractionFailed))
}
