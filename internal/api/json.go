package api

import (
	"encoding/json"
	"net/http"

	apperrors "dinefine-workers/internal/common/errors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errResponse struct {
	Error     string                 `json:"error"`
	Code      string                 `json:"code"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func errorBody(stdErr *apperrors.StandardError) errResponse {
	return errResponse{
		Error:     stdErr.Message,
		Code:      string(stdErr.Code),
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Metadata:  stdErr.Metadata,
	}
}

// statusFor maps error codes to HTTP statuses. Quota exhaustion is a normal
// user-facing condition and gets its own status.
func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeQuotaExceeded:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeExtractionFailed, apperrors.ErrCodeExtractionEmpty:
		return http.StatusBadGateway
	case apperrors.ErrCodeExtractionTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.ErrCodeProfileNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeQuotaCheckFailed, apperrors.ErrCodeCacheReadFailed, apperrors.ErrCodeProfileLookupFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
