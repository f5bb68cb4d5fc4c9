package engine

import (
	"context"
	"errors"

	apperrors "dinefine-workers/internal/common/errors"
	"dinefine-workers/internal/extraction"
	"dinefine-workers/internal/menucache"
	"dinefine-workers/internal/profile"
	"dinefine-workers/internal/quota"
)

// ErrorContext names the request an error belongs to, for error details.
type ErrorContext struct {
	SourceKey string
	DinerID   string
	UserID    string
}

// StandardErrorFor maps engine errors onto the shared error codes used by
// job workers and the HTTP surface.
func (e *Engine) StandardErrorFor(err error, ec ErrorContext) *apperrors.StandardError {
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return stdErr
	}

	switch {
	case errors.Is(err, quota.ErrQuotaExceeded):
		return apperrors.NewQuotaExceededError(ec.DinerID, e.dailyLimit).
			WithMetadata("quotaRemaining", 0)
	case errors.Is(err, quota.ErrLedgerUnavailable):
		return apperrors.NewQuotaCheckFailedError(err)
	case errors.Is(err, extraction.ErrExtractionTimeout):
		return apperrors.NewExtractionTimeoutError(ec.SourceKey, err)
	case errors.Is(err, extraction.ErrExtractionFailed):
		return apperrors.NewExtractionFailedError(ec.SourceKey, err)
	case errors.Is(err, menucache.ErrEmptyExtraction):
		return apperrors.NewExtractionEmptyError(ec.SourceKey)
	case errors.Is(err, menucache.ErrCacheRead):
		return apperrors.NewCacheReadFailedError(ec.SourceKey, err)
	case errors.Is(err, menucache.ErrMissingSourceKey):
		return apperrors.NewInvalidInputError("sourceKey is required")
	case errors.Is(err, ErrMissingDinerID):
		return apperrors.NewInvalidInputError("userId is required to extract a menu")
	case errors.Is(err, profile.ErrProfileNotFound):
		return apperrors.NewProfileNotFoundError(ec.UserID)
	case errors.Is(err, profile.ErrProfileLookupFailed), errors.Is(err, ErrNoProfileSource):
		return apperrors.NewProfileLookupFailedError(ec.UserID, err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("engine", err)
	default:
		return apperrors.NewInternalError(err)
	}
}
