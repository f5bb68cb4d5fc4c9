package menucache

import (
	"context"
	"errors"

	"dinefine-workers/internal/models"
)

var (
	// ErrEmptyExtraction is returned when extraction succeeded but produced no
	// items. The cache is left untouched.
	ErrEmptyExtraction = errors.New("EXTRACTION_EMPTY")
	// ErrCacheRead wraps store failures while looking up an entry.
	ErrCacheRead = errors.New("CACHE_READ_FAILED")
	// ErrMissingSourceKey is returned for a blank source key.
	ErrMissingSourceKey = errors.New("MISSING_SOURCE_KEY")
)

// Store persists the latest extraction per source. Get returns nil, nil when
// the source has never been cached. Put replaces the whole entry.
type Store interface {
	Get(ctx context.Context, sourceKey string) (*models.CachedExtraction, error)
	Put(ctx context.Context, entry models.CachedExtraction) error
}
