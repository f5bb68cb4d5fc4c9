package menucache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dinefine-workers/internal/common/logger"
	"dinefine-workers/internal/common/metrics"
	"dinefine-workers/internal/models"
)

// ExtractFunc runs the expensive extraction for a source.
type ExtractFunc func(ctx context.Context) ([]models.MenuItem, error)

// Resolution is what Resolve hands back to the caller.
type Resolution struct {
	Items           []models.MenuItem
	ServedFromCache bool
	Decision        Decision
	UpdatedAt       time.Time
}

// Coordinator serves cached extractions or refreshes them through an
// ExtractFunc.
type Coordinator struct {
	store  Store
	policy Policy
	now    func() time.Time
	logger logger.Logger
}

func NewCoordinator(store Store, policy Policy, log logger.Logger) *Coordinator {
	return &Coordinator{
		store:  store,
		policy: policy,
		now:    time.Now,
		logger: logger.ForComponent(log, "menucache"),
	}
}

// Resolve returns the menu for sourceKey. A cache hit is filtered by query.
// Otherwise extract runs and a non-empty result replaces the cached entry.
// Extraction errors are returned unchanged and leave the cache untouched.
func (c *Coordinator) Resolve(ctx context.Context, sourceKey, query string, extract ExtractFunc) (*Resolution, error) {
	if strings.TrimSpace(sourceKey) == "" {
		return nil, ErrMissingSourceKey
	}

	entry, err := c.store.Get(ctx, sourceKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCacheRead, err)
	}

	now := c.now()
	decision := c.policy.Decide(entry, query, now)
	metrics.MenuCacheDecisions.WithLabelValues(string(decision)).Inc()

	log := c.logger.WithFields(map[string]interface{}{
		"sourceKey": sourceKey,
		"decision":  string(decision),
	})

	if decision.Serve() {
		log.Debug("serving cached menu", map[string]interface{}{"cachedItems": len(entry.Items)})
		return &Resolution{
			Items:           FilterItems(entry.Items, query),
			ServedFromCache: true,
			Decision:        decision,
			UpdatedAt:       entry.UpdatedAt,
		}, nil
	}

	items, err := extract(ctx)
	if err != nil {
		metrics.MenuExtractions.WithLabelValues("failed").Inc()
		log.Warn("extraction failed, cache left untouched", map[string]interface{}{"error": err})
		return nil, err
	}
	if len(items) == 0 {
		metrics.MenuExtractions.WithLabelValues("empty").Inc()
		log.Warn("extraction returned no items, cache left untouched", nil)
		return nil, ErrEmptyExtraction
	}
	metrics.MenuExtractions.WithLabelValues("ok").Inc()

	fresh := models.CachedExtraction{SourceKey: sourceKey, Items: items, UpdatedAt: now}
	if err := c.store.Put(ctx, fresh); err != nil {
		// a paid extraction is returned even when it could not be stored
		log.Error("failed to store extraction", map[string]interface{}{"error": err})
	}

	log.Info("menu extracted", map[string]interface{}{"items": len(items)})
	return &Resolution{
		Items:           items,
		ServedFromCache: false,
		Decision:        decision,
		UpdatedAt:       now,
	}, nil
}
