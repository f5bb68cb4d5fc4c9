// Package menucache decides when a cached menu extraction may be served and
// coordinates re-extraction when it may not.
package menucache

import (
	"strings"
	"time"
	"unicode/utf8"

	"dinefine-workers/internal/models"
)

// Decision is the outcome of the cache-vs-extract policy.
type Decision string

const (
	DecisionHit          Decision = "hit"
	DecisionMiss         Decision = "miss"
	DecisionStale        Decision = "stale"
	DecisionTooFewItems  Decision = "too_few_items"
	DecisionQueryRefresh Decision = "query_refresh"
)

// Serve reports whether the cached entry is returned without extraction.
func (d Decision) Serve() bool {
	return d == DecisionHit
}

// Policy holds the thresholds of the caching rule.
type Policy struct {
	// FreshnessWindow is the age at which an entry becomes stale.
	FreshnessWindow time.Duration
	// MinItems is the fewest cached items that still count as a usable menu.
	MinItems int
	// ShortQueryLength is the longest query, in characters, served from cache.
	ShortQueryLength int
}

// DefaultPolicy serves entries younger than a week with at least three items
// for empty or short (up to three characters) queries.
func DefaultPolicy() Policy {
	return Policy{
		FreshnessWindow:  7 * 24 * time.Hour,
		MinItems:         3,
		ShortQueryLength: 3,
	}
}

// Decide applies the policy to the current entry for a source. entry is nil
// when nothing has been cached yet.
func (p Policy) Decide(entry *models.CachedExtraction, query string, now time.Time) Decision {
	switch {
	case entry == nil:
		return DecisionMiss
	case now.Sub(entry.UpdatedAt) >= p.FreshnessWindow:
		return DecisionStale
	case len(entry.Items) < p.MinItems:
		return DecisionTooFewItems
	case utf8.RuneCountInString(strings.TrimSpace(query)) > p.ShortQueryLength:
		return DecisionQueryRefresh
	default:
		return DecisionHit
	}
}

// Decide applies DefaultPolicy.
func Decide(entry *models.CachedExtraction, query string, now time.Time) Decision {
	return DefaultPolicy().Decide(entry, query, now)
}

// FilterItems keeps the items whose name, category or any ingredient contains
// query, ignoring case. An empty query keeps everything.
func FilterItems(items []models.MenuItem, query string) []models.MenuItem {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if q == "" || itemContains(item, q) {
			out = append(out, item)
		}
	}
	return out
}

func itemContains(item models.MenuItem, q string) bool {
	if strings.Contains(strings.ToLower(item.Name), q) ||
		strings.Contains(strings.ToLower(item.Category), q) {
		return true
	}
	for _, ing := range item.Ingredients {
		if strings.Contains(strings.ToLower(ing), q) {
			return true
		}
	}
	return false
}
