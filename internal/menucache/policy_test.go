package menucache

import (
	"testing"
	"time"

	"dinefine-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

func threeItems() []models.MenuItem {
	return []models.MenuItem{
		{Name: "Pad Thai", Category: "Noodles", Ingredients: []string{"rice noodles", "egg", "peanuts"}},
		{Name: "Green Curry", Category: "Curry", Ingredients: []string{"coconut", "green chili", "tofu"}},
		{Name: "Mango Sticky Rice", Category: "Dessert", Ingredients: []string{"mango", "glutinous rice"}},
	}
}

func TestPolicyDecide(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	window := 7 * 24 * time.Hour

	entry := func(age time.Duration, items []models.MenuItem) *models.CachedExtraction {
		return &models.CachedExtraction{SourceKey: "place-1", Items: items, UpdatedAt: now.Add(-age)}
	}

	tests := []struct {
		name  string
		entry *models.CachedExtraction
		query string
		want  Decision
	}{
		{"nothing cached", nil, "", DecisionMiss},
		{"fresh with empty query", entry(time.Hour, threeItems()), "", DecisionHit},
		{"fresh with three character query", entry(time.Hour, threeItems()), "pad", DecisionHit},
		{"query is trimmed before measuring", entry(time.Hour, threeItems()), "  pad  ", DecisionHit},
		{"multibyte query counts characters", entry(time.Hour, threeItems()), "thé", DecisionHit},
		{"four character query refreshes", entry(time.Hour, threeItems()), "curr", DecisionQueryRefresh},
		{"exactly one window old is stale", entry(window, threeItems()), "", DecisionStale},
		{"just under one window is fresh", entry(window-time.Second, threeItems()), "", DecisionHit},
		{"two items is too few", entry(time.Hour, threeItems()[:2]), "", DecisionTooFewItems},
		{"stale wins over too few", entry(window+time.Hour, threeItems()[:1]), "", DecisionStale},
		{"too few wins over long query", entry(time.Hour, threeItems()[:2]), "mango", DecisionTooFewItems},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.entry, tt.query, now))
		})
	}
}

func TestPolicyDecide_CustomThresholds(t *testing.T) {
	now := time.Now()
	p := Policy{FreshnessWindow: time.Hour, MinItems: 1, ShortQueryLength: 0}
	e := &models.CachedExtraction{Items: threeItems()[:1], UpdatedAt: now.Add(-30 * time.Minute)}

	assert.Equal(t, DecisionHit, p.Decide(e, "", now))
	assert.Equal(t, DecisionQueryRefresh, p.Decide(e, "a", now))
	assert.Equal(t, DecisionStale, p.Decide(e, "", now.Add(time.Hour)))
}

func TestDecisionServe(t *testing.T) {
	assert.True(t, DecisionHit.Serve())
	for _, d := range []Decision{DecisionMiss, DecisionStale, DecisionTooFewItems, DecisionQueryRefresh} {
		assert.False(t, d.Serve(), string(d))
	}
}

func TestFilterItems(t *testing.T) {
	items := threeItems()

	names := func(in []models.MenuItem) []string {
		out := make([]string, 0, len(in))
		for _, it := range in {
			out = append(out, it.Name)
		}
		return out
	}

	assert.Len(t, FilterItems(items, ""), 3)
	assert.Len(t, FilterItems(items, "   "), 3)
	assert.Equal(t, []string{"Pad Thai"}, names(FilterItems(items, "PAD")))
	assert.Equal(t, []string{"Green Curry"}, names(FilterItems(items, "tofu")))
	assert.Equal(t, []string{"Mango Sticky Rice"}, names(FilterItems(items, "dess")))
	assert.Equal(t, []string{"Pad Thai", "Mango Sticky Rice"}, names(FilterItems(items, "rice")))
	assert.Empty(t, FilterItems(items, "xyz"))
}
