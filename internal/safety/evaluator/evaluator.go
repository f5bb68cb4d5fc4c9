// Package evaluator decides per menu item whether it conflicts with a diner's
// restrictions and summarizes a whole menu.
package evaluator

import (
	"strings"

	"dinefine-workers/internal/models"
	"dinefine-workers/internal/safety/matcher"
	"dinefine-workers/internal/safety/taxonomy"
)

type Evaluator struct {
	taxonomy *taxonomy.Taxonomy
}

func New(tx *taxonomy.Taxonomy) *Evaluator {
	if tx == nil {
		tx = taxonomy.Default()
	}
	return &Evaluator{taxonomy: tx}
}

// Evaluate summarizes how many items are free of every declared allergy and
// restriction. An empty menu is treated as permissive: absence of a menu is
// not evidence of danger.
func (e *Evaluator) Evaluate(items []models.MenuItem, diner models.DinerProfile) models.MenuSafetySummary {
	if len(items) == 0 {
		return models.MenuSafetySummary{TotalItems: 0, SafeItemsCount: 0, HasSafeItems: true}
	}

	safe := 0
	for _, item := range items {
		if !e.IsItemRestricted(item, diner) {
			safe++
		}
	}
	return models.MenuSafetySummary{
		TotalItems:     len(items),
		SafeItemsCount: safe,
		HasSafeItems:   safe > 0,
	}
}

// IsItemRestricted reports whether any declared allergy or restriction matches
// the item's ingredient list or its flagged contains-restricted list.
func (e *Evaluator) IsItemRestricted(item models.MenuItem, diner models.DinerProfile) bool {
	if !diner.HasRestrictions() {
		return false
	}
	ingredients := matcher.NewCorpus(item.Ingredients...)
	flagged := matcher.NewCorpus(item.ContainsRestricted...)

	for _, l := range labelsOf(diner) {
		if len(e.matchLabel(l, ingredients, flagged)) > 0 {
			return true
		}
	}
	return false
}

// Conflicts lists every declared label the item conflicts with and the
// keywords that triggered it.
func (e *Evaluator) Conflicts(item models.MenuItem, diner models.DinerProfile) []models.Conflict {
	if !diner.HasRestrictions() {
		return nil
	}
	ingredients := matcher.NewCorpus(item.Ingredients...)
	flagged := matcher.NewCorpus(item.ContainsRestricted...)

	var conflicts []models.Conflict
	for _, l := range labelsOf(diner) {
		if matched := e.matchLabel(l, ingredients, flagged); len(matched) > 0 {
			conflicts = append(conflicts, models.Conflict{
				Label:    l.name,
				Kind:     string(l.kind),
				Keywords: matched,
			})
		}
	}
	return conflicts
}

// Annotate returns one ItemSafety per item, in menu order.
func (e *Evaluator) Annotate(items []models.MenuItem, diner models.DinerProfile) []models.ItemSafety {
	out := make([]models.ItemSafety, 0, len(items))
	for _, item := range items {
		conflicts := e.Conflicts(item, diner)
		out = append(out, models.ItemSafety{
			Name:       item.Name,
			Restricted: len(conflicts) > 0,
			Conflicts:  conflicts,
		})
	}
	return out
}

type label struct {
	name string
	kind taxonomy.Kind
}

func labelsOf(diner models.DinerProfile) []label {
	labels := make([]label, 0, len(diner.Allergies)+len(diner.DietaryRestrictions))
	for _, a := range diner.Allergies {
		if a = strings.TrimSpace(a); a != "" {
			labels = append(labels, label{name: a, kind: taxonomy.Allergen})
		}
	}
	for _, r := range diner.DietaryRestrictions {
		if r = strings.TrimSpace(r); r != "" {
			labels = append(labels, label{name: r, kind: taxonomy.Dietary})
		}
	}
	return labels
}

// matchLabel returns the keywords of l found in either list. The flagged list
// is also checked for the label itself, since extraction sources often flag
// items by allergen name ("Tree Nuts") rather than by ingredient.
func (e *Evaluator) matchLabel(l label, ingredients, flagged *matcher.Corpus) []string {
	keywords := e.taxonomy.KeywordsFor(l.name, l.kind)

	var matched []string
	seen := make(map[string]bool, len(keywords)+1)
	for _, kw := range keywords {
		if ingredients.Contains(kw) || flagged.Contains(kw) {
			matched = append(matched, kw)
			seen[kw] = true
		}
	}
	if self := strings.ToLower(l.name); !seen[self] && flagged.Contains(self) {
		matched = append(matched, self)
	}
	return matched
}
