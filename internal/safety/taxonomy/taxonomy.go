// Package taxonomy holds the immutable allergen and dietary keyword tables.
package taxonomy

import (
	"fmt"
	"sort"
	"strings"
)

// Kind selects one of the two keyword tables.
type Kind string

const (
	Allergen Kind = "allergen"
	Dietary  Kind = "dietary"
)

type entry struct {
	label    string
	keywords []string
}

// Taxonomy maps restriction labels to ordered keyword sets. Lookups are
// case-insensitive, ignore punctuation in the label and fold a trailing plural
// "s", so "Gluten-Free" and "gluten free" resolve to the same entry, as do
// "Egg" and "Eggs".
type Taxonomy struct {
	tables map[Kind]map[string]entry
}

// New builds a Taxonomy from the two tables. A label may appear in only one
// table. Keywords are lower-cased and blank keywords dropped; a label whose
// set ends up empty falls back to its own text.
func New(allergens, dietary map[string][]string) (*Taxonomy, error) {
	t := &Taxonomy{tables: map[Kind]map[string]entry{
		Allergen: make(map[string]entry, len(allergens)),
		Dietary:  make(map[string]entry, len(dietary)),
	}}

	for _, src := range []struct {
		kind  Kind
		table map[string][]string
	}{{Allergen, allergens}, {Dietary, dietary}} {
		for label, keywords := range src.table {
			key := labelKey(label)
			if key == "" {
				return nil, fmt.Errorf("%s taxonomy: blank label", src.kind)
			}
			if _, dup := t.tables[src.kind][key]; dup {
				return nil, fmt.Errorf("%s taxonomy: duplicate label %q", src.kind, label)
			}
			t.tables[src.kind][key] = entry{label: label, keywords: cleanKeywords(label, keywords)}
		}
	}

	for key, e := range t.tables[Allergen] {
		if _, clash := t.tables[Dietary][key]; clash {
			return nil, fmt.Errorf("label %q appears in both allergen and dietary taxonomies", e.label)
		}
	}
	return t, nil
}

// MustNew is like New but panics on an invalid table. It is meant for
// package-level tables known at compile time.
func MustNew(allergens, dietary map[string][]string) *Taxonomy {
	t, err := New(allergens, dietary)
	if err != nil {
		panic(err)
	}
	return t
}

// KeywordsFor returns the keywords for label in the given table. An unknown
// label yields the lower-cased label itself so it still participates in
// matching. The returned slice is a copy.
func (t *Taxonomy) KeywordsFor(label string, kind Kind) []string {
	if e, ok := t.lookup(label, kind); ok {
		out := make([]string, len(e.keywords))
		copy(out, e.keywords)
		return out
	}
	return []string{strings.ToLower(strings.TrimSpace(label))}
}

// Known reports whether label has an explicit entry in the given table.
func (t *Taxonomy) Known(label string, kind Kind) bool {
	_, ok := t.lookup(label, kind)
	return ok
}

// lookup tries the label as written, then its singular or plural form.
func (t *Taxonomy) lookup(label string, kind Kind) (entry, bool) {
	table := t.tables[kind]
	key := labelKey(label)
	if key == "" {
		return entry{}, false
	}
	if e, ok := table[key]; ok {
		return e, true
	}
	alt := key + "s"
	if strings.HasSuffix(key, "s") {
		alt = strings.TrimSuffix(key, "s")
	}
	e, ok := table[alt]
	return e, ok
}

// Labels returns the display labels of a table, sorted.
func (t *Taxonomy) Labels(kind Kind) []string {
	labels := make([]string, 0, len(t.tables[kind]))
	for _, e := range t.tables[kind] {
		labels = append(labels, e.label)
	}
	sort.Strings(labels)
	return labels
}

func labelKey(label string) string {
	fields := strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 0x7f)
	})
	return strings.Join(fields, " ")
}

func cleanKeywords(label string, keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	if len(out) == 0 {
		out = append(out, strings.ToLower(strings.TrimSpace(label)))
	}
	return out
}
