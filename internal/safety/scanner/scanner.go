// Package scanner produces restaurant-level dietary safety verdicts.
package scanner

import (
	"fmt"
	"strings"

	"dinefine-workers/internal/models"
	"dinefine-workers/internal/safety/matcher"
	"dinefine-workers/internal/safety/taxonomy"
)

// NoRestrictionsOption is the single safe option reported to a diner who
// declared no allergies and no dietary restrictions.
const NoRestrictionsOption = "No dietary restrictions specified"

type Scanner struct {
	taxonomy *taxonomy.Taxonomy
}

func New(tx *taxonomy.Taxonomy) *Scanner {
	if tx == nil {
		tx = taxonomy.Default()
	}
	return &Scanner{taxonomy: tx}
}

// Scan checks every text surface of the restaurant against the diner's
// declared allergies and dietary restrictions.
func (s *Scanner) Scan(r models.Restaurant, diner models.DinerProfile) models.ScanVerdict {
	return s.ScanSurfaces(r.TextSurfaces(), r.DietaryOptions, diner)
}

// ScanSurfaces is Scan over raw text surfaces. dietaryOptions are the tags the
// restaurant declares for itself; they are expected to be among surfaces too.
//
// Declared dietary tags are never counted as dietary conflicts: "Gluten-Free"
// does not conflict with gluten-free through the word "gluten", nor
// "Dairy-Free" with vegan through "dairy". Allergen checks always see every
// surface.
func (s *Scanner) ScanSurfaces(surfaces, dietaryOptions []string, diner models.DinerProfile) models.ScanVerdict {
	if !diner.HasRestrictions() {
		return models.ScanVerdict{
			IsSafe:           true,
			AllergenWarnings: []string{},
			DietaryWarnings:  []string{},
			SafeOptions:      []string{NoRestrictionsOption},
			RiskLevel:        models.RiskSafe,
		}
	}

	verdict := models.ScanVerdict{
		AllergenWarnings: []string{},
		DietaryWarnings:  []string{},
		SafeOptions:      []string{},
	}
	corpus := matcher.NewCorpus(surfaces...)

	for _, allergy := range uniqueLabels(diner.Allergies) {
		matched := corpus.MatchAll(s.taxonomy.KeywordsFor(allergy, taxonomy.Allergen))
		if len(matched) > 0 {
			verdict.AllergenWarnings = append(verdict.AllergenWarnings,
				fmt.Sprintf("Contains %s: %s", strings.ToLower(allergy), strings.Join(matched, ", ")))
		}
	}

	dietaryCorpus := corpus
	if len(dietaryOptions) > 0 {
		dietaryCorpus = matcher.NewCorpus(without(surfaces, dietaryOptions)...)
	}

	for _, restriction := range uniqueLabels(diner.DietaryRestrictions) {
		supporting := supportingTags(dietaryOptions, restriction)

		matched := dietaryCorpus.MatchAll(s.taxonomy.KeywordsFor(restriction, taxonomy.Dietary))
		switch {
		case len(matched) > 0:
			verdict.DietaryWarnings = append(verdict.DietaryWarnings,
				fmt.Sprintf("May conflict with %s: %s", strings.ToLower(restriction), strings.Join(matched, ", ")))
		case len(supporting) > 0:
			verdict.SafeOptions = append(verdict.SafeOptions, "Supports "+restriction)
		}
	}

	verdict.IsSafe = len(verdict.AllergenWarnings) == 0 && len(verdict.DietaryWarnings) == 0
	verdict.RiskLevel = RiskFor(len(verdict.AllergenWarnings), len(verdict.DietaryWarnings))
	return verdict
}

// RiskFor derives the risk level from warning counts: any allergen warning is
// danger, dietary-only warnings are caution.
func RiskFor(allergenWarnings, dietaryWarnings int) models.RiskLevel {
	switch {
	case allergenWarnings > 0:
		return models.RiskDanger
	case dietaryWarnings > 0:
		return models.RiskCaution
	default:
		return models.RiskSafe
	}
}

// uniqueLabels trims labels and drops blanks and repeats, keeping the first
// spelling seen.
func uniqueLabels(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		key := matcher.Normalize(l)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}
	return out
}

func supportingTags(tags []string, restriction string) []string {
	var out []string
	for _, tag := range tags {
		if matcher.Matches(tag, restriction) {
			out = append(out, tag)
		}
	}
	return out
}

func without(surfaces, drop []string) []string {
	remaining := make([]string, 0, len(surfaces))
	skip := make(map[string]int, len(drop))
	for _, d := range drop {
		skip[d]++
	}
	for _, s := range surfaces {
		if skip[s] > 0 {
			skip[s]--
			continue
		}
		remaining = append(remaining, s)
	}
	return remaining
}
