// internal/models/diner.go
package models

import "strings"

// DinerProfile holds the restrictions a diner declared. Empty slices mean
// "no restrictions", not "unknown".
type DinerProfile struct {
	Allergies           []string `json:"allergies"`
	DietaryRestrictions []string `json:"dietaryRestrictions"`
}

// HasRestrictions reports whether the diner declared at least one non-blank
// allergy or dietary restriction.
func (d DinerProfile) HasRestrictions() bool {
	return hasLabel(d.Allergies) || hasLabel(d.DietaryRestrictions)
}

func hasLabel(labels []string) bool {
	for _, l := range labels {
		if strings.TrimSpace(l) != "" {
			return true
		}
	}
	return false
}
