package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDinerProfile_HasRestrictions(t *testing.T) {
	tests := []struct {
		name  string
		diner DinerProfile
		want  bool
	}{
		{"zero value", DinerProfile{}, false},
		{"empty slices", DinerProfile{Allergies: []string{}, DietaryRestrictions: []string{}}, false},
		{"blank labels only", DinerProfile{Allergies: []string{""}, DietaryRestrictions: []string{" ", "\t"}}, false},
		{"one allergy", DinerProfile{Allergies: []string{"Peanuts"}}, true},
		{"one restriction among blanks", DinerProfile{DietaryRestrictions: []string{"", "Vegan"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.diner.HasRestrictions())
		})
	}
}
