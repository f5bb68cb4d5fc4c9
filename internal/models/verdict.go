// internal/models/verdict.go
package models

type RiskLevel string

const (
	RiskSafe    RiskLevel = "safe"
	RiskCaution RiskLevel = "caution"
	RiskDanger  RiskLevel = "danger"
)

type ScanVerdict struct {
	IsSafe           bool      `json:"isSafe"`
	AllergenWarnings []string  `json:"allergenWarnings"`
	DietaryWarnings  []string  `json:"dietaryWarnings"`
	SafeOptions      []string  `json:"safeOptions"`
	RiskLevel        RiskLevel `json:"riskLevel"`
}

type MenuSafetySummary struct {
	TotalItems     int  `json:"totalItems"`
	SafeItemsCount int  `json:"safeItemsCount"`
	HasSafeItems   bool `json:"hasSafeItems"`
}

// ItemSafety annotates a single menu item for highlighting.
type ItemSafety struct {
	Name       string     `json:"name"`
	Restricted bool       `json:"restricted"`
	Conflicts  []Conflict `json:"conflicts,omitempty"`
}

// Conflict names a declared label and the keywords that matched it.
type Conflict struct {
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	Keywords []string `json:"keywords"`
}
