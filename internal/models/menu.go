// internal/models/menu.go
package models

import "time"

type MenuItem struct {
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	Category           string   `json:"category,omitempty"`
	Price              string   `json:"price,omitempty"`
	Ingredients        []string `json:"ingredients"`
	ContainsRestricted []string `json:"containsRestricted,omitempty"`
}

// CachedExtraction is the persisted result of the last successful extraction
// for a source. Each write replaces the previous entry.
type CachedExtraction struct {
	SourceKey string     `json:"sourceKey"`
	Items     []MenuItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
