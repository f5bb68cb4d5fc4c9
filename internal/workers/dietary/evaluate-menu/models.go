// internal/workers/dietary/evaluate-menu/models.go
package evaluatemenu

import "dinefine-workers/internal/models"

type Input struct {
	Items  []models.MenuItem    `json:"items"`
	UserID string               `json:"userId,omitempty"`
	Diner  *models.DinerProfile `json:"diner,omitempty"`
}

type Output struct {
	models.MenuSafetySummary
	RestrictedItems []string `json:"restrictedItems"`
}

const inputSchema = `{
	"type": "object",
	"properties": {
		"items": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string"},
					"category": {"type": "string"},
					"ingredients": {"type": ["array", "null"], "items": {"type": "string"}},
					"containsRestricted": {"type": ["array", "null"], "items": {"type": "string"}}
				}
			}
		},
		"userId": {"type": "string"},
		"diner": {
			"type": "object",
			"properties": {
				"allergies": {"type": "array", "items": {"type": "string"}},
				"dietaryRestrictions": {"type": "array", "items": {"type": "string"}}
			}
		}
	}
}`
