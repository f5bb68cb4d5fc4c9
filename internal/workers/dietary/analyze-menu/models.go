// internal/workers/dietary/analyze-menu/models.go
package analyzemenu

import (
	"time"

	"dinefine-workers/internal/models"
)

type Input struct {
	SourceKey      string               `json:"sourceKey"`
	Query          string               `json:"query,omitempty"`
	UserID         string               `json:"userId"`
	RestaurantName string               `json:"restaurantName,omitempty"`
	Diner          *models.DinerProfile `json:"diner,omitempty"`
}

type Output struct {
	AttemptID       string                   `json:"attemptId"`
	Items           []models.MenuItem        `json:"items"`
	ServedFromCache bool                     `json:"servedFromCache"`
	CacheDecision   string                   `json:"cacheDecision"`
	MenuUpdatedAt   time.Time                `json:"menuUpdatedAt"`
	Summary         models.MenuSafetySummary `json:"summary"`
	Annotations     []models.ItemSafety      `json:"annotations"`
	QuotaRemaining  *int                     `json:"quotaRemaining,omitempty"`
}

const inputSchema = `{
	"type": "object",
	"required": ["sourceKey", "userId"],
	"properties": {
		"sourceKey": {"type": "string", "minLength": 1},
		"query": {"type": "string", "maxLength": 200},
		"userId": {"type": "string", "minLength": 1},
		"restaurantName": {"type": "string"},
		"diner": {
			"type": "object",
			"properties": {
				"allergies": {"type": "array", "items": {"type": "string"}},
				"dietaryRestrictions": {"type": "array", "items": {"type": "string"}}
			}
		}
	}
}`
