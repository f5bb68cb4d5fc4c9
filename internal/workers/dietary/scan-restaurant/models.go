// internal/workers/dietary/scan-restaurant/models.go
package scanrestaurant

import "dinefine-workers/internal/models"

type Input struct {
	Restaurant models.Restaurant    `json:"restaurant"`
	UserID     string               `json:"userId,omitempty"`
	Diner      *models.DinerProfile `json:"diner,omitempty"`
}

type Output struct {
	models.ScanVerdict
	RestaurantName string `json:"restaurantName"`
}

const inputSchema = `{
	"type": "object",
	"required": ["restaurant"],
	"properties": {
		"restaurant": {
			"type": "object",
			"required": ["name"],
			"properties": {
				"name": {"type": "string", "minLength": 1},
				"cuisineType": {"type": "string"},
				"allergyNotes": {"type": "string"},
				"dietaryOptions": {"type": "array", "items": {"type": "string"}},
				"pros": {"type": "array", "items": {"type": "string"}},
				"cons": {"type": "array", "items": {"type": "string"}}
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
