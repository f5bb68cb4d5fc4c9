package api

import (
	"dinefine-workers/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type scanRequest struct {
	Restaurant models.Restaurant    `json:"restaurant"`
	UserID     string               `json:"userId,omitempty"`
	Diner      *models.DinerProfile `json:"diner,omitempty"`
}

func (r scanRequest) Validate() error {
	return validation.Errors{
		"restaurant.name": validation.Validate(r.Restaurant.Name, validation.Required),
	}.Filter()
}

type evaluateRequest struct {
	Items  []models.MenuItem    `json:"items"`
	UserID string               `json:"userId,omitempty"`
	Diner  *models.DinerProfile `json:"diner,omitempty"`
}

func (r evaluateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Items, validation.Each(validation.By(requireItemName))),
	)
}

func requireItemName(value interface{}) error {
	item, _ := value.(models.MenuItem)
	return validation.Validate(item.Name, validation.Required.Error("item name is required"))
}

type analyzeRequest struct {
	SourceKey      string               `json:"sourceKey"`
	Query          string               `json:"query,omitempty"`
	UserID         string               `json:"userId"`
	RestaurantName string               `json:"restaurantName,omitempty"`
	Diner          *models.DinerProfile `json:"diner,omitempty"`
}

func (r analyzeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SourceKey, validation.Required),
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Query, validation.Length(0, 200)),
	)
}
