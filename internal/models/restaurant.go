// internal/models/restaurant.go
package models

// Restaurant carries the free-text surfaces scanned for dietary safety.
type Restaurant struct {
	ID             string   `json:"id,omitempty"`
	Name           string   `json:"name"`
	Website        string   `json:"website,omitempty"`
	CuisineType    string   `json:"cuisineType"`
	AllergyNotes   string   `json:"allergyNotes,omitempty"`
	DietaryOptions []string `json:"dietaryOptions,omitempty"`
	Pros           []string `json:"pros,omitempty"`
	Cons           []string `json:"cons,omitempty"`
}

// TextSurfaces returns every scannable text field of the restaurant.
func (r Restaurant) TextSurfaces() []string {
	surfaces := make([]string, 0, 2+len(r.DietaryOptions)+len(r.Pros)+len(r.Cons))
	surfaces = append(surfaces, r.CuisineType, r.AllergyNotes)
	surfaces = append(surfaces, r.DietaryOptions...)
	surfaces = append(surfaces, r.Pros...)
	surfaces = append(surfaces, r.Cons...)
	return surfaces
}
