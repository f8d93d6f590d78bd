package model

// Category is a named grouping for questions. A question belongs to at
// most one category.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
