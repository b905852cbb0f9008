package entity

import "time"

// Category is a catalog grouping. Slug is unique and URL-friendly.
// ParentID is nil for top-level categories (self-referencing hierarchy).
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ParentID  *string   `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
