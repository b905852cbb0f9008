package entity

import "time"

// Product is a catalog item created by an admin user.
type Product struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"` // creator
	Name         string    `json:"name"`
	ImageURL     string    `json:"image_url"`
	Brand        string    `json:"brand"`
	CategoryID   string    `json:"category_id"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	CountInStock int       `json:"count_in_stock"`
	Rating       float64   `json:"rating"`
	NumReviews   int       `json:"num_reviews"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Populated on reads that join categories
	CategoryName string `json:"category_name,omitempty"`
	CategorySlug string `json:"category_slug,omitempty"`
}
