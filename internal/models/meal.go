package models

import (
	"errors"
	"strings"
	"time"
)

// Meal availability is reserved at request time: AvailableQuantity is
// decremented when a reservation is created, restocked on cancellation, and
// floored at zero.
type Meal struct {
	ID                string    `json:"id"`
	CookID            string    `json:"cook_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	PriceCents        int64     `json:"price_cents"`
	AvailableQuantity int       `json:"available_quantity"`
	Rating            float64   `json:"rating"`
	RatingCount       int       `json:"rating_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (m *Meal) Validate() error {
	if len(strings.TrimSpace(m.Title)) < 2 {
		return errors.New("title too short")
	}
	if m.PriceCents <= 0 {
		return errors.New("price must be > 0")
	}
	if m.AvailableQuantity < 0 {
		return errors.New("available quantity must be >= 0")
	}
	return nil
}
