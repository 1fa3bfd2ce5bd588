package product

import (
	"strings"
	"time"
)

// Product is a rentable piece of gear. Stock is the total owned quantity; it is
// only changed by admin edits, never by bookings.
type Product struct {
	ID           string
	Name         string
	Category     string
	Description  string
	ImageURL     string
	PricePerDay  int64 // display only
	PricePerTrip int64 // authoritative booking price per rental run
	Stock        int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int // optimistic lock
}

// NewProduct creates a new product.
func NewProduct(name, category, description string, pricePerDay, pricePerTrip int64, stock int) *Product {
	now := time.Now()
	return &Product{
		Name:         strings.TrimSpace(name),
		Category:     strings.ToLower(strings.TrimSpace(category)),
		Description:  description,
		PricePerDay:  pricePerDay,
		PricePerTrip: pricePerTrip,
		Stock:        stock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate checks the catalog invariants.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(p.Category) == "" {
		return ErrCategoryRequired
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	if p.PricePerDay < 0 || p.PricePerTrip < 0 {
		return ErrInvalidPrice
	}
	return nil
}
