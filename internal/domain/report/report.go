// Package report defines the admin sales summary.
package report

import (
	"context"
	"time"

	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
)

// ProductUnits is the number of units booked for one product.
type ProductUnits struct {
	ProductID   string
	ProductName string
	Units       int
}

// Summary aggregates reservations whose window starts within [From, To].
// Revenue and DiscountGiven exclude cancelled reservations.
type Summary struct {
	From           time.Time
	To             time.Time
	CountsByStatus map[reservation.Status]int
	Reservations   int
	Revenue        int64
	DiscountGiven  int64
	UnitsByProduct []ProductUnits
}

// Repository computes summaries in the store.
type Repository interface {
	Summary(ctx context.Context, from, to time.Time) (*Summary, error)
}
