package reservation

import (
	"context"
	"time"

	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/transaction"
)

// ListFilter narrows admin listings.
type ListFilter struct {
	Status Status
	From   time.Time // window start on or after
	To     time.Time // window start on or before
	Limit  int
	Offset int
}

// Repository is the reservation ledger port.
type Repository interface {
	// Create inserts a reservation and its items (transaction required)
	Create(ctx context.Context, tx transaction.Tx, r *Reservation) error

	// GetByID fetches a reservation with its items
	GetByID(ctx context.Context, id string) (*Reservation, error)

	// GetByOrderCode fetches a reservation by its public order code
	GetByOrderCode(ctx context.Context, code string) (*Reservation, error)

	// GetByIdempotencyKey fetches a reservation by checkout idempotency key
	GetByIdempotencyKey(ctx context.Context, key string) (*Reservation, error)

	// List returns reservations for admin tooling, newest first
	List(ctx context.Context, filter ListFilter) ([]*Reservation, error)

	// ListOverlapping returns reservations whose window overlaps w (inclusive
	// bounds) and whose status is not in exclude. tx may be nil.
	ListOverlapping(ctx context.Context, tx transaction.Tx, w calendar.Window, exclude []Status) ([]*Reservation, error)

	// Update saves status and payment fields (tx may be nil)
	Update(ctx context.Context, tx transaction.Tx, r *Reservation) error

	// UpdateFromStatus saves like Update but only while the stored status is
	// still expected. Returns ErrStatusChanged otherwise.
	UpdateFromStatus(ctx context.Context, tx transaction.Tx, r *Reservation, expected Status) error

	// NextOrderSequence returns the next order number for period (transaction required)
	NextOrderSequence(ctx context.Context, tx transaction.Tx, period string) (int, error)

	// GetExpiredPending returns pending reservations created more than expireAfter ago
	GetExpiredPending(ctx context.Context, expireAfter time.Duration) ([]*Reservation, error)

	// ListDueForTransition returns reservations in status whose window has
	// started on or before day (DueByStart) or ended before day (DueByEnd)
	ListDueForTransition(ctx context.Context, status Status, field DueField, day time.Time) ([]*Reservation, error)
}

// DueField selects which window bound ListDueForTransition compares.
type DueField string

const (
	DueByStart DueField = "start"
	DueByEnd   DueField = "end"
)
