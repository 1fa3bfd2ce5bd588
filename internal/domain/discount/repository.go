package discount

import (
	"context"

	"github.com/sanosuguru/go-gear-rental/internal/domain/transaction"
)

// Repository is the discount store port.
type Repository interface {
	// Create inserts a new code
	Create(ctx context.Context, c *Code) error

	// GetByID fetches a code by ID
	GetByID(ctx context.Context, id string) (*Code, error)

	// GetByCode performs a case-insensitive lookup
	GetByCode(ctx context.Context, code string) (*Code, error)

	// GetByCodeForUpdate locks the code row inside tx
	GetByCodeForUpdate(ctx context.Context, tx transaction.Tx, code string) (*Code, error)

	// List returns every code, newest first
	List(ctx context.Context) ([]*Code, error)

	// Update saves admin edits; UsedCount is not written
	Update(ctx context.Context, c *Code) error

	// Delete removes a code
	Delete(ctx context.Context, id string) error

	// IncrementUsage adds one redemption inside tx
	IncrementUsage(ctx context.Context, tx transaction.Tx, id string) error
}
