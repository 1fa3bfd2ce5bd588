package product

import (
	"context"

	"github.com/sanosuguru/go-gear-rental/internal/domain/transaction"
)

// ListFilter narrows catalog listings.
type ListFilter struct {
	Category string
	Limit    int
	Offset   int
}

// Repository is the catalog port.
type Repository interface {
	// Create inserts a product and assigns its ID
	Create(ctx context.Context, p *Product) error

	// GetByID fetches one product
	GetByID(ctx context.Context, id string) (*Product, error)

	// GetByIDs fetches several products; missing IDs are simply absent
	GetByIDs(ctx context.Context, ids []string) ([]*Product, error)

	// List returns products ordered by name
	List(ctx context.Context, filter ListFilter) ([]*Product, error)

	// Update saves admin edits (optimistic lock on Version)
	Update(ctx context.Context, p *Product) error

	// Delete removes a product
	Delete(ctx context.Context, id string) error

	// LockForUpdate row-locks the given products inside tx, ordered by ID
	LockForUpdate(ctx context.Context, tx transaction.Tx, ids []string) ([]*Product, error)
}
