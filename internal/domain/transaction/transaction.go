package transaction

import "context"

// Tx is a unit of work. It keeps the domain layer independent of sqlx.
type Tx interface {
	Commit() error
	Rollback() error
}

// Manager opens transactions.
type Manager interface {
	// Begin starts a transaction. Checkout relies on row locks taken inside it.
	Begin(ctx context.Context) (Tx, error)
}
