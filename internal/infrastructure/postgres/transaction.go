package postgres

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-gear-rental/internal/domain/transaction"
)

// ErrTransactionRequired is returned by writes that must run inside a transaction.
var ErrTransactionRequired = errors.New("operation requires a transaction")

// TxWrapper adapts sqlx.Tx to transaction.Tx.
type TxWrapper struct {
	*sqlx.Tx
}

func (t *TxWrapper) Commit() error {
	return t.Tx.Commit()
}

func (t *TxWrapper) Rollback() error {
	return t.Tx.Rollback()
}

// TxManager begins transactions on a sqlx.DB.
type TxManager struct {
	db *sqlx.DB
}

func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{db: db}
}

// Begin starts a READ COMMITTED transaction. Checkout serialises on product
// row locks, so a stricter isolation level is not needed.
func (m *TxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &TxWrapper{Tx: tx}, nil
}

// UnwrapTx returns the sqlx.Tx behind tx, or nil.
func UnwrapTx(tx transaction.Tx) *sqlx.Tx {
	if wrapper, ok := tx.(*TxWrapper); ok {
		return wrapper.Tx
	}
	return nil
}

// execer picks the transaction when one is supplied, the pool otherwise.
func execer(db *sqlx.DB, tx transaction.Tx) sqlx.ExtContext {
	if t := UnwrapTx(tx); t != nil {
		return t
	}
	return db
}

var _ transaction.Manager = (*TxManager)(nil)
