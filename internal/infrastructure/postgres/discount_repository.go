package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-gear-rental/internal/domain/discount"
	"github.com/sanosuguru/go-gear-rental/internal/domain/transaction"
)

const discountColumns = `id, code, percentage, max_uses, used_count, valid_from, valid_to, is_active, created_at, updated_at`

type discountRow struct {
	ID         string        `db:"id"`
	Code       string        `db:"code"`
	Percentage int           `db:"percentage"`
	MaxUses    sql.NullInt64 `db:"max_uses"`
	UsedCount  int           `db:"used_count"`
	ValidFrom  *time.Time    `db:"valid_from"`
	ValidTo    *time.Time    `db:"valid_to"`
	IsActive   bool          `db:"is_active"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`
}

func (r *discountRow) toEntity() *discount.Code {
	c := &discount.Code{
		ID:         r.ID,
		Code:       r.Code,
		Percentage: r.Percentage,
		UsedCount:  r.UsedCount,
		ValidFrom:  r.ValidFrom,
		ValidTo:    r.ValidTo,
		IsActive:   r.IsActive,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.MaxUses.Valid {
		n := int(r.MaxUses.Int64)
		c.MaxUses = &n
	}
	return c
}

// DiscountRepository is the PostgreSQL discount store.
type DiscountRepository struct {
	db *sqlx.DB
}

func NewDiscountRepository(db *sqlx.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

func (r *DiscountRepository) Create(ctx context.Context, c *discount.Code) error {
	query := `
		INSERT INTO discount_codes (code, percentage, max_uses, used_count, valid_from, valid_to, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		discount.Normalize(c.Code), c.Percentage, c.MaxUses, c.UsedCount, c.ValidFrom, c.ValidTo, c.IsActive, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return discount.ErrCodeAlreadyExists
		}
		return fmt.Errorf("create discount code: %w", err)
	}
	return nil
}

func (r *DiscountRepository) GetByID(ctx context.Context, id string) (*discount.Code, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, discount.ErrDiscountNotFound
	}
	return r.getOne(ctx, r.db, `SELECT `+discountColumns+` FROM discount_codes WHERE id = $1`, id)
}

// GetByCode looks a code up by its canonical upper-case form.
func (r *DiscountRepository) GetByCode(ctx context.Context, code string) (*discount.Code, error) {
	return r.getOne(ctx, r.db, `SELECT `+discountColumns+` FROM discount_codes WHERE code = $1`, discount.Normalize(code))
}

// GetByCodeForUpdate locks the row so the usage cap is re-checked against
// concurrent redemptions.
func (r *DiscountRepository) GetByCodeForUpdate(ctx context.Context, tx transaction.Tx, code string) (*discount.Code, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, ErrTransactionRequired
	}
	return r.getOne(ctx, sqlxTx, `SELECT `+discountColumns+` FROM discount_codes WHERE code = $1 FOR UPDATE`, discount.Normalize(code))
}

func (r *DiscountRepository) getOne(ctx context.Context, q sqlx.QueryerContext, query string, arg interface{}) (*discount.Code, error) {
	var row discountRow
	if err := sqlx.GetContext(ctx, q, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, discount.ErrDiscountNotFound
		}
		return nil, fmt.Errorf("get discount code: %w", err)
	}
	return row.toEntity(), nil
}

func (r *DiscountRepository) List(ctx context.Context) ([]*discount.Code, error) {
	var rows []discountRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+discountColumns+` FROM discount_codes ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("list discount codes: %w", err)
	}
	codes := make([]*discount.Code, len(rows))
	for i := range rows {
		codes[i] = rows[i].toEntity()
	}
	return codes, nil
}

// Update saves admin edits. used_count is owned by redemptions and never
// written here.
func (r *DiscountRepository) Update(ctx context.Context, c *discount.Code) error {
	query := `
		UPDATE discount_codes
		SET code = $1, percentage = $2, max_uses = $3, valid_from = $4, valid_to = $5, is_active = $6, updated_at = $7
		WHERE id = $8
	`
	c.UpdatedAt = time.Now()
	result, err := r.db.ExecContext(ctx, query,
		discount.Normalize(c.Code), c.Percentage, c.MaxUses, c.ValidFrom, c.ValidTo, c.IsActive, c.UpdatedAt, c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return discount.ErrCodeAlreadyExists
		}
		if isInvalidText(err) {
			return discount.ErrDiscountNotFound
		}
		return fmt.Errorf("update discount code: %w", err)
	}
	return expectOneRow(result, discount.ErrDiscountNotFound)
}

func (r *DiscountRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return discount.ErrDiscountNotFound
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM discount_codes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete discount code: %w", err)
	}
	return expectOneRow(result, discount.ErrDiscountNotFound)
}

// IncrementUsage records one redemption. The WHERE clause refuses to exceed
// max_uses even if a caller skipped the locked re-check.
func (r *DiscountRepository) IncrementUsage(ctx context.Context, tx transaction.Tx, id string) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return ErrTransactionRequired
	}
	query := `
		UPDATE discount_codes
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1 AND (max_uses IS NULL OR used_count < max_uses)
	`
	result, err := sqlxTx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment discount usage: %w", err)
	}
	return expectOneRow(result, discount.ErrCodeNotRedeemable)
}

func expectOneRow(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

var _ discount.Repository = (*DiscountRepository)(nil)
