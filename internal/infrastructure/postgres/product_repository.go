package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-gear-rental/internal/domain/product"
	"github.com/sanosuguru/go-gear-rental/internal/domain/transaction"
)

const defaultListLimit = 100

const productColumns = `id, name, category, description, image_url, price_per_day, price_per_trip, stock, created_at, updated_at, version`

type productRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Category     string    `db:"category"`
	Description  string    `db:"description"`
	ImageURL     string    `db:"image_url"`
	PricePerDay  int64     `db:"price_per_day"`
	PricePerTrip int64     `db:"price_per_trip"`
	Stock        int       `db:"stock"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	Version      int       `db:"version"`
}

func (r *productRow) toEntity() *product.Product {
	return &product.Product{
		ID:           r.ID,
		Name:         r.Name,
		Category:     r.Category,
		Description:  r.Description,
		ImageURL:     r.ImageURL,
		PricePerDay:  r.PricePerDay,
		PricePerTrip: r.PricePerTrip,
		Stock:        r.Stock,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		Version:      r.Version,
	}
}

// ProductRepository is the PostgreSQL catalog.
type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts p and assigns its ID.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (name, category, description, image_url, price_per_day, price_per_trip, stock, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Category, p.Description, p.ImageURL, p.PricePerDay, p.PricePerTrip, p.Stock, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	p.Version = 1
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, product.ErrProductNotFound
	}
	var row productRow
	err := r.db.GetContext(ctx, &row, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, product.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return row.toEntity(), nil
}

// GetByIDs returns the products that exist; malformed IDs are skipped.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]*product.Product, error) {
	valid := validUUIDs(ids)
	if len(valid) == 0 {
		return []*product.Product{}, nil
	}
	var rows []productRow
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::uuid[]) ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(valid)); err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	return toProducts(rows), nil
}

func (r *ProductRepository) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = '' OR category = $1)
		ORDER BY name, id
		LIMIT $2 OFFSET $3
	`
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, filter.Category, limit, filter.Offset); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return toProducts(rows), nil
}

// Update saves admin edits guarded by the version column.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	query := `
		UPDATE products
		SET name = $1, category = $2, description = $3, image_url = $4,
		    price_per_day = $5, price_per_trip = $6, stock = $7, updated_at = $8, version = version + 1
		WHERE id = $9 AND version = $10
	`
	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		p.Name, p.Category, p.Description, p.ImageURL, p.PricePerDay, p.PricePerTrip, p.Stock, now, p.ID, p.Version,
	)
	if err != nil {
		if isInvalidText(err) {
			return product.ErrProductNotFound
		}
		return fmt.Errorf("update product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, p.ID); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if exists {
			return product.ErrOptimisticLockConflict
		}
		return product.ErrProductNotFound
	}
	p.Version++
	p.UpdatedAt = now
	return nil
}

// Delete removes a product that no reservation references.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return product.ErrProductNotFound
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if code, _ := pqCode(err); code == codeForeignKeyViolation {
			return product.ErrProductInUse
		}
		return fmt.Errorf("delete product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if affected == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

// LockForUpdate takes row locks on the products in ID order so concurrent
// checkouts for overlapping carts cannot deadlock.
func (r *ProductRepository) LockForUpdate(ctx context.Context, tx transaction.Tx, ids []string) ([]*product.Product, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return nil, ErrTransactionRequired
	}
	valid := validUUIDs(ids)
	if len(valid) == 0 {
		return []*product.Product{}, nil
	}
	var rows []productRow
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`
	if err := sqlxTx.SelectContext(ctx, &rows, query, pq.Array(valid)); err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	return toProducts(rows), nil
}

func toProducts(rows []productRow) []*product.Product {
	products := make([]*product.Product, len(rows))
	for i := range rows {
		products[i] = rows[i].toEntity()
	}
	return products
}

func validUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

var _ product.Repository = (*ProductRepository)(nil)
