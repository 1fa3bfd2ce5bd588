package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
	"github.com/sanosuguru/go-gear-rental/internal/domain/transaction"
)

const reservationColumns = `id, order_code, customer_name, customer_email, customer_phone, customer_address, customer_notes,
	start_date, end_date, status, subtotal, discount_code, discount_percentage, discount_amount, total, idempotency_key,
	payment_token, payment_redirect_url, payment_status, payment_transaction_id, paid_at, created_at, updated_at`

type reservationRow struct {
	ID                   string         `db:"id"`
	OrderCode            string         `db:"order_code"`
	CustomerName         string         `db:"customer_name"`
	CustomerEmail        string         `db:"customer_email"`
	CustomerPhone        string         `db:"customer_phone"`
	CustomerAddress      string         `db:"customer_address"`
	CustomerNotes        string         `db:"customer_notes"`
	StartDate            time.Time      `db:"start_date"`
	EndDate              time.Time      `db:"end_date"`
	Status               string         `db:"status"`
	Subtotal             int64          `db:"subtotal"`
	DiscountCode         sql.NullString `db:"discount_code"`
	DiscountPercentage   int            `db:"discount_percentage"`
	DiscountAmount       int64          `db:"discount_amount"`
	Total                int64          `db:"total"`
	IdempotencyKey       sql.NullString `db:"idempotency_key"`
	PaymentToken         string         `db:"payment_token"`
	PaymentRedirectURL   string         `db:"payment_redirect_url"`
	PaymentStatus        string         `db:"payment_status"`
	PaymentTransactionID string         `db:"payment_transaction_id"`
	PaidAt               *time.Time     `db:"paid_at"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

type itemRow struct {
	ID            string `db:"id"`
	ReservationID string `db:"reservation_id"`
	ProductID     string `db:"product_id"`
	ProductName   string `db:"product_name"`
	Quantity      int    `db:"quantity"`
	PricePerRun   int64  `db:"price_per_run"`
}

func (r *reservationRow) toEntity(items []reservation.Item) *reservation.Reservation {
	if items == nil {
		items = []reservation.Item{}
	}
	return &reservation.Reservation{
		ID:        r.ID,
		OrderCode: r.OrderCode,
		Customer: reservation.Customer{
			Name:    r.CustomerName,
			Email:   r.CustomerEmail,
			Phone:   r.CustomerPhone,
			Address: r.CustomerAddress,
			Notes:   r.CustomerNotes,
		},
		Window:             calendar.Window{Start: calendar.Date(r.StartDate), End: calendar.Date(r.EndDate)},
		Items:              items,
		Status:             reservation.Status(r.Status),
		Subtotal:           r.Subtotal,
		DiscountCode:       r.DiscountCode.String,
		DiscountPercentage: r.DiscountPercentage,
		DiscountAmount:     r.DiscountAmount,
		Total:              r.Total,
		IdempotencyKey:     r.IdempotencyKey.String,
		Payment: reservation.Payment{
			Token:         r.PaymentToken,
			RedirectURL:   r.PaymentRedirectURL,
			Status:        r.PaymentStatus,
			TransactionID: r.PaymentTransactionID,
			PaidAt:        r.PaidAt,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ReservationRepository is the PostgreSQL reservation ledger.
type ReservationRepository struct {
	db *sqlx.DB
}

func NewReservationRepository(db *sqlx.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create inserts the reservation and all of its items in tx.
func (r *ReservationRepository) Create(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return ErrTransactionRequired
	}

	query := `
		INSERT INTO reservations (order_code, customer_name, customer_email, customer_phone, customer_address, customer_notes,
			start_date, end_date, status, subtotal, discount_code, discount_percentage, discount_amount, total, idempotency_key,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::date, $8::date, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`
	err := sqlxTx.QueryRowContext(ctx, query,
		res.OrderCode, res.Customer.Name, res.Customer.Email, res.Customer.Phone, res.Customer.Address, res.Customer.Notes,
		calendar.FormatDate(res.Window.Start), calendar.FormatDate(res.Window.End), string(res.Status),
		res.Subtotal, nullString(res.DiscountCode), res.DiscountPercentage, res.DiscountAmount, res.Total,
		nullString(res.IdempotencyKey), res.CreatedAt, res.UpdatedAt,
	).Scan(&res.ID)
	if err != nil {
		if code, constraint := pqCode(err); code == codeUniqueViolation {
			if strings.Contains(constraint, "idempotency_key") {
				return reservation.ErrIdempotencyKeyAlreadyExists
			}
			return reservation.ErrOrderCodeAlreadyExists
		}
		return fmt.Errorf("create reservation: %w", err)
	}

	return r.insertItems(ctx, sqlxTx, res)
}

// insertItems writes every line in one multi-row INSERT.
func (r *ReservationRepository) insertItems(ctx context.Context, tx *sqlx.Tx, res *reservation.Reservation) error {
	if len(res.Items) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_items (reservation_id, line_no, product_id, product_name, quantity, price_per_run) VALUES `
	args := make([]interface{}, 0, len(res.Items)*6)
	placeholders := make([]string, 0, len(res.Items))
	for i, it := range res.Items {
		base := i * 6
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args, res.ID, i+1, it.ProductID, it.ProductName, it.Quantity, it.PricePerRun)
	}
	query += strings.Join(placeholders, ", ") + " RETURNING id"

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("create reservation items: %w", err)
	}
	defer rows.Close()
	for i := 0; rows.Next(); i++ {
		if i >= len(res.Items) {
			break
		}
		if err := rows.Scan(&res.Items[i].ID); err != nil {
			return fmt.Errorf("create reservation items: %w", err)
		}
	}
	return rows.Err()
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, reservation.ErrReservationNotFound
	}
	return r.getOne(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)
}

func (r *ReservationRepository) GetByOrderCode(ctx context.Context, code string) (*reservation.Reservation, error) {
	return r.getOne(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE order_code = $1`, strings.ToUpper(strings.TrimSpace(code)))
}

func (r *ReservationRepository) GetByIdempotencyKey(ctx context.Context, key string) (*reservation.Reservation, error) {
	return r.getOne(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE idempotency_key = $1`, key)
}

func (r *ReservationRepository) getOne(ctx context.Context, query string, arg interface{}) (*reservation.Reservation, error) {
	var row reservationRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, reservation.ErrReservationNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	items, err := r.loadItems(ctx, r.db, []string{row.ID})
	if err != nil {
		return nil, err
	}
	return row.toEntity(items[row.ID]), nil
}

// List returns reservations for admin tooling, newest first.
func (r *ReservationRepository) List(ctx context.Context, filter reservation.ListFilter) ([]*reservation.Reservation, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, calendar.FormatDate(filter.From))
		conds = append(conds, fmt.Sprintf("start_date >= $%d::date", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, calendar.FormatDate(filter.To))
		conds = append(conds, fmt.Sprintf("start_date <= $%d::date", len(args)))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	return r.selectWithItems(ctx, r.db, query, args...)
}

// ListOverlapping returns reservations sharing at least one day with w whose
// status is not excluded. Inside a checkout tx it sees rows committed by
// transactions that held the same product locks before it.
func (r *ReservationRepository) ListOverlapping(ctx context.Context, tx transaction.Tx, w calendar.Window, exclude []reservation.Status) ([]*reservation.Reservation, error) {
	excluded := make([]string, len(exclude))
	for i, s := range exclude {
		excluded[i] = string(s)
	}
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE start_date <= $2::date AND end_date >= $1::date
		  AND NOT (status = ANY($3))
		ORDER BY start_date, id
	`
	return r.selectWithItems(ctx, execer(r.db, tx), query,
		calendar.FormatDate(w.Start), calendar.FormatDate(w.End), pq.Array(excluded))
}

// Update saves status and payment fields.
func (r *ReservationRepository) Update(ctx context.Context, tx transaction.Tx, res *reservation.Reservation) error {
	query := `
		UPDATE reservations
		SET status = $1, payment_token = $2, payment_redirect_url = $3, payment_status = $4,
		    payment_transaction_id = $5, paid_at = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := execer(r.db, tx).ExecContext(ctx, query,
		string(res.Status), res.Payment.Token, res.Payment.RedirectURL, res.Payment.Status,
		res.Payment.TransactionID, res.Payment.PaidAt, res.UpdatedAt, res.ID,
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if affected == 0 {
		return reservation.ErrReservationNotFound
	}
	return nil
}

// UpdateFromStatus is Update guarded by the stored status, so concurrent
// writers (webhook, cleaner, lifecycle) cannot overwrite each other's move.
func (r *ReservationRepository) UpdateFromStatus(ctx context.Context, tx transaction.Tx, res *reservation.Reservation, expected reservation.Status) error {
	query := `
		UPDATE reservations
		SET status = $1, payment_token = $2, payment_redirect_url = $3, payment_status = $4,
		    payment_transaction_id = $5, paid_at = $6, updated_at = $7
		WHERE id = $8 AND status = $9
	`
	result, err := execer(r.db, tx).ExecContext(ctx, query,
		string(res.Status), res.Payment.Token, res.Payment.RedirectURL, res.Payment.Status,
		res.Payment.TransactionID, res.Payment.PaidAt, res.UpdatedAt, res.ID, string(expected),
	)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	if affected == 0 {
		return reservation.ErrStatusChanged
	}
	return nil
}

// NextOrderSequence bumps the per-period counter. The row lock it takes is
// held until tx ends, which serialises order numbering within a month.
func (r *ReservationRepository) NextOrderSequence(ctx context.Context, tx transaction.Tx, period string) (int, error) {
	sqlxTx := UnwrapTx(tx)
	if sqlxTx == nil {
		return 0, ErrTransactionRequired
	}
	query := `
		INSERT INTO order_sequences (period, last_value) VALUES ($1, 1)
		ON CONFLICT (period) DO UPDATE SET last_value = order_sequences.last_value + 1
		RETURNING last_value
	`
	var seq int
	if err := sqlxTx.QueryRowContext(ctx, query, period).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next order sequence: %w", err)
	}
	return seq, nil
}

func (r *ReservationRepository) GetExpiredPending(ctx context.Context, expireAfter time.Duration) ([]*reservation.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE status = 'pending' AND created_at < $1 ORDER BY created_at`
	return r.selectWithItems(ctx, r.db, query, time.Now().Add(-expireAfter))
}

func (r *ReservationRepository) ListDueForTransition(ctx context.Context, status reservation.Status, field reservation.DueField, day time.Time) ([]*reservation.Reservation, error) {
	var cond string
	switch field {
	case reservation.DueByStart:
		cond = "start_date <= $2::date"
	case reservation.DueByEnd:
		cond = "end_date < $2::date"
	default:
		return nil, fmt.Errorf("unknown due field %q", field)
	}
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE status = $1 AND ` + cond + ` ORDER BY start_date, id`
	return r.selectWithItems(ctx, r.db, query, string(status), calendar.FormatDate(day))
}

func (r *ReservationRepository) selectWithItems(ctx context.Context, q sqlx.ExtContext, query string, args ...interface{}) ([]*reservation.Reservation, error) {
	var rows []reservationRow
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select reservations: %w", err)
	}
	if len(rows) == 0 {
		return []*reservation.Reservation{}, nil
	}
	ids := make([]string, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	items, err := r.loadItems(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	result := make([]*reservation.Reservation, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity(items[rows[i].ID])
	}
	return result, nil
}

func (r *ReservationRepository) loadItems(ctx context.Context, q sqlx.QueryerContext, reservationIDs []string) (map[string][]reservation.Item, error) {
	var rows []itemRow
	query := `
		SELECT id, reservation_id, product_id, product_name, quantity, price_per_run
		FROM reservation_items
		WHERE reservation_id = ANY($1::uuid[])
		ORDER BY reservation_id, line_no
	`
	if err := sqlx.SelectContext(ctx, q, &rows, query, pq.Array(reservationIDs)); err != nil {
		return nil, fmt.Errorf("select reservation items: %w", err)
	}
	items := make(map[string][]reservation.Item, len(reservationIDs))
	for _, row := range rows {
		items[row.ReservationID] = append(items[row.ReservationID], reservation.Item{
			ID:          row.ID,
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
			PricePerRun: row.PricePerRun,
		})
	}
	return items, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ reservation.Repository = (*ReservationRepository)(nil)
