package postgres

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/discount"
	"github.com/sanosuguru/go-gear-rental/internal/domain/product"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
	"github.com/sanosuguru/go-gear-rental/internal/domain/transaction"
)

const (
	productID     = "7f1c2a9e-4a6b-4d0e-9a51-3f5b1c2d3e4f"
	reservationID = "0b8e6c1d-2f3a-4b5c-8d9e-1a2b3c4d5e6f"
	discountID    = "5d4c3b2a-1f0e-4d9c-8b7a-6f5e4d3c2b1a"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func beginTx(t *testing.T, db *sqlx.DB, mock sqlmock.Sqlmock) transaction.Tx {
	t.Helper()
	mock.ExpectBegin()
	tx, err := NewTxManager(db).Begin(context.Background())
	require.NoError(t, err)
	return tx
}

var productCols = []string{"id", "name", "category", "description", "image_url", "price_per_day", "price_per_trip", "stock", "created_at", "updated_at", "version"}

func TestProductRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM products WHERE id = \$1`).
		WithArgs(productID).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(productID, "Tent 4P", "tent", "", "", 40000, 100000, 5, now, now, 2))

	p, err := repo.GetByID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, "Tent 4P", p.Name)
	assert.Equal(t, int64(100000), p.PricePerTrip)
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, 2, p.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(`FROM products WHERE id = \$1`).
		WithArgs(productID).
		WillReturnRows(sqlmock.NewRows(productCols))

	_, err := repo.GetByID(context.Background(), productID)
	assert.ErrorIs(t, err, product.ErrProductNotFound)

	// malformed IDs never reach the database
	_, err = repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, product.ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)
	p := product.NewProduct("Stove", "Cooking", "", 10000, 25000, 3)

	mock.ExpectQuery(`INSERT INTO products`).
		WithArgs("Stove", "cooking", "", "", int64(10000), int64(25000), 3, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(productID))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, productID, p.ID)
	assert.Equal(t, 1, p.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_VersionConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)
	p := &product.Product{ID: productID, Name: "Tent", Category: "tent", Stock: 4, Version: 1}

	mock.ExpectExec(`UPDATE products`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(productID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := repo.Update(context.Background(), p)
	assert.ErrorIs(t, err, product.ErrOptimisticLockConflict)
	assert.Equal(t, 1, p.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Update_BumpsVersion(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)
	p := &product.Product{ID: productID, Name: "Tent", Category: "tent", Stock: 4, Version: 3}

	mock.ExpectExec(`UPDATE products`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), p))
	assert.Equal(t, 4, p.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Delete_InUse(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)

	mock.ExpectExec(`DELETE FROM products`).
		WithArgs(productID).
		WillReturnError(&pq.Error{Code: codeForeignKeyViolation})

	err := repo.Delete(context.Background(), productID)
	assert.ErrorIs(t, err, product.ErrProductInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_LockForUpdate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProductRepository(db)
	now := time.Now()

	_, err := repo.LockForUpdate(context.Background(), nil, []string{productID})
	assert.ErrorIs(t, err, ErrTransactionRequired)

	tx := beginTx(t, db, mock)
	mock.ExpectQuery(`ORDER BY id FOR UPDATE`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(productID, "Tent 4P", "tent", "", "", 40000, 100000, 5, now, now, 1))

	products, err := repo.LockForUpdate(context.Background(), tx, []string{productID, "junk", productID})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, productID, products[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var reservationCols = []string{
	"id", "order_code", "customer_name", "customer_email", "customer_phone", "customer_address", "customer_notes",
	"start_date", "end_date", "status", "subtotal", "discount_code", "discount_percentage", "discount_amount", "total", "idempotency_key",
	"payment_token", "payment_redirect_url", "payment_status", "payment_transaction_id", "paid_at", "created_at", "updated_at",
}

var itemCols = []string{"id", "reservation_id", "product_id", "product_name", "quantity", "price_per_run"}

func reservationRowValues(status string, start time.Time) []driver.Value {
	now := time.Now()
	return []driver.Value{
		reservationID, "RNT-1026-0001", "Budi", "budi@example.com", "", "", "",
		start, start.AddDate(0, 0, 3), status, int64(300000), "PROMO20", 20, int64(60000), int64(240000), "idem-1",
		"", "", "", "", nil, now, now,
	}
}

func newTestReservation() *reservation.Reservation {
	r := reservation.NewReservation("RNT-1026-0001",
		reservation.Customer{Name: "Budi", Email: "budi@example.com"},
		calendar.DeriveWindow(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)),
		[]reservation.Item{
			{ProductID: productID, ProductName: "Tent 4P", Quantity: 3, PricePerRun: 100000},
		},
		"idem-1")
	r.Subtotal, r.Total = 300000, 300000
	return r
}

func TestReservationRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepository(db)
	res := newTestReservation()

	tx := beginTx(t, db, mock)
	mock.ExpectQuery(`INSERT INTO reservations`).
		WithArgs("RNT-1026-0001", "Budi", "budi@example.com", "", "", "",
			"2026-10-16", "2026-10-19", "pending", int64(300000), nil, 0, int64(0), int64(300000), "idem-1",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(reservationID))
	mock.ExpectQuery(`INSERT INTO reservation_items`).
		WithArgs(reservationID, 1, productID, "Tent 4P", 3, int64(100000)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("item-1"))

	require.NoError(t, repo.Create(context.Background(), tx, res))
	assert.Equal(t, reservationID, res.ID)
	assert.Equal(t, "item-1", res.Items[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_Create_UniqueViolations(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"idempotency key", "reservations_idempotency_key_key", reservation.ErrIdempotencyKeyAlreadyExists},
		{"order code", "reservations_order_code_key", reservation.ErrOrderCodeAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewReservationRepository(db)

			tx := beginTx(t, db, mock)
			mock.ExpectQuery(`INSERT INTO reservations`).
				WillReturnError(&pq.Error{Code: codeUniqueViolation, Constraint: tt.constraint})

			err := repo.Create(context.Background(), tx, newTestReservation())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReservationRepository_Create_RequiresTx(t *testing.T) {
	db, _ := newMock(t)
	err := NewReservationRepository(db).Create(context.Background(), nil, newTestReservation())
	assert.ErrorIs(t, err, ErrTransactionRequired)
}

func TestReservationRepository_ListOverlapping(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepository(db)
	start := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	w := calendar.DeriveWindow(start.AddDate(0, 0, 1))

	mock.ExpectQuery(`WHERE start_date <= \$2::date AND end_date >= \$1::date`).
		WithArgs("2026-10-17", "2026-10-20", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(reservationCols).AddRow(reservationRowValues("confirmed", start)...))
	mock.ExpectQuery(`FROM reservation_items`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow("item-1", reservationID, productID, "Tent 4P", 3, int64(100000)).
			AddRow("item-2", reservationID, "stove", "Stove", 1, int64(25000)))

	got, err := repo.ListOverlapping(context.Background(), nil, w, reservation.NonConsumingStatuses)
	require.NoError(t, err)
	require.Len(t, got, 1)

	r := got[0]
	assert.Equal(t, reservation.StatusConfirmed, r.Status)
	assert.Equal(t, start, r.Window.Start)
	assert.Equal(t, 3, r.QuantityOf(productID))
	require.Len(t, r.Items, 2)
	assert.Equal(t, "stove", r.Items[1].ProductID)
	assert.Equal(t, "PROMO20", r.DiscountCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_ListOverlapping_Empty(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepository(db)

	mock.ExpectQuery(`FROM reservations`).
		WillReturnRows(sqlmock.NewRows(reservationCols))

	got, err := repo.ListOverlapping(context.Background(), nil, calendar.DeriveWindow(time.Now()), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_GetByOrderCode_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepository(db)

	mock.ExpectQuery(`WHERE order_code = \$1`).
		WithArgs("RNT-1026-9999").
		WillReturnRows(sqlmock.NewRows(reservationCols))

	_, err := repo.GetByOrderCode(context.Background(), " rnt-1026-9999 ")
	assert.ErrorIs(t, err, reservation.ErrReservationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepository(db)
	res := newTestReservation()
	res.ID = reservationID
	res.Status = reservation.StatusActive

	mock.ExpectExec(`UPDATE reservations`).
		WithArgs("active", "", "", "", "", nil, sqlmock.AnyArg(), reservationID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), nil, res))

	mock.ExpectExec(`UPDATE reservations`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(context.Background(), nil, res), reservation.ErrReservationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_UpdateFromStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepository(db)
	res := newTestReservation()
	res.ID = reservationID
	res.Status = reservation.StatusActive

	mock.ExpectExec(`UPDATE reservations .* WHERE id = \$8 AND status = \$9`).
		WithArgs("active", "", "", "", "", nil, sqlmock.AnyArg(), reservationID, "pending").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateFromStatus(context.Background(), nil, res, reservation.StatusPending))

	// The cleaner already cancelled the row.
	mock.ExpectExec(`WHERE id = \$8 AND status = \$9`).
		WithArgs("active", "", "", "", "", nil, sqlmock.AnyArg(), reservationID, "pending").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateFromStatus(context.Background(), nil, res, reservation.StatusPending)
	assert.ErrorIs(t, err, reservation.ErrStatusChanged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_NextOrderSequence(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepository(db)

	tx := beginTx(t, db, mock)
	mock.ExpectQuery(`INSERT INTO order_sequences`).
		WithArgs("2026-10").
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(42))

	seq, err := repo.NextOrderSequence(context.Background(), tx, "2026-10")
	require.NoError(t, err)
	assert.Equal(t, 42, seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_ListDueForTransition(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepository(db)
	day := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`WHERE status = \$1 AND end_date < \$2::date`).
		WithArgs("active", "2026-10-20").
		WillReturnRows(sqlmock.NewRows(reservationCols))

	got, err := repo.ListDueForTransition(context.Background(), reservation.StatusActive, reservation.DueByEnd, day)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = repo.ListDueForTransition(context.Background(), reservation.StatusActive, "middle", day)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

var discountCols = []string{"id", "code", "percentage", "max_uses", "used_count", "valid_from", "valid_to", "is_active", "created_at", "updated_at"}

func TestDiscountRepository_GetByCode(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiscountRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM discount_codes WHERE code = \$1`).
		WithArgs("PROMO20").
		WillReturnRows(sqlmock.NewRows(discountCols).
			AddRow(discountID, "PROMO20", 20, 50, 49, nil, nil, true, now, now))

	c, err := repo.GetByCode(context.Background(), " promo20 ")
	require.NoError(t, err)
	require.NotNil(t, c.MaxUses)
	assert.Equal(t, 50, *c.MaxUses)
	assert.Equal(t, 49, c.UsedCount)
	assert.True(t, discount.Evaluate("promo20", c, now).Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDiscountRepository_GetByCode_Unlimited(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiscountRepository(db)
	now := time.Now()

	mock.ExpectQuery(`FROM discount_codes`).
		WillReturnRows(sqlmock.NewRows(discountCols).
			AddRow(discountID, "FREE", 100, nil, 7, nil, nil, true, now, now))

	c, err := repo.GetByCode(context.Background(), "free")
	require.NoError(t, err)
	assert.Nil(t, c.MaxUses)
}

func TestDiscountRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiscountRepository(db)

	mock.ExpectQuery(`INSERT INTO discount_codes`).
		WillReturnError(&pq.Error{Code: codeUniqueViolation})

	err := repo.Create(context.Background(), discount.NewCode("promo20", 20, nil, nil, nil))
	assert.ErrorIs(t, err, discount.ErrCodeAlreadyExists)
}

func TestDiscountRepository_IncrementUsage(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDiscountRepository(db)

	tx := beginTx(t, db, mock)
	mock.ExpectExec(`SET used_count = used_count \+ 1`).
		WithArgs(discountID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.IncrementUsage(context.Background(), tx, discountID))

	mock.ExpectExec(`SET used_count = used_count \+ 1`).
		WithArgs(discountID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.IncrementUsage(context.Background(), tx, discountID), discount.ErrCodeNotRedeemable)

	assert.ErrorIs(t, repo.IncrementUsage(context.Background(), nil, discountID), ErrTransactionRequired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_Summary(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReportRepository(db)
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`GROUP BY status`).
		WithArgs("2026-10-01", "2026-10-31").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count", "revenue", "discount_given"}).
			AddRow("confirmed", 3, int64(450000), int64(20000)).
			AddRow("completed", 2, int64(200000), int64(0)).
			AddRow("cancelled", 1, int64(100000), int64(10000)))
	mock.ExpectQuery(`FROM reservation_items i`).
		WithArgs("2026-10-01", "2026-10-31").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "product_name", "units"}).
			AddRow(productID, "Tent 4P", 7))

	s, err := repo.Summary(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, 6, s.Reservations)
	assert.Equal(t, 3, s.CountsByStatus[reservation.StatusConfirmed])
	assert.Equal(t, 0, s.CountsByStatus[reservation.StatusPending])
	assert.Equal(t, int64(650000), s.Revenue)
	assert.Equal(t, int64(20000), s.DiscountGiven)
	require.Len(t, s.UnitsByProduct, 1)
	assert.Equal(t, 7, s.UnitsByProduct[0].Units)
	assert.NoError(t, mock.ExpectationsWereMet())
}
