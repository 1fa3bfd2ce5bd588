package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/report"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
)

// ReportRepository aggregates reservations for admin reports.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

type statusRow struct {
	Status        string `db:"status"`
	Count         int    `db:"count"`
	Revenue       int64  `db:"revenue"`
	DiscountGiven int64  `db:"discount_given"`
}

type unitsRow struct {
	ProductID   string `db:"product_id"`
	ProductName string `db:"product_name"`
	Units       int    `db:"units"`
}

// Summary covers reservations whose window starts between from and to inclusive.
func (r *ReportRepository) Summary(ctx context.Context, from, to time.Time) (*report.Summary, error) {
	fromDate, toDate := calendar.FormatDate(from), calendar.FormatDate(to)

	var statuses []statusRow
	statusQuery := `
		SELECT status, COUNT(*) AS count,
		       COALESCE(SUM(total), 0) AS revenue,
		       COALESCE(SUM(discount_amount), 0) AS discount_given
		FROM reservations
		WHERE start_date BETWEEN $1::date AND $2::date
		GROUP BY status
	`
	if err := r.db.SelectContext(ctx, &statuses, statusQuery, fromDate, toDate); err != nil {
		return nil, fmt.Errorf("report status summary: %w", err)
	}

	var units []unitsRow
	unitsQuery := `
		SELECT i.product_id, MAX(i.product_name) AS product_name, SUM(i.quantity) AS units
		FROM reservation_items i
		JOIN reservations r ON r.id = i.reservation_id
		WHERE r.start_date BETWEEN $1::date AND $2::date AND r.status <> 'cancelled'
		GROUP BY i.product_id
		ORDER BY units DESC, product_name
	`
	if err := r.db.SelectContext(ctx, &units, unitsQuery, fromDate, toDate); err != nil {
		return nil, fmt.Errorf("report product units: %w", err)
	}

	s := &report.Summary{
		From:           calendar.Date(from),
		To:             calendar.Date(to),
		CountsByStatus: make(map[reservation.Status]int, len(reservation.AllStatuses)),
		UnitsByProduct: make([]report.ProductUnits, 0, len(units)),
	}
	for _, st := range reservation.AllStatuses {
		s.CountsByStatus[st] = 0
	}
	for _, row := range statuses {
		st := reservation.Status(row.Status)
		s.CountsByStatus[st] = row.Count
		s.Reservations += row.Count
		if st == reservation.StatusCancelled {
			continue
		}
		s.Revenue += row.Revenue
		s.DiscountGiven += row.DiscountGiven
	}
	for _, row := range units {
		s.UnitsByProduct = append(s.UnitsByProduct, report.ProductUnits{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Units:       row.Units,
		})
	}
	return s, nil
}

var _ report.Repository = (*ReportRepository)(nil)
