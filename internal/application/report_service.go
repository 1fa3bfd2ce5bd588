package application

import (
	"context"
	"time"

	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/report"
)

// ReportService produces admin summaries.
type ReportService struct {
	reportRepo report.Repository
}

func NewReportService(rr report.Repository) *ReportService {
	return &ReportService{reportRepo: rr}
}

// Summary aggregates reservations starting within [from, to].
func (s *ReportService) Summary(ctx context.Context, from, to time.Time) (*report.Summary, error) {
	from, to = calendar.Date(from), calendar.Date(to)
	if from.IsZero() || to.IsZero() {
		return nil, calendar.ErrInvalidDate
	}
	if to.Before(from) {
		return nil, ErrInvalidDateRange
	}
	return s.reportRepo.Summary(ctx, from, to)
}
