package application

import (
	"time"

	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
)

// CalendarService applies the rental calendar in the store's timezone.
type CalendarService struct {
	loc *time.Location
	now func() time.Time
}

func NewCalendarService(loc *time.Location) *CalendarService {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarService{loc: loc, now: time.Now}
}

// Today is the current store-local date.
func (s *CalendarService) Today() time.Time {
	return calendar.Today(s.now(), s.loc)
}

// Location is the store timezone.
func (s *CalendarService) Location() *time.Location {
	return s.loc
}

// WindowFor validates a start date and derives its rental window.
func (s *CalendarService) WindowFor(start time.Time) (calendar.Window, error) {
	if err := calendar.ValidateStartDate(start, s.Today()); err != nil {
		return calendar.Window{}, err
	}
	return calendar.DeriveWindow(start), nil
}

// RentalDays counts the rental weekdays between two dates.
func (s *CalendarService) RentalDays(from, to time.Time) (int, error) {
	return calendar.CountRentalDays(from, to)
}
