package calendar

import (
	"time"
)

// RunNights is the length of one rental run ("trip"): 3 nights, 4 calendar days.
const RunNights = 3

const dateLayout = "2006-01-02"

const day = 24 * time.Hour

// Window is a closed span of calendar dates occupied by a reservation.
// Start and End are UTC midnights standing for store-local calendar dates.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow validates and builds a window from two calendar dates.
func NewWindow(start, end time.Time) (Window, error) {
	w := Window{Start: Date(start), End: Date(end)}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate checks that End is strictly after Start.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() || !w.End.After(w.Start) {
		return ErrInvalidWindow
	}
	return nil
}

// Days returns the number of calendar days covered, both ends included.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start)/day) + 1
}

// Contains reports whether d falls within the window.
func (w Window) Contains(d time.Time) bool {
	d = Date(d)
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w Window) String() string {
	return w.Start.Format(dateLayout) + "/" + w.End.Format(dateLayout)
}

// IsAllowedStartDay reports whether a rental run may start on d.
func IsAllowedStartDay(d time.Time) bool {
	return isRentalWeekday(d.Weekday())
}

// DeriveWindow returns the fixed rental run starting on start.
// The end date is always derived, never chosen.
func DeriveWindow(start time.Time) Window {
	s := Date(start)
	return Window{Start: s, End: s.AddDate(0, 0, RunNights)}
}

// IsPastOrInvalid is used to disable dates in a date picker.
func IsPastOrInvalid(d, today time.Time) bool {
	if d.IsZero() {
		return true
	}
	return Date(d).Before(Date(today))
}

// ValidateStartDate applies every start-date rule a checkout must enforce.
func ValidateStartDate(d, today time.Time) error {
	if IsPastOrInvalid(d, today) {
		return ErrPastDate
	}
	if !IsAllowedStartDay(d) {
		return ErrStartDayNotAllowed
	}
	return nil
}

// CountRentalDays counts the Fridays, Saturdays and Sundays in [from, to].
// It backs the informational duration display only and is unrelated to
// the length of a booked run.
func CountRentalDays(from, to time.Time) (int, error) {
	f, t := Date(from), Date(to)
	if f.IsZero() || t.IsZero() {
		return 0, ErrInvalidDate
	}
	if t.Before(f) {
		return 0, ErrInvalidCountingSpan
	}
	count := 0
	for d := f; !d.After(t); d = d.AddDate(0, 0, 1) {
		if isRentalWeekday(d.Weekday()) {
			count++
		}
	}
	return count, nil
}

func isRentalWeekday(wd time.Weekday) bool {
	return wd == time.Friday || wd == time.Saturday || wd == time.Sunday
}
