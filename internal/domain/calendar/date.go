package calendar

import (
	"strings"
	"time"
)

// Date truncates t to its calendar date, keeping the wall-clock date of t's
// own location and expressing it as a UTC midnight.
func Date(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateOf converts t to loc before truncating, so an instant is mapped to the
// calendar date observed in the store's timezone.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Date(t.In(loc))
}

// Today returns the current store-local calendar date.
func Today(now time.Time, loc *time.Location) time.Time {
	return DateOf(now, loc)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
