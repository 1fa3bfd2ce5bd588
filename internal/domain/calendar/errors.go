package calendar

import "errors"

// Calendar domain errors
var (
	ErrInvalidDate         = errors.New("date must be in YYYY-MM-DD format")
	ErrPastDate            = errors.New("start date is in the past")
	ErrStartDayNotAllowed  = errors.New("rentals can only start on Friday, Saturday or Sunday")
	ErrInvalidWindow       = errors.New("window end must be after its start")
	ErrInvalidCountingSpan = errors.New("range end must not be before its start")
)
