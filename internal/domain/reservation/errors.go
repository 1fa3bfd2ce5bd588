package reservation

import "errors"

// Reservation domain errors
var (
	ErrReservationNotFound         = errors.New("reservation not found")
	ErrInvalidStatus               = errors.New("unknown reservation status")
	ErrCustomerNameRequired        = errors.New("customer name is required")
	ErrCustomerContactRequired     = errors.New("customer email or phone is required")
	ErrItemsRequired               = errors.New("at least one item is required")
	ErrInvalidQuantity             = errors.New("item quantity must be at least 1")
	ErrProductIDRequired           = errors.New("item product ID is required")
	ErrNegativeAmount              = errors.New("amounts must not be negative")
	ErrOrderCodeRequired           = errors.New("order code is required")
	ErrReservationNotPending       = errors.New("reservation is not pending")
	ErrStatusChanged               = errors.New("reservation status changed concurrently")
	ErrIdempotencyKeyAlreadyExists = errors.New("a reservation with this idempotency key already exists")
	ErrOrderCodeAlreadyExists      = errors.New("order code already exists")
)
