package application

import (
	"errors"
	"fmt"
)

var (
	ErrLockContention     = errors.New("these items are being booked by another customer, please retry")
	ErrInvalidDiscount    = errors.New("invalid discount code")
	ErrInvalidDateRange   = errors.New("from must not be after to")
	ErrWebhookUnavailable = errors.New("payment notifications are not configured")
	ErrCartUnavailable    = errors.New("cart sessions are not available")
)

// InvalidDiscountError carries the evaluator's reason for rejecting a code.
type InvalidDiscountError struct {
	Code   string
	Reason string
}

func (e *InvalidDiscountError) Error() string {
	return fmt.Sprintf("discount code %q: %s", e.Code, e.Reason)
}

func (e *InvalidDiscountError) Is(target error) bool {
	return target == ErrInvalidDiscount
}
