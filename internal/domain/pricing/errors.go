package pricing

import (
	"errors"
	"fmt"
)

// Pricing errors
var (
	ErrNoItems         = errors.New("order has no items")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrUnknownProduct  = errors.New("order line references an unknown product")
	ErrOverBooked      = errors.New("requested quantity exceeds remaining stock")
)

// OverBookedError identifies the product that failed the stock re-check.
type OverBookedError struct {
	ProductID   string
	ProductName string
	Requested   int
	Remaining   int
}

func (e *OverBookedError) Error() string {
	return fmt.Sprintf("product %s (%s) over-booked: requested %d, remaining %d",
		e.ProductID, e.ProductName, e.Requested, e.Remaining)
}

// Is makes errors.Is(err, ErrOverBooked) match.
func (e *OverBookedError) Is(target error) bool {
	return target == ErrOverBooked
}
