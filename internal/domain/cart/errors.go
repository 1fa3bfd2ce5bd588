package cart

import "errors"

var (
	ErrSessionRequired   = errors.New("session ID is required")
	ErrProductIDRequired = errors.New("product ID is required")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrItemNotInCart     = errors.New("product is not in the cart")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrStartDateRequired = errors.New("rental start date is required")
	ErrCartNotFound      = errors.New("cart not found")
)
