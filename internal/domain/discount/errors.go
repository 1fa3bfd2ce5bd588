package discount

import "errors"

// Discount domain errors
var (
	ErrDiscountNotFound      = errors.New("discount code not found")
	ErrCodeRequired          = errors.New("discount code is required")
	ErrCodeAlreadyExists     = errors.New("discount code already exists")
	ErrInvalidPercentage     = errors.New("percentage must be between 1 and 100")
	ErrInvalidMaxUses        = errors.New("max uses must be positive")
	ErrInvalidValidityPeriod = errors.New("valid_to must not be before valid_from")
	ErrCodeNotRedeemable     = errors.New("discount code cannot be redeemed")
)
