package product

import "errors"

// Product domain errors
var (
	ErrProductNotFound        = errors.New("product not found")
	ErrNameRequired           = errors.New("product name is required")
	ErrCategoryRequired       = errors.New("product category is required")
	ErrInvalidStock           = errors.New("stock must be zero or greater")
	ErrInvalidPrice           = errors.New("prices must be zero or greater")
	ErrOptimisticLockConflict = errors.New("product was modified concurrently")
	ErrProductInUse           = errors.New("product is referenced by reservations")
)
