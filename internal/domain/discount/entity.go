package discount

import (
	"strings"
	"time"
)

// Code is a redeemable promotional code. UsedCount is owned by the discount
// store and only ever incremented alongside a reservation insert.
type Code struct {
	ID         string
	Code       string
	Percentage int
	MaxUses    *int
	UsedCount  int
	ValidFrom  *time.Time
	ValidTo    *time.Time
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Normalize returns the canonical, upper-cased form of a code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewCode creates an active code.
func NewCode(code string, percentage int, maxUses *int, validFrom, validTo *time.Time) *Code {
	now := time.Now()
	return &Code{
		Code:       Normalize(code),
		Percentage: percentage,
		MaxUses:    maxUses,
		ValidFrom:  validFrom,
		ValidTo:    validTo,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks the stored invariants.
func (c *Code) Validate() error {
	if c.Code == "" {
		return ErrCodeRequired
	}
	if c.Percentage < 1 || c.Percentage > 100 {
		return ErrInvalidPercentage
	}
	if c.MaxUses != nil && *c.MaxUses < 1 {
		return ErrInvalidMaxUses
	}
	if c.ValidFrom != nil && c.ValidTo != nil && c.ValidTo.Before(*c.ValidFrom) {
		return ErrInvalidValidityPeriod
	}
	return nil
}

// RemainingUses returns nil for unlimited codes.
func (c *Code) RemainingUses() *int {
	if c.MaxUses == nil {
		return nil
	}
	n := *c.MaxUses - c.UsedCount
	if n < 0 {
		n = 0
	}
	return &n
}
