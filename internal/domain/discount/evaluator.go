package discount

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Reasons reported for a rejected code. They are shown to customers as-is.
const (
	ReasonCodeRequired = "code required"
	ReasonNotFound     = "not found/inactive"
	ReasonInactive     = "inactive"
	ReasonUsageLimit   = "usage limit reached"
	ReasonNotYetActive = "not yet active"
	ReasonExpired      = "expired"
)

// Result is the outcome of evaluating a code. Percentage is zero unless Valid.
type Result struct {
	Valid      bool
	Code       string
	Percentage int
	Reason     string
}

// None is the result used when no code was supplied at checkout.
var None = Result{}

// Evaluate applies the redemption rules in order; the first failing rule
// decides the reason. stored is the record found for the normalised input,
// or nil. It never mutates stored.
func Evaluate(input string, stored *Code, now time.Time) Result {
	code := Normalize(input)
	if code == "" {
		return Result{Reason: ReasonCodeRequired}
	}
	if stored == nil || !strings.EqualFold(stored.Code, code) {
		return Result{Code: code, Reason: ReasonNotFound}
	}
	if !stored.IsActive {
		return Result{Code: code, Reason: ReasonInactive}
	}
	if stored.MaxUses != nil && stored.UsedCount >= *stored.MaxUses {
		return Result{Code: code, Reason: ReasonUsageLimit}
	}
	if stored.ValidFrom != nil && now.Before(*stored.ValidFrom) {
		return Result{Code: code, Reason: ReasonNotYetActive}
	}
	if stored.ValidTo != nil && now.After(*stored.ValidTo) {
		return Result{Code: code, Reason: ReasonExpired}
	}
	return Result{Valid: true, Code: stored.Code, Percentage: stored.Percentage}
}

var hundred = decimal.NewFromInt(100)

// ComputeDiscount returns round-half-up(amount * percentage / 100), clamped
// to [0, amount].
func ComputeDiscount(amount int64, percentage int) int64 {
	if amount <= 0 || percentage <= 0 {
		return 0
	}
	if percentage >= 100 {
		return amount
	}
	d := decimal.NewFromInt(amount).
		Mul(decimal.NewFromInt(int64(percentage))).
		Div(hundred).
		Round(0)
	v := d.IntPart()
	if v > amount {
		return amount
	}
	return v
}
