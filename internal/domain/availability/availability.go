// Package availability computes remaining bookable stock from overlapping
// reservations. Stock is never decremented in place; it is always derived.
package availability

import (
	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/product"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
)

// Overlaps reports whether two windows share at least one calendar day.
// Both bounds are inclusive.
func Overlaps(a, b calendar.Window) bool {
	return !a.Start.After(b.End) && !a.End.Before(b.Start)
}

// Consumed sums the units of productID held by stock-consuming reservations
// overlapping w.
func Consumed(productID string, w calendar.Window, reservations []*reservation.Reservation) int {
	total := 0
	for _, r := range reservations {
		if r == nil || !r.Status.ConsumesStock() || !Overlaps(r.Window, w) {
			continue
		}
		total += r.QuantityOf(productID)
	}
	return total
}

// RemainingStock returns how many units of p can still be booked for w.
// The result is never negative.
func RemainingStock(p *product.Product, w calendar.Window, reservations []*reservation.Reservation) int {
	remaining := p.Stock - Consumed(p.ID, w, reservations)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ConsumedByProduct sums booked units per product for stock-consuming
// reservations overlapping w.
func ConsumedByProduct(w calendar.Window, reservations []*reservation.Reservation) map[string]int {
	used := make(map[string]int)
	for _, r := range reservations {
		if r == nil || !r.Status.ConsumesStock() || !Overlaps(r.Window, w) {
			continue
		}
		for _, it := range r.Items {
			used[it.ProductID] += it.Quantity
		}
	}
	return used
}

// RemainingFromConsumed applies a ConsumedByProduct result to p.
func RemainingFromConsumed(p *product.Product, consumed map[string]int) int {
	remaining := p.Stock - consumed[p.ID]
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RemainingByProduct computes RemainingStock for each product in a single
// pass over the reservations.
func RemainingByProduct(products []*product.Product, w calendar.Window, reservations []*reservation.Reservation) map[string]int {
	used := ConsumedByProduct(w, reservations)
	out := make(map[string]int, len(products))
	for _, p := range products {
		out[p.ID] = RemainingFromConsumed(p, used)
	}
	return out
}
