// Package pricing turns a cart into an immutable order breakdown after
// re-checking stock against the current ledger.
package pricing

import (
	"github.com/sanosuguru/go-gear-rental/internal/domain/availability"
	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/discount"
	"github.com/sanosuguru/go-gear-rental/internal/domain/product"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
)

// Line is a requested product and quantity.
type Line struct {
	Product  *product.Product
	Quantity int
}

// LineBreakdown is a priced line.
type LineBreakdown struct {
	ProductID   string
	ProductName string
	Quantity    int
	PricePerRun int64
	LineTotal   int64
}

// Breakdown is the priced order. Once produced it is not modified.
type Breakdown struct {
	Window             calendar.Window
	Lines              []LineBreakdown
	Subtotal           int64
	DiscountCode       string
	DiscountPercentage int
	DiscountAmount     int64
	Total              int64
}

// Assemble merges duplicate product lines, re-verifies each against
// RemainingStock for w, prices every line by its per-run price and applies
// the discount when it is valid. Lines keep their first-seen order.
func Assemble(lines []Line, w calendar.Window, current []*reservation.Reservation, disc discount.Result) (*Breakdown, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	merged, err := mergeLines(lines)
	if err != nil {
		return nil, err
	}

	b := &Breakdown{Window: w, Lines: make([]LineBreakdown, 0, len(merged))}
	for _, l := range merged {
		remaining := availability.RemainingStock(l.Product, w, current)
		if l.Quantity > remaining {
			return nil, &OverBookedError{
				ProductID:   l.Product.ID,
				ProductName: l.Product.Name,
				Requested:   l.Quantity,
				Remaining:   remaining,
			}
		}
		lb := LineBreakdown{
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			PricePerRun: l.Product.PricePerTrip,
			LineTotal:   l.Product.PricePerTrip * int64(l.Quantity),
		}
		b.Lines = append(b.Lines, lb)
		b.Subtotal += lb.LineTotal
	}

	if disc.Valid {
		b.DiscountCode = disc.Code
		b.DiscountPercentage = disc.Percentage
		b.DiscountAmount = discount.ComputeDiscount(b.Subtotal, disc.Percentage)
	}
	b.Total = b.Subtotal - b.DiscountAmount
	return b, nil
}

func mergeLines(lines []Line) ([]Line, error) {
	if len(lines) == 0 {
		return nil, ErrNoItems
	}
	index := make(map[string]int, len(lines))
	merged := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Product == nil {
			return nil, ErrUnknownProduct
		}
		if l.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if i, ok := index[l.Product.ID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.Product.ID] = len(merged)
		merged = append(merged, l)
	}
	return merged, nil
}

// Items converts the priced lines into ledger items.
func (b *Breakdown) Items() []reservation.Item {
	items := make([]reservation.Item, 0, len(b.Lines))
	for _, l := range b.Lines {
		items = append(items, reservation.Item{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			PricePerRun: l.PricePerRun,
		})
	}
	return items
}

// ApplyTo copies the amounts onto a reservation about to be written.
func (b *Breakdown) ApplyTo(r *reservation.Reservation) {
	r.Window = b.Window
	r.Items = b.Items()
	r.Subtotal = b.Subtotal
	r.DiscountCode = b.DiscountCode
	r.DiscountPercentage = b.DiscountPercentage
	r.DiscountAmount = b.DiscountAmount
	r.Total = b.Total
}
