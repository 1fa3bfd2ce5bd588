// Package cart holds the per-session shopping cart: the chosen rental start
// date, product quantities and an optional discount code. It is loaded and
// saved explicitly at request boundaries.
package cart

import (
	"strings"
	"time"

	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/discount"
)

// Item is a product and quantity in the cart.
type Item struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart is the session aggregate passed through checkout.
type Cart struct {
	SessionID    string     `json:"session_id"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	Items        []Item     `json:"items"`
	DiscountCode string     `json:"discount_code,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// New returns an empty cart for sessionID.
func New(sessionID string) (*Cart, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrSessionRequired
	}
	return &Cart{SessionID: sessionID, Items: []Item{}, UpdatedAt: time.Now()}, nil
}

// SetStartDate stores the rental start date after applying the start-day rules.
func (c *Cart) SetStartDate(d, today time.Time) error {
	if err := calendar.ValidateStartDate(d, today); err != nil {
		return err
	}
	start := calendar.Date(d)
	c.StartDate = &start
	c.touch()
	return nil
}

// Window derives the rental run from the start date.
func (c *Cart) Window() (calendar.Window, error) {
	if c.StartDate == nil {
		return calendar.Window{}, ErrStartDateRequired
	}
	return calendar.DeriveWindow(*c.StartDate), nil
}

// Add increases the quantity of productID, adding a line if needed.
func (c *Cart) Add(productID string, qty int) error {
	if productID == "" {
		return ErrProductIDRequired
	}
	if qty < 1 {
		return ErrInvalidQuantity
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += qty
			c.touch()
			return nil
		}
	}
	c.Items = append(c.Items, Item{ProductID: productID, Quantity: qty})
	c.touch()
	return nil
}

// SetQuantity replaces the quantity of a line. Zero removes it.
func (c *Cart) SetQuantity(productID string, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	if qty == 0 {
		return c.Remove(productID)
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = qty
			c.touch()
			return nil
		}
	}
	return c.Add(productID, qty)
}

// Remove drops a line.
func (c *Cart) Remove(productID string) error {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.touch()
			return nil
		}
	}
	return ErrItemNotInCart
}

// ApplyDiscountCode stores a normalised code; validation happens at checkout.
func (c *Cart) ApplyDiscountCode(code string) {
	c.DiscountCode = discount.Normalize(code)
	c.touch()
}

// Clear empties the cart but keeps the session.
func (c *Cart) Clear() {
	c.Items = []Item{}
	c.StartDate = nil
	c.DiscountCode = ""
	c.touch()
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ProductIDs lists the products in the cart.
func (c *Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

// ReadyForCheckout reports the first reason the cart cannot be checked out.
func (c *Cart) ReadyForCheckout() error {
	if c.IsEmpty() {
		return ErrEmptyCart
	}
	if c.StartDate == nil {
		return ErrStartDateRequired
	}
	return nil
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now()
}
