package reservation

import (
	"strings"
	"time"

	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
)

// Customer holds the identity fields captured at checkout. The booking core
// treats them as opaque.
type Customer struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Notes   string
}

// HasContact reports whether contact is the customer's email (any case) or
// phone. Phones compare by digits, with a leading 0 read as the 62 country code.
func (c Customer) HasContact(contact string) bool {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return false
	}
	if email := strings.TrimSpace(c.Email); email != "" && strings.EqualFold(email, contact) {
		return true
	}
	phone := phoneDigits(c.Phone)
	return phone != "" && phone == phoneDigits(contact)
}

func phoneDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if strings.HasPrefix(d, "0") {
		d = "62" + d[1:]
	}
	return d
}

// Item is one booked product line. PricePerRun is the price snapshot taken at
// booking time.
type Item struct {
	ID          string
	ProductID   string
	ProductName string
	Quantity    int
	PricePerRun int64
}

// LineTotal is PricePerRun * Quantity.
func (i Item) LineTotal() int64 {
	return i.PricePerRun * int64(i.Quantity)
}

// Payment holds the gateway session and the latest gateway-reported state.
type Payment struct {
	Token         string
	RedirectURL   string
	Status        string
	TransactionID string
	PaidAt        *time.Time
}

// Reservation is a booking. Items and Window are fixed at creation; only
// Status and Payment change afterwards.
type Reservation struct {
	ID                 string
	OrderCode          string
	Customer           Customer
	Window             calendar.Window
	Items              []Item
	Status             Status
	Subtotal           int64
	DiscountCode       string
	DiscountPercentage int
	DiscountAmount     int64
	Total              int64
	IdempotencyKey     string
	Payment            Payment
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewReservation creates a pending reservation.
func NewReservation(orderCode string, customer Customer, window calendar.Window, items []Item, idempotencyKey string) *Reservation {
	now := time.Now()
	return &Reservation{
		OrderCode:      orderCode,
		Customer:       customer,
		Window:         window,
		Items:          items,
		Status:         StatusPending,
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// QuantityOf sums the quantity booked for productID.
func (r *Reservation) QuantityOf(productID string) int {
	total := 0
	for _, it := range r.Items {
		if it.ProductID == productID {
			total += it.Quantity
		}
	}
	return total
}

// ProductIDs returns the distinct products on the reservation.
func (r *Reservation) ProductIDs() []string {
	seen := make(map[string]struct{}, len(r.Items))
	ids := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}

// SetStatus moves the reservation to s. Any canonical status is accepted;
// admin tooling is allowed to correct mistakes in either direction.
func (r *Reservation) SetStatus(s Status) error {
	if !s.IsValid() {
		return ErrInvalidStatus
	}
	r.Status = s
	r.UpdatedAt = time.Now()
	return nil
}

// IsPending reports whether the reservation still awaits payment.
func (r *Reservation) IsPending() bool {
	return r.Status == StatusPending
}

// IsExpired reports whether a pending reservation has been waiting longer than ttl.
func (r *Reservation) IsExpired(now time.Time, ttl time.Duration) bool {
	return r.IsPending() && now.Sub(r.CreatedAt) > ttl
}

// Validate checks the invariants of a reservation about to be written.
func (r *Reservation) Validate() error {
	if strings.TrimSpace(r.OrderCode) == "" {
		return ErrOrderCodeRequired
	}
	if strings.TrimSpace(r.Customer.Name) == "" {
		return ErrCustomerNameRequired
	}
	if strings.TrimSpace(r.Customer.Email) == "" && strings.TrimSpace(r.Customer.Phone) == "" {
		return ErrCustomerContactRequired
	}
	if err := r.Window.Validate(); err != nil {
		return err
	}
	if len(r.Items) == 0 {
		return ErrItemsRequired
	}
	for _, it := range r.Items {
		if it.ProductID == "" {
			return ErrProductIDRequired
		}
		if it.Quantity < 1 {
			return ErrInvalidQuantity
		}
		if it.PricePerRun < 0 {
			return ErrNegativeAmount
		}
	}
	if r.Subtotal < 0 || r.DiscountAmount < 0 || r.Total < 0 {
		return ErrNegativeAmount
	}
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Expire cancels a pending reservation whose payment never arrived.
func (r *Reservation) Expire() error {
	if !r.IsPending() {
		return ErrReservationNotPending
	}
	r.Status = StatusCancelled
	r.Payment.Status = string(PaymentExpired)
	r.UpdatedAt = time.Now()
	return nil
}
