package application

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sanosuguru/go-gear-rental/internal/domain/calendar"
	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
	"github.com/sanosuguru/go-gear-rental/internal/infrastructure/notify"
)

const (
	EventReservationCreated = "reservation.created"
	EventStatusChanged      = "reservation.status_changed"
)

// FormatOrderSummary renders the plain-text order summary sent to customers
// and admins.
func FormatOrderSummary(r *reservation.Reservation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s\n", r.OrderCode)
	fmt.Fprintf(&b, "Name: %s\n", r.Customer.Name)
	if r.Customer.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", r.Customer.Phone)
	}
	fmt.Fprintf(&b, "Rental: %s to %s (%d days)\n",
		calendar.FormatDate(r.Window.Start), calendar.FormatDate(r.Window.End), r.Window.Days())
	b.WriteString("Items:\n")
	for _, it := range r.Items {
		fmt.Fprintf(&b, "- %s x%d @ %s = %s\n", it.ProductName, it.Quantity, FormatIDR(it.PricePerRun), FormatIDR(it.LineTotal()))
	}
	fmt.Fprintf(&b, "Subtotal: %s\n", FormatIDR(r.Subtotal))
	if r.DiscountCode != "" {
		fmt.Fprintf(&b, "Discount (%s %d%%): -%s\n", r.DiscountCode, r.DiscountPercentage, FormatIDR(r.DiscountAmount))
	}
	fmt.Fprintf(&b, "Total: %s\n", FormatIDR(r.Total))
	fmt.Fprintf(&b, "Status: %s", r.Status)
	if r.Payment.RedirectURL != "" {
		fmt.Fprintf(&b, "\nPay at: %s", r.Payment.RedirectURL)
	}
	return b.String()
}

// FormatIDR renders an amount as "Rp 1.250.000".
func FormatIDR(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var out []byte
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, digits[i])
	}
	return sign + "Rp " + string(out)
}

func orderMessage(event string, r *reservation.Reservation) notify.Message {
	subject := fmt.Sprintf("Rental order %s received", r.OrderCode)
	if event == EventStatusChanged {
		subject = fmt.Sprintf("Rental order %s is now %s", r.OrderCode, r.Status)
	}
	return notify.Message{
		Event:     event,
		OrderCode: r.OrderCode,
		Name:      r.Customer.Name,
		Email:     r.Customer.Email,
		Phone:     r.Customer.Phone,
		Subject:   subject,
		Body:      FormatOrderSummary(r),
	}
}
