package reservation

import "time"

// PaymentOutcome is the gateway-reported result of a payment session,
// normalised by the webhook handler.
type PaymentOutcome string

const (
	PaymentSettled PaymentOutcome = "settled"
	PaymentWaiting PaymentOutcome = "waiting"
	PaymentFailed  PaymentOutcome = "failed"
	PaymentExpired PaymentOutcome = "expired"
)

// ApplyPayment records a gateway notification and performs the out-of-band
// transition it implies: a settled payment activates a pending booking, a
// failed or expired one cancels it. Reservations that already left pending
// keep their status so redelivered notifications are harmless. It reports
// whether the status changed.
func (r *Reservation) ApplyPayment(outcome PaymentOutcome, rawStatus, transactionID string, at time.Time) bool {
	r.Payment.Status = rawStatus
	if transactionID != "" {
		r.Payment.TransactionID = transactionID
	}
	r.UpdatedAt = at

	if !r.IsPending() {
		return false
	}
	switch outcome {
	case PaymentSettled:
		paidAt := at
		r.Payment.PaidAt = &paidAt
		r.Status = StatusActive
		return true
	case PaymentFailed, PaymentExpired:
		r.Status = StatusCancelled
		return true
	}
	return false
}
