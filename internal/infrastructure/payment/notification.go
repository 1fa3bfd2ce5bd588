package payment

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/sanosuguru/go-gear-rental/internal/domain/reservation"
)

// Notification is the provider's asynchronous status callback.
type Notification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	FraudStatus       string `json:"fraud_status"`
}

// Sign computes the notification signature:
// hex(sha512(order_id + status_code + gross_amount + key)).
func Sign(orderID, statusCode, grossAmount, key string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + key))
	return hex.EncodeToString(sum[:])
}

// Verify checks the signature against key.
func (n Notification) Verify(key string) error {
	if key == "" || n.SignatureKey == "" {
		return ErrBadSignature
	}
	want := Sign(n.OrderID, n.StatusCode, n.GrossAmount, key)
	if subtle.ConstantTimeCompare([]byte(want), []byte(strings.ToLower(n.SignatureKey))) != 1 {
		return ErrBadSignature
	}
	return nil
}

// Outcome maps the provider status onto the reservation lifecycle.
func (n Notification) Outcome() reservation.PaymentOutcome {
	switch strings.ToLower(n.TransactionStatus) {
	case "capture":
		if strings.EqualFold(n.FraudStatus, "challenge") {
			return reservation.PaymentWaiting
		}
		return reservation.PaymentSettled
	case "settlement":
		return reservation.PaymentSettled
	case "deny", "cancel", "failure":
		return reservation.PaymentFailed
	case "expire":
		return reservation.PaymentExpired
	default:
		return reservation.PaymentWaiting
	}
}
