package application

import (
	"context"

	"github.com/sanosuguru/go-gear-rental/internal/infrastructure/notify"
	"github.com/sanosuguru/go-gear-rental/internal/infrastructure/payment"
)

// Notifier delivers order notifications.
type Notifier interface {
	Notify(ctx context.Context, msg notify.Message) error
}

// PaymentGateway opens a hosted payment session. A nil session with a nil
// error means no payment step is configured.
type PaymentGateway interface {
	CreateSession(ctx context.Context, req payment.ChargeRequest) (*payment.Session, error)
}
