// Package notify delivers order notifications over the configured channels.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-gear-rental/internal/config"
	"github.com/sanosuguru/go-gear-rental/internal/pkg/metrics"
)

var ErrUnknownChannel = errors.New("unknown notification channel")

// Message is one order notification. Email and Phone address the customer;
// channels that cannot reach either fall back to the admin address.
type Message struct {
	Event     string `json:"event"`
	OrderCode string `json:"order_code"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// Channel is a single delivery mechanism.
type Channel interface {
	Name() string
	Notify(ctx context.Context, msg Message) error
}

// Multi fans a message out to every channel. A failing channel does not
// stop the others.
type Multi struct {
	channels []Channel
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewMulti(logger *zap.Logger, m *metrics.Metrics, channels ...Channel) *Multi {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Multi{channels: channels, logger: logger, metrics: m}
}

func (n *Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, ch := range n.channels {
		if err := ch.Notify(ctx, msg); err != nil {
			n.logger.Warn("notification failed",
				zap.String("channel", ch.Name()),
				zap.String("order_code", msg.OrderCode),
				zap.Error(err),
			)
			n.metrics.RecordNotification(ch.Name(), "failed")
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		n.metrics.RecordNotification(ch.Name(), "sent")
	}
	return errors.Join(errs...)
}

// Channels lists the channel names in dispatch order.
func (n *Multi) Channels() []string {
	names := make([]string, 0, len(n.channels))
	for _, ch := range n.channels {
		names = append(names, ch.Name())
	}
	return names
}

// Close releases channels holding connections.
func (n *Multi) Close() error {
	var errs []error
	for _, ch := range n.channels {
		if c, ok := ch.(interface{ Close() error }); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// FromConfig builds the fan-out for the configured channel names.
func FromConfig(cfg *config.NotificationConfig, logger *zap.Logger, m *metrics.Metrics) (*Multi, error) {
	var channels []Channel
	for _, name := range cfg.Channels {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "":
			continue
		case "log":
			channels = append(channels, NewLogNotifier(logger))
		case "smtp":
			channels = append(channels, NewSMTPNotifier(cfg.SMTP, cfg.AdminEmail))
		case "sendgrid":
			channels = append(channels, NewSendGridNotifier(cfg.SendGrid, cfg.AdminEmail))
		case "kafka":
			if len(cfg.Kafka.Brokers) == 0 {
				return nil, fmt.Errorf("kafka channel: no brokers configured")
			}
			channels = append(channels, NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
		}
	}
	return NewMulti(logger, m, channels...), nil
}
