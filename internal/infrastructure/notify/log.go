package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes the message to the application log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Notify(_ context.Context, msg Message) error {
	n.logger.Info("order notification",
		zap.String("event", msg.Event),
		zap.String("order_code", msg.OrderCode),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
