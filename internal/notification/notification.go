package notification

import (
	"context"
	"log/slog"
)

const (
	// KindVerificationCode is an outbound SMS carrying a one-time code.
	KindVerificationCode = "verification_code"
)

// Message describes an outbound SMS payload.
type Message struct {
	Kind  string
	Phone string
	Body  string
}

// Notifier delivers messages through an SMS gateway.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes messages to the structured logger instead of a real
// gateway. Default for development; the one-time code shows up in the log.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("sms", "kind", message.Kind, "phone", message.Phone, "body", message.Body)
	return nil
}
