package email

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Sender delivers one message. Implementations must honour ctx cancellation
// where the transport allows it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Message struct {
	From     string
	FromName string
	To       string
	Subject  string
	HTML     string
	Text     string
	// Category is a provider-side tag used for delivery analytics.
	Category string
}

// LogSender writes messages to the log instead of delivering them.
// Used when no mail transport is configured.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (LogSender) Send(_ context.Context, msg Message) error {
	log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("category", msg.Category).
		Msg("email not delivered: no mail transport configured")
	return nil
}
