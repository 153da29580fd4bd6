// Package mail renders and delivers the application's outbound email.
package mail

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

const (
	TransportLog  = "log"
	TransportSMTP = "smtp"
	TransportHTTP = "http"
)

var ErrNoRecipient = errors.New("mail recipient missing")

type Message struct {
	ID      string
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, message Message) error
}

// LogSender records messages instead of delivering them.
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "mail").Logger()}
}

func (sender *LogSender) Send(_ context.Context, message Message) error {
	if strings.TrimSpace(message.To) == "" {
		return ErrNoRecipient
	}
	sender.logger.Info().
		Str("message_id", message.ID).
		Str("to", message.To).
		Str("subject", message.Subject).
		Int("html_bytes", len(message.HTML)).
		Msg("email not delivered: log transport")
	return nil
}
