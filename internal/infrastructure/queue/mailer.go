package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/parcel-portal/internal/core/domain"
)

// LogMailer writes messages to the log instead of sending them. It is the
// only mailer the portal ships with.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg domain.Email) error {
	m.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("email sent")
	return nil
}
