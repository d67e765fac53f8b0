package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogMailer records notifications in the structured log instead of delivering
// email. It stands in for the real mail collaborator in development and in
// environments without an SMTP relay.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info().
		Str("template", msg.Template).
		Str("recipient", msg.Recipient).
		Strs("args", msg.Args).
		Msg("notification dispatched")
	return nil
}
