// Package notify defines the notification capability used when a job is
// promoted to failed outside of validation, or when a caller asked for an
// e-mail on completion. SPEC_FULL.md scopes actual SMTP delivery out
// (§ Non-goals carries this forward from spec.md); only the interface and
// a logging-only implementation live here so callers have somewhere real
// to plug a Sender in later.
package notify

import (
	"context"

	"github.com/reactome/gsa-orchestrator/internal/logger"
)

// Sender delivers a notification about jobID to recipient. Implementations
// may be no-ops; callers must not assume delivery succeeded.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// LogSender satisfies Sender by writing the notification to the
// structured logger instead of sending e-mail, grounded on the decision
// that SMTP delivery is out of scope for this system.
type LogSender struct{}

func NewLogSender() *LogSender { return &LogSender{} }

func (s *LogSender) Send(ctx context.Context, recipient, subject, body string) error {
	log := logger.FromContext(ctx)
	log.Info().
		Str("recipient", recipient).
		Str("subject", subject).
		Msg(body)
	return nil
}
