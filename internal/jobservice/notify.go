package jobservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/reactome/gsa-orchestrator/internal/logger"
	"github.com/reactome/gsa-orchestrator/internal/notify"
)

// NotifyOperatorFailure sends an operator-facing notification for a job
// that was just promoted to failed, per spec.md §7. ValidationErrors are
// client-input problems and send nothing; the Dataset Loader passes one
// here for an unknown source or resource. A nil sender or empty mailTo is
// a silent no-op, since MAIL_ERROR_ADDRESS is optional.
func NotifyOperatorFailure(ctx context.Context, sender notify.Sender, mailTo, jobID string, cause error) {
	if sender == nil || mailTo == "" {
		return
	}

	var verr *ValidationError
	if errors.As(cause, &verr) {
		return
	}

	body := jobID
	if cause != nil {
		body = cause.Error()
	}

	if err := sender.Send(ctx, mailTo, fmt.Sprintf("GSA job %s failed", jobID), body); err != nil {
		logger.Log.Error().Err(err).Str("job_id", jobID).Msg("jobservice: operator notification failed")
	}
}
