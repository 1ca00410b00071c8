package jobservice

import (
	"context"
	"time"

	"github.com/reactome/gsa-orchestrator/internal/broker"
	"github.com/reactome/gsa-orchestrator/internal/model"
)

// AnalysisAdmitter handles POST /analysis admission per spec.md §4.1
// steps 3-6.
type AnalysisAdmitter struct {
	store           *Store
	br              broker.Broker
	maxMessageTries int
	retryDelay      time.Duration
}

func NewAnalysisAdmitter(store *Store, br broker.Broker, maxMessageTries int) *AnalysisAdmitter {
	return &AnalysisAdmitter{store: store, br: br, maxMessageTries: maxMessageTries, retryDelay: time.Second}
}

// Admit allocates a job id, seeds its status record, and publishes the
// validated AnalysisInput to the analysis queue. Returns *AdmissionError
// if the Broker will not accept the message after MAX_MESSAGE_TRIES.
func (a *AnalysisAdmitter) Admit(ctx context.Context, input model.AnalysisInput, wantReport, wantEmail bool, recipient string) (string, error) {
	jobID, err := a.store.NextID(ctx, "analysis", "Analysis")
	if err != nil {
		return "", err
	}

	if err := a.store.SeedJob(ctx, model.Job{
		ID:          jobID,
		Kind:        model.KindAnalysis,
		CreatedAt:   now(),
		State:       model.StateRunning,
		Progress:    0,
		Description: "queued",
	}); err != nil {
		return "", err
	}

	input.JobID = jobID
	msg := model.AnalysisMessage{
		JobID:       jobID,
		Input:       input,
		MaxAttempts: a.maxMessageTries,
		WantReport:  wantReport,
		WantEmail:   wantEmail,
		Recipient:   recipient,
	}

	var publishErr error
	for attempt := 1; attempt <= a.maxMessageTries; attempt++ {
		publishErr = a.br.PublishAnalysis(ctx, msg)
		if publishErr == nil {
			return jobID, nil
		}
		if publishErr != broker.ErrQueueFull {
			break
		}
		select {
		case <-ctx.Done():
			return "", NewAdmissionError("admission canceled: %v", ctx.Err())
		case <-time.After(a.retryDelay):
		}
	}

	// The seeded "queued" status record is left in place; since no worker
	// will ever receive this job, the stall sweeper will eventually
	// promote it to failed with a timeout description.
	return "", NewAdmissionError("analysis queue unavailable after %d attempts: %v", a.maxMessageTries, publishErr)
}

func now() time.Time { return time.Now() }
