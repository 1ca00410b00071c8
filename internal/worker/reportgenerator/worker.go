// Package reportgenerator implements the pull loop from spec.md §4.4:
// reads a completed analysis result, produces each requested artifact as
// an independently weighted sub-step, and applies the partial-success
// policy on a mix of failures.
package reportgenerator

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/reactome/gsa-orchestrator/internal/broker"
	"github.com/reactome/gsa-orchestrator/internal/jobservice"
	"github.com/reactome/gsa-orchestrator/internal/logger"
	"github.com/reactome/gsa-orchestrator/internal/model"
	"github.com/reactome/gsa-orchestrator/internal/notify"
	"github.com/reactome/gsa-orchestrator/internal/report"
)

type Worker struct {
	store  *jobservice.Store
	br     broker.Broker
	sender notify.Sender
}

func New(store *jobservice.Store, br broker.Broker, sender notify.Sender) *Worker {
	return &Worker{store: store, br: br, sender: sender}
}

func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		delivery, msg, err := w.br.ConsumeReport(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Log.Error().Err(err).Msg("reportgenerator: consume failed")
			time.Sleep(time.Second)
			continue
		}

		w.handle(ctx, delivery, msg)
	}
}

func (w *Worker) handle(ctx context.Context, delivery *broker.Delivery, msg model.ReportMessage) {
	jobID := msg.JobID

	existing, err := w.store.GetReportJob(ctx, jobID)
	if err == nil && existing.Terminal() {
		// Re-delivery of an already-finished report job: idempotent no-op,
		// per spec.md §8.
		_ = delivery.Ack()
		return
	}

	analysisJob, err := w.store.GetJob(ctx, jobID)
	if err != nil || analysisJob.State != model.StateComplete {
		// The invariant from spec.md §3 ("referenced analysis job must
		// already be complete") was violated; this should not happen given
		// the Analysis Worker only triggers reports on its own success, but
		// fail closed rather than reading a nonexistent result.
		w.failReport(ctx, jobID, "referenced analysis job is not complete")
		_ = delivery.Ack()
		return
	}

	if err := w.store.SeedReportJob(ctx, model.Job{
		ID:          jobID,
		Kind:        model.KindReport,
		CreatedAt:   analysisJob.CreatedAt,
		State:       model.StateRunning,
		Progress:    0,
		Description: "generating report",
	}); err != nil {
		logger.Log.Error().Err(err).Str("job_id", jobID).Msg("reportgenerator: seeding report status")
		return
	}

	data, err := w.store.GetResult(ctx, jobID)
	if err != nil {
		w.failExistingReport(ctx, jobID, "failed to read analysis result")
		_ = delivery.Ack()
		return
	}

	var result model.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		w.failExistingReport(ctx, jobID, "failed to decode analysis result")
		_ = delivery.Ack()
		return
	}

	var (
		produced []model.ReportArtifact
		failed   []string
		progress float64
	)

	for _, kind := range msg.Kinds {
		weight := jobservice.ArtifactWeight[kind]
		artifact, err := w.buildArtifact(ctx, jobID, kind, result, msg.Recipient)
		if err != nil {
			logger.Log.Error().Err(err).Str("job_id", jobID).Str("kind", kind).Msg("reportgenerator: artifact failed")
			failed = append(failed, kind)
		} else if artifact.Name != "" {
			produced = append(produced, artifact)
		}
		progress += weight

		if _, err := w.store.UpdateReportJob(ctx, jobID, func(j *model.Job) error {
			if progress > j.Progress {
				j.Progress = progress
			}
			j.Reports = produced
			return nil
		}); err != nil {
			logger.Log.Error().Err(err).Str("job_id", jobID).Msg("reportgenerator: updating progress")
			return
		}
	}

	description := ""
	state := model.StateComplete
	if len(failed) > 0 {
		description = "failed artifacts: " + strings.Join(failed, ", ")
	}
	if len(produced) == 0 && len(failed) > 0 {
		state = model.StateFailed
	}

	if _, err := w.store.UpdateReportJob(ctx, jobID, func(j *model.Job) error {
		j.State = state
		j.Progress = 1.0
		j.Description = description
		j.Reports = produced
		if state == model.StateFailed {
			j.Error = description
		}
		return nil
	}); err != nil {
		logger.Log.Error().Err(err).Str("job_id", jobID).Msg("reportgenerator: marking terminal")
		return
	}

	_ = delivery.Ack()
}

func (w *Worker) buildArtifact(ctx context.Context, jobID, kind string, result model.AnalysisResult, recipient string) (model.ReportArtifact, error) {
	switch kind {
	case model.ArtifactXLSX:
		data, err := report.BuildXLSX(result)
		if err != nil {
			return model.ReportArtifact{}, err
		}
		if err := w.store.PutReportArtifact(ctx, jobID, "XLSX", data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"); err != nil {
			return model.ReportArtifact{}, err
		}
		return model.ReportArtifact{Name: "XLSX", URL: "/0.1/report/" + jobID + "/XLSX", Mimetype: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}, nil

	case model.ArtifactPDF:
		data, err := report.BuildPDF(result)
		if err != nil {
			return model.ReportArtifact{}, err
		}
		if err := w.store.PutReportArtifact(ctx, jobID, "PDF", data, "application/pdf"); err != nil {
			return model.ReportArtifact{}, err
		}
		return model.ReportArtifact{Name: "PDF", URL: "/0.1/report/" + jobID + "/PDF", Mimetype: "application/pdf"}, nil

	case model.ArtifactEmail:
		if recipient == "" {
			return model.ReportArtifact{}, nil
		}
		if err := w.sender.Send(ctx, recipient, "Analysis "+jobID+" complete", "Your GSA analysis has finished."); err != nil {
			return model.ReportArtifact{}, err
		}
		// A sent e-mail has no bytes to stream, so it gets no entry in
		// the report's artifact list.
		return model.ReportArtifact{}, nil
	}
	return model.ReportArtifact{}, nil
}

// failReport marks a report job failed before it has ever been seeded
// running, so SeedReportJob's create-if-absent semantics apply.
func (w *Worker) failReport(ctx context.Context, jobID, reason string) {
	if err := w.store.SeedReportJob(ctx, model.Job{
		ID:          jobID,
		Kind:        model.KindReport,
		State:       model.StateFailed,
		Progress:    1.0,
		Description: reason,
		Error:       reason,
	}); err != nil {
		logger.Log.Error().Err(err).Str("job_id", jobID).Msg("reportgenerator: seeding failed report status")
	}
}

// failExistingReport marks a report job failed after it has already been
// seeded running by this same handler. SeedReportJob would silently no-op
// here since the key already exists, so the transition has to go through
// UpdateReportJob instead.
func (w *Worker) failExistingReport(ctx context.Context, jobID, reason string) {
	if _, err := w.store.UpdateReportJob(ctx, jobID, func(j *model.Job) error {
		j.State = model.StateFailed
		j.Progress = 1.0
		j.Description = reason
		j.Error = reason
		return nil
	}); err != nil {
		logger.Log.Error().Err(err).Str("job_id", jobID).Msg("reportgenerator: marking failed report status")
	}
}
