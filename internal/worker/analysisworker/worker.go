// Package analysisworker implements the pull loop described in spec.md
// §4.2: one message at a time, manual acknowledgement, kernel dispatch by
// method_name, rate-limited progress, and the report-trigger handoff on
// success.
package analysisworker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/reactome/gsa-orchestrator/internal/broker"
	"github.com/reactome/gsa-orchestrator/internal/jobservice"
	"github.com/reactome/gsa-orchestrator/internal/kernel"
	"github.com/reactome/gsa-orchestrator/internal/logger"
	"github.com/reactome/gsa-orchestrator/internal/model"
	"github.com/reactome/gsa-orchestrator/internal/notify"
)

// Worker pulls from the analysis queue and runs the inner statistical
// kernel the request named.
type Worker struct {
	store         *jobservice.Store
	br            broker.Broker
	reportTrigger *jobservice.ReportTrigger
	progressEvery time.Duration
	release       string
	sender        notify.Sender
	mailTo        string
}

func New(store *jobservice.Store, br broker.Broker, reportTrigger *jobservice.ReportTrigger, progressEvery time.Duration, release string, sender notify.Sender, mailTo string) *Worker {
	return &Worker{store: store, br: br, reportTrigger: reportTrigger, progressEvery: progressEvery, release: release, sender: sender, mailTo: mailTo}
}

// Run blocks, processing one message at a time (prefetch=1, per spec.md
// §5) until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		delivery, msg, err := w.br.ConsumeAnalysis(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Log.Error().Err(err).Msg("analysisworker: consume failed")
			time.Sleep(time.Second)
			continue
		}

		w.handle(ctx, delivery, msg)
	}
}

func (w *Worker) handle(ctx context.Context, delivery *broker.Delivery, msg model.AnalysisMessage) {
	jobID := msg.JobID

	job, err := w.store.GetJob(ctx, jobID)
	if err == nil && job.Terminal() {
		// Stale redelivery of an already-finished job.
		_ = delivery.Ack()
		return
	}

	if _, err := w.store.UpdateJob(ctx, jobID, func(j *model.Job) error {
		j.Description = "Starting analysis"
		return nil
	}); err != nil {
		// Blackboard is unreachable; leave unacknowledged for redelivery.
		logger.Log.Error().Err(err).Str("job_id", jobID).Msg("analysisworker: failed to mark starting")
		return
	}

	limiter := jobservice.NewProgressLimiter(w.progressEvery, func(ctx context.Context, fraction float64, message string) error {
		_, err := w.store.UpdateJob(ctx, jobID, func(j *model.Job) error {
			if fraction > j.Progress {
				j.Progress = fraction
			}
			j.Description = message
			return nil
		})
		return err
	})

	result, kernelErr := w.runAnalysis(ctx, msg.Input, limiter)
	if kernelErr != nil {
		if _, err := w.store.UpdateJob(ctx, jobID, func(j *model.Job) error {
			j.State = model.StateFailed
			j.Error = kernelErr.Error()
			j.Description = kernelErr.Error()
			return nil
		}); err != nil {
			logger.Log.Error().Err(err).Str("job_id", jobID).Msg("analysisworker: failed to mark failed")
			return
		}
		jobservice.NotifyOperatorFailure(ctx, w.sender, w.mailTo, jobID, kernelErr)
		_ = delivery.Ack()
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		logger.Log.Error().Err(err).Str("job_id", jobID).Msg("analysisworker: encoding result")
		return
	}
	if err := w.store.PutResult(ctx, jobID, data); err != nil {
		// Infrastructure failure: leave unacknowledged.
		logger.Log.Error().Err(err).Str("job_id", jobID).Msg("analysisworker: writing result")
		return
	}

	if _, err := w.store.UpdateJob(ctx, jobID, func(j *model.Job) error {
		j.State = model.StateComplete
		j.Progress = 1.0
		j.Description = "complete"
		return nil
	}); err != nil {
		logger.Log.Error().Err(err).Str("job_id", jobID).Msg("analysisworker: failed to mark complete")
		return
	}

	if msg.WantReport || msg.WantEmail {
		kinds := make([]string, 0, 2)
		if msg.WantReport {
			kinds = append(kinds, model.ArtifactXLSX, model.ArtifactPDF)
		}
		if msg.WantEmail {
			kinds = append(kinds, model.ArtifactEmail)
		}
		if err := w.reportTrigger.Trigger(ctx, jobID, kinds, msg.Recipient); err != nil {
			logger.Log.Error().Err(err).Str("job_id", jobID).Msg("analysisworker: triggering report")
		}
	}

	_ = delivery.Ack()
}

// runAnalysis dispatches to the named kernel for every dataset in input,
// merging analysis-level and per-dataset parameters per spec.md §4.2's
// scope rules, and assembles the combined AnalysisResult.
func (w *Worker) runAnalysis(ctx context.Context, input model.AnalysisInput, limiter *jobservice.ProgressLimiter) (model.AnalysisResult, error) {
	k, err := kernel.Lookup(input.MethodName)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	if err := k.LoadLibraries(); err != nil {
		return model.AnalysisResult{}, fmt.Errorf("loading libraries for %s: %w", input.MethodName, err)
	}

	result := model.AnalysisResult{
		Release:     w.release,
		Results:     map[string]string{},
		FoldChanges: map[string]string{},
	}

	total := len(input.Datasets)
	for i, ds := range input.Datasets {
		params := mergeParams(input.Parameters, ds.Parameters)

		prepared, err := k.Prepare(ds.Data, ds.Design, ds.Type, params)
		if err != nil {
			return model.AnalysisResult{}, fmt.Errorf("dataset %q: %w", ds.Name, err)
		}

		datasetIndex := i
		table, err := k.Process(prepared, func(fraction float64, message string) {
			overall := (float64(datasetIndex) + fraction) / float64(total)
			limiter.Report(ctx, overall, fmt.Sprintf("%s: %s", ds.Name, message))
		})
		if err != nil {
			return model.AnalysisResult{}, fmt.Errorf("dataset %q: %w", ds.Name, err)
		}
		result.Results[ds.Name] = table

		if fc, err := k.GeneFoldChanges(prepared); err == nil && fc != "" {
			result.FoldChanges[ds.Name] = fc
		}
	}

	return result, nil
}

// mergeParams applies dataset-scoped analysis-level parameters as
// defaults, overridden by any per-dataset parameter of the same name, per
// spec.md §4.2.
func mergeParams(analysisParams, datasetParams []model.Parameter) map[string]string {
	merged := make(map[string]string, len(analysisParams)+len(datasetParams))
	for _, p := range analysisParams {
		merged[p.Name] = p.Value
	}
	for _, p := range datasetParams {
		merged[p.Name] = p.Value
	}
	return merged
}
