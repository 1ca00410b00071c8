// Package datasetloader implements the state machine from spec.md §4.3:
// queued -> fetching -> converting -> indexing -> complete, writing the
// resulting ExternalData record and caching resource+parameter lookups
// for idempotent re-loads.
package datasetloader

import (
	"context"
	"errors"
	"time"

	"github.com/reactome/gsa-orchestrator/internal/broker"
	"github.com/reactome/gsa-orchestrator/internal/datasource"
	"github.com/reactome/gsa-orchestrator/internal/jobservice"
	"github.com/reactome/gsa-orchestrator/internal/logger"
	"github.com/reactome/gsa-orchestrator/internal/model"
	"github.com/reactome/gsa-orchestrator/internal/notify"
)

type Worker struct {
	store    *jobservice.Store
	br       broker.Broker
	admit    *jobservice.DatasetAdmitter
	maxTries int
	sender   notify.Sender
	mailTo   string
}

func New(store *jobservice.Store, br broker.Broker, admit *jobservice.DatasetAdmitter, maxTries int, sender notify.Sender, mailTo string) *Worker {
	return &Worker{store: store, br: br, admit: admit, maxTries: maxTries, sender: sender, mailTo: mailTo}
}

func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		delivery, msg, err := w.br.ConsumeDataset(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Log.Error().Err(err).Msg("datasetloader: consume failed")
			time.Sleep(time.Second)
			continue
		}

		w.handle(ctx, delivery, msg)
	}
}

func (w *Worker) handle(ctx context.Context, delivery *broker.Delivery, msg model.DatasetMessage) {
	loadID := msg.LoadID

	job, err := w.store.GetJob(ctx, loadID)
	if err == nil && job.Terminal() {
		_ = delivery.Ack()
		return
	}

	setStage := func(stage string) error {
		_, err := w.store.UpdateJob(ctx, loadID, func(j *model.Job) error {
			j.Description = stage
			return nil
		})
		return err
	}

	if err := setStage("fetching"); err != nil {
		logger.Log.Error().Err(err).Str("load_id", loadID).Msg("datasetloader: failed to mark fetching")
		return
	}

	sourceID := datasource.ParamValue(msg.Parameters, "source", "example_bundle")
	loader, err := datasource.Lookup(sourceID)
	if err != nil {
		w.fail(ctx, loadID, err, delivery)
		return
	}

	ds, fetchErr := w.fetchWithRetry(ctx, loader, msg.ResourceID, msg.Parameters)
	if fetchErr != nil {
		w.fail(ctx, loadID, fetchErr, delivery)
		return
	}

	if err := setStage("converting"); err != nil {
		logger.Log.Error().Err(err).Str("load_id", loadID).Msg("datasetloader: failed to mark converting")
		return
	}

	datasetID := msg.ResourceID
	ds.ID = datasetID
	if err := w.store.PutDataset(ctx, ds); err != nil {
		logger.Log.Error().Err(err).Str("load_id", loadID).Msg("datasetloader: writing dataset")
		return
	}

	if err := setStage("indexing"); err != nil {
		logger.Log.Error().Err(err).Str("load_id", loadID).Msg("datasetloader: failed to mark indexing")
		return
	}

	if err := w.admit.CacheLoad(ctx, msg.ResourceID, msg.Parameters, datasetID); err != nil {
		logger.Log.Error().Err(err).Str("load_id", loadID).Msg("datasetloader: caching idempotence key")
	}

	if _, err := w.store.UpdateJob(ctx, loadID, func(j *model.Job) error {
		j.State = model.StateComplete
		j.Progress = 1.0
		j.Description = "complete"
		j.DatasetID = datasetID
		return nil
	}); err != nil {
		logger.Log.Error().Err(err).Str("load_id", loadID).Msg("datasetloader: failed to mark complete")
		return
	}

	_ = delivery.Ack()
}

// fetchWithRetry retries a DataSourceError up to w.maxTries times with a
// short bounded backoff, per spec.md §7.
func (w *Worker) fetchWithRetry(ctx context.Context, loader datasource.Loader, resourceID string, params []model.Parameter) (model.ExternalData, error) {
	var lastErr error
	tries := w.maxTries
	if tries <= 0 {
		tries = 3
	}
	for attempt := 1; attempt <= tries; attempt++ {
		ds, err := loader.Fetch(ctx, resourceID, params)
		if err == nil {
			return ds, nil
		}
		var dsErr *jobservice.DataSourceError
		if !errors.As(err, &dsErr) {
			return model.ExternalData{}, err
		}
		lastErr = err
		if attempt < tries {
			select {
			case <-ctx.Done():
				return model.ExternalData{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}
	return model.ExternalData{}, lastErr
}

func (w *Worker) fail(ctx context.Context, loadID string, cause error, delivery *broker.Delivery) {
	reason := cause.Error()
	if _, err := w.store.UpdateJob(ctx, loadID, func(j *model.Job) error {
		j.State = model.StateFailed
		j.Error = reason
		j.Description = reason
		return nil
	}); err != nil {
		logger.Log.Error().Err(err).Str("load_id", loadID).Msg("datasetloader: failed to mark failed")
		return
	}
	jobservice.NotifyOperatorFailure(ctx, w.sender, w.mailTo, loadID, cause)
	_ = delivery.Ack()
}
