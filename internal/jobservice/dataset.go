package jobservice

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/reactome/gsa-orchestrator/internal/blackboard"
	"github.com/reactome/gsa-orchestrator/internal/broker"
	"github.com/reactome/gsa-orchestrator/internal/model"
	"github.com/reactome/gsa-orchestrator/internal/util"
)

// DatasetAdmitter handles POST /data/load/{resource_id} admission per
// spec.md §4.1's analogous dataset-queue contract, and the idempotence
// short-circuit from §4.3, checked here in the admitter before publishing.
type DatasetAdmitter struct {
	store           *Store
	br              broker.Broker
	maxMessageTries int
	retryDelay      time.Duration
	loadTTL         time.Duration
}

func NewDatasetAdmitter(store *Store, br broker.Broker, maxMessageTries int, loadTTL time.Duration) *DatasetAdmitter {
	return &DatasetAdmitter{store: store, br: br, maxMessageTries: maxMessageTries, retryDelay: time.Second, loadTTL: loadTTL}
}

// ParamHash derives a stable key for resource+parameter idempotence
// checks.
func ParamHash(params []model.Parameter) string {
	data, _ := json.Marshal(params)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:16]
}

// Admit allocates a load id, seeds its status, and either short-circuits
// against a cached dataset_id (spec.md §4.3 "Idempotence") or publishes a
// fresh dataset work item.
func (d *DatasetAdmitter) Admit(ctx context.Context, resourceID string, params []model.Parameter) (string, error) {
	loadID, err := d.store.NextID(ctx, "dataset", "DatasetLoad")
	if err != nil {
		return "", err
	}

	cacheKey := util.LoadIdempotenceKey(resourceID, ParamHash(params))
	if cached, err := d.store.bb.Get(ctx, cacheKey); err == nil {
		var datasetID string
		if decodeErr := blackboard.Decode(cached, &datasetID); decodeErr == nil {
			if seedErr := d.store.SeedJob(ctx, model.Job{
				ID:          loadID,
				Kind:        model.KindDataset,
				CreatedAt:   now(),
				State:       model.StateComplete,
				Progress:    1.0,
				Description: "loaded from cache",
				DatasetID:   datasetID,
			}); seedErr != nil {
				return "", seedErr
			}
			return loadID, nil
		}
	}

	if err := d.store.SeedJob(ctx, model.Job{
		ID:          loadID,
		Kind:        model.KindDataset,
		CreatedAt:   now(),
		State:       model.StateRunning,
		Progress:    0,
		Description: "queued",
	}); err != nil {
		return "", err
	}

	msg := model.DatasetMessage{LoadID: loadID, ResourceID: resourceID, Parameters: params}

	var publishErr error
	for attempt := 1; attempt <= d.maxMessageTries; attempt++ {
		publishErr = d.br.PublishDataset(ctx, msg)
		if publishErr == nil {
			return loadID, nil
		}
		if publishErr != broker.ErrQueueFull {
			break
		}
		select {
		case <-ctx.Done():
			return "", NewAdmissionError("admission canceled: %v", ctx.Err())
		case <-time.After(d.retryDelay):
		}
	}

	return "", NewAdmissionError("dataset queue unavailable after %d attempts: %v", d.maxMessageTries, publishErr)
}

// CacheLoad records resourceID+params -> datasetID so a repeat load
// within T_dataset short-circuits (spec.md §4.3).
func (d *DatasetAdmitter) CacheLoad(ctx context.Context, resourceID string, params []model.Parameter, datasetID string) error {
	enc, err := blackboard.Encode(datasetID)
	if err != nil {
		return err
	}
	cacheKey := util.LoadIdempotenceKey(resourceID, ParamHash(params))
	return d.store.bb.Put(ctx, cacheKey, enc, d.loadTTL)
}
