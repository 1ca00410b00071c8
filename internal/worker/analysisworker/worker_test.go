package analysisworker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	bbfreecache "github.com/reactome/gsa-orchestrator/internal/blackboard/freecache"
	"github.com/reactome/gsa-orchestrator/internal/broker"
	"github.com/reactome/gsa-orchestrator/internal/config"
	"github.com/reactome/gsa-orchestrator/internal/jobservice"
	"github.com/reactome/gsa-orchestrator/internal/model"
)

var errNotFound = errors.New("memStorage: key not found")

// memStorage is a minimal in-memory storage.Storage, standing in for
// MinIO in tests that only need PutResult/GetResult round trips.
type memStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStorage() *memStorage { return &memStorage{data: map[string][]byte{}} }

func (s *memStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), data...)
	return nil
}
func (s *memStorage) Download(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.data[key]
	if !ok {
		return nil, errNotFound
	}
	return data, nil
}
func (s *memStorage) EnsureBucket(ctx context.Context) error { return nil }
func (s *memStorage) Close() error                           { return nil }

// queueBroker is a fake broker.Broker: PublishReport and PublishDataset
// record their messages, PublishAnalysis discards its message, and every
// Consume* blocks until ctx is canceled (worker tests call handle
// directly, so nothing is ever consumed).
type queueBroker struct {
	mu       sync.Mutex
	reports  []model.ReportMessage
	datasets []model.DatasetMessage
}

func (b *queueBroker) PublishAnalysis(ctx context.Context, msg model.AnalysisMessage) error {
	return nil
}
func (b *queueBroker) PublishDataset(ctx context.Context, msg model.DatasetMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.datasets = append(b.datasets, msg)
	return nil
}
func (b *queueBroker) PublishReport(ctx context.Context, msg model.ReportMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reports = append(b.reports, msg)
	return nil
}
func (b *queueBroker) ConsumeAnalysis(ctx context.Context) (*broker.Delivery, model.AnalysisMessage, error) {
	<-ctx.Done()
	return nil, model.AnalysisMessage{}, ctx.Err()
}
func (b *queueBroker) ConsumeDataset(ctx context.Context) (*broker.Delivery, model.DatasetMessage, error) {
	<-ctx.Done()
	return nil, model.DatasetMessage{}, ctx.Err()
}
func (b *queueBroker) ConsumeReport(ctx context.Context) (*broker.Delivery, model.ReportMessage, error) {
	<-ctx.Done()
	return nil, model.ReportMessage{}, ctx.Err()
}
func (b *queueBroker) Shutdown() error { return nil }

// stubSender is a notify.Sender fake recording every recipient it was
// asked to notify.
type stubSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *stubSender) Send(ctx context.Context, recipient, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, recipient)
	return nil
}

func newTestWorker(t *testing.T) (*Worker, *jobservice.Store, *queueBroker, *stubSender) {
	t.Helper()
	bb := bbfreecache.New(&config.FreeCacheConfig{SIZE_BYTES: 1024 * 1024, TTL: 60})
	store := jobservice.NewStore(bb, newMemStorage(), time.Minute, time.Minute, time.Minute)
	br := &queueBroker{}
	trigger := jobservice.NewReportTrigger(br)
	sender := &stubSender{}
	w := New(store, br, trigger, time.Hour, "90", sender, "ops@example.org")
	return w, store, br, sender
}

func sampleAnalysisInput() model.AnalysisInput {
	design := &model.Design{
		Samples:       []string{"S1", "S2", "S3", "S4"},
		AnalysisGroup: []string{"untreated", "untreated", "treated", "treated"},
	}
	design.Comparison.Group1 = "untreated"
	design.Comparison.Group2 = "treated"

	return model.AnalysisInput{
		MethodName: "Camera",
		Datasets: []model.Dataset{
			{
				Name:   "ds1",
				Type:   model.DatasetRNASeqCounts,
				Data:   "\tS1\tS2\tS3\tS4\nCCNB1\t1.0\t1.1\t5.0\t5.2\n",
				Design: design,
			},
		},
	}
}

func TestWorker_Handle_CompletesOnSuccess(t *testing.T) {
	w, store, br, _ := newTestWorker(t)
	ctx := context.Background()

	job := model.Job{ID: "Analysis00000001", Kind: model.KindAnalysis, State: model.StateRunning}
	require.NoError(t, store.SeedJob(ctx, job))

	delivery, acked := ackingDelivery()
	msg := model.AnalysisMessage{JobID: job.ID, Input: sampleAnalysisInput()}
	w.handle(ctx, delivery, msg)

	require.True(t, *acked)

	got, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, model.StateComplete, got.State)
	require.Equal(t, 1.0, got.Progress)

	data, err := store.GetResult(ctx, job.ID)
	require.NoError(t, err)
	var result model.AnalysisResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.Contains(t, result.Results, "ds1")
	require.Empty(t, br.reports)
}

func TestWorker_Handle_FailsOnUnknownMethod(t *testing.T) {
	w, store, _, sender := newTestWorker(t)
	ctx := context.Background()

	job := model.Job{ID: "Analysis00000001", Kind: model.KindAnalysis, State: model.StateRunning}
	require.NoError(t, store.SeedJob(ctx, job))

	input := sampleAnalysisInput()
	input.MethodName = "NotAMethod"

	delivery, acked := ackingDelivery()
	w.handle(ctx, delivery, model.AnalysisMessage{JobID: job.ID, Input: input})

	require.True(t, *acked)
	got, err := store.GetJob(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, model.StateFailed, got.State)
	require.NotEmpty(t, got.Error)

	require.Equal(t, []string{"ops@example.org"}, sender.sent)
}

func TestWorker_Handle_TriggersReportOnWantReport(t *testing.T) {
	w, store, br, _ := newTestWorker(t)
	ctx := context.Background()

	job := model.Job{ID: "Analysis00000001", Kind: model.KindAnalysis, State: model.StateRunning}
	require.NoError(t, store.SeedJob(ctx, job))

	delivery, _ := ackingDelivery()
	msg := model.AnalysisMessage{JobID: job.ID, Input: sampleAnalysisInput(), WantReport: true}
	w.handle(ctx, delivery, msg)

	require.Len(t, br.reports, 1)
	require.ElementsMatch(t, []string{model.ArtifactXLSX, model.ArtifactPDF}, br.reports[0].Kinds)
}

func TestWorker_Handle_SkipsAlreadyTerminalRedelivery(t *testing.T) {
	w, store, br, _ := newTestWorker(t)
	ctx := context.Background()

	job := model.Job{ID: "Analysis00000001", Kind: model.KindAnalysis, State: model.StateComplete, Progress: 1.0}
	require.NoError(t, store.SeedJob(ctx, job))

	delivery, acked := ackingDelivery()
	w.handle(ctx, delivery, model.AnalysisMessage{JobID: job.ID, Input: sampleAnalysisInput()})

	require.True(t, *acked)
	require.Empty(t, br.reports)
}

func TestMergeParams_DatasetOverridesAnalysis(t *testing.T) {
	analysisParams := []model.Parameter{{Name: "norm_function", Value: "TMM"}}
	datasetParams := []model.Parameter{{Name: "norm_function", Value: "none"}}

	merged := mergeParams(analysisParams, datasetParams)
	require.Equal(t, "none", merged["norm_function"])
}

func ackingDelivery() (*broker.Delivery, *bool) {
	acked := new(bool)
	return broker.NewDelivery(1, func() error { *acked = true; return nil }, func() error { return nil }), acked
}
