package reportgenerator

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

type stubBroker struct{}

func (stubBroker) PublishAnalysis(ctx context.Context, msg model.AnalysisMessage) error { return nil }
func (stubBroker) PublishDataset(ctx context.Context, msg model.DatasetMessage) error   { return nil }
func (stubBroker) PublishReport(ctx context.Context, msg model.ReportMessage) error     { return nil }
func (stubBroker) ConsumeAnalysis(ctx context.Context) (*broker.Delivery, model.AnalysisMessage, error) {
	<-ctx.Done()
	return nil, model.AnalysisMessage{}, ctx.Err()
}
func (stubBroker) ConsumeDataset(ctx context.Context) (*broker.Delivery, model.DatasetMessage, error) {
	<-ctx.Done()
	return nil, model.DatasetMessage{}, ctx.Err()
}
func (stubBroker) ConsumeReport(ctx context.Context) (*broker.Delivery, model.ReportMessage, error) {
	<-ctx.Done()
	return nil, model.ReportMessage{}, ctx.Err()
}
func (stubBroker) Shutdown() error { return nil }

type stubSender struct {
	mu  sync.Mutex
	to  []string
	err error
}

func (s *stubSender) Send(ctx context.Context, recipient, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.to = append(s.to, recipient)
	return s.err
}

func ackingDelivery() (*broker.Delivery, *bool) {
	acked := new(bool)
	return broker.NewDelivery(1, func() error { *acked = true; return nil }, func() error { return nil }), acked
}

func newTestWorker(t *testing.T) (*Worker, *jobservice.Store, *stubSender) {
	t.Helper()
	bb := bbfreecache.New(&config.FreeCacheConfig{SIZE_BYTES: 1024 * 1024, TTL: 60})
	store := jobservice.NewStore(bb, newMemStorage(), time.Minute, time.Minute, time.Minute)
	sender := &stubSender{}
	w := New(store, stubBroker{}, sender)
	return w, store, sender
}

func seedCompletedAnalysis(t *testing.T, store *jobservice.Store, jobID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SeedJob(ctx, model.Job{ID: jobID, Kind: model.KindAnalysis, State: model.StateComplete, Progress: 1.0}))
	result := model.AnalysisResult{Release: "90", Results: map[string]string{"ds1": "Pathway\tDirection\tFDR\tPValue\nCell Cycle\tup\t0.01\t0.001\n"}}
	data, err := json.Marshal(result)
	require.NoError(t, err)
	require.NoError(t, store.PutResult(ctx, jobID, data))
}

func TestWorker_Handle_ProducesAllRequestedArtifacts(t *testing.T) {
	w, store, sender := newTestWorker(t)
	ctx := context.Background()
	seedCompletedAnalysis(t, store, "Analysis00000001")

	delivery, acked := ackingDelivery()
	msg := model.ReportMessage{JobID: "Analysis00000001", Kinds: []string{model.ArtifactXLSX, model.ArtifactPDF, model.ArtifactEmail}, Recipient: "a@example.org"}
	w.handle(ctx, delivery, msg)

	require.True(t, *acked)

	got, err := store.GetReportJob(ctx, "Analysis00000001")
	require.NoError(t, err)
	require.Equal(t, model.StateComplete, got.State)
	require.Equal(t, 1.0, got.Progress)
	require.Len(t, got.Reports, 2) // xlsx + pdf; email produces no artifact record
	require.Equal(t, []string{"a@example.org"}, sender.to)

	xlsx, err := store.GetReportArtifact(ctx, "Analysis00000001", "XLSX")
	require.NoError(t, err)
	require.NotEmpty(t, xlsx)
}

func TestWorker_Handle_FailsClosedWhenAnalysisNotComplete(t *testing.T) {
	w, store, _ := newTestWorker(t)
	ctx := context.Background()
	require.NoError(t, store.SeedJob(ctx, model.Job{ID: "Analysis00000002", Kind: model.KindAnalysis, State: model.StateRunning}))

	delivery, acked := ackingDelivery()
	msg := model.ReportMessage{JobID: "Analysis00000002", Kinds: []string{model.ArtifactXLSX}}
	w.handle(ctx, delivery, msg)

	require.True(t, *acked)
	got, err := store.GetReportJob(ctx, "Analysis00000002")
	require.NoError(t, err)
	require.Equal(t, model.StateFailed, got.State)
}

func TestWorker_Handle_RedeliveryOfTerminalReportIsNoOp(t *testing.T) {
	w, store, sender := newTestWorker(t)
	ctx := context.Background()
	seedCompletedAnalysis(t, store, "Analysis00000003")

	require.NoError(t, store.SeedReportJob(ctx, model.Job{ID: "Analysis00000003", Kind: model.KindReport, State: model.StateComplete, Progress: 1.0}))

	delivery, acked := ackingDelivery()
	msg := model.ReportMessage{JobID: "Analysis00000003", Kinds: []string{model.ArtifactEmail}, Recipient: "b@example.org"}
	w.handle(ctx, delivery, msg)

	require.True(t, *acked)
	require.Empty(t, sender.to)
}

func TestWorker_Handle_FailsExistingReportWhenResultUnreadable(t *testing.T) {
	w, store, _ := newTestWorker(t)
	ctx := context.Background()

	// Analysis job is complete but its result was never written (or has
	// already expired), so GetResult fails after the report job has
	// already been seeded running.
	require.NoError(t, store.SeedJob(ctx, model.Job{ID: "Analysis00000005", Kind: model.KindAnalysis, State: model.StateComplete, Progress: 1.0}))

	delivery, acked := ackingDelivery()
	msg := model.ReportMessage{JobID: "Analysis00000005", Kinds: []string{model.ArtifactXLSX}}
	w.handle(ctx, delivery, msg)

	require.True(t, *acked)
	got, err := store.GetReportJob(ctx, "Analysis00000005")
	require.NoError(t, err)
	require.Equal(t, model.StateFailed, got.State)
	require.Equal(t, 1.0, got.Progress)
	require.NotEmpty(t, got.Error)
}

func TestWorker_Handle_PartialFailureKeepsSuccessfulArtifacts(t *testing.T) {
	w, store, sender := newTestWorker(t)
	ctx := context.Background()
	seedCompletedAnalysis(t, store, "Analysis00000004")
	sender.err = errors.New("sending failed")

	delivery, acked := ackingDelivery()
	msg := model.ReportMessage{JobID: "Analysis00000004", Kinds: []string{model.ArtifactXLSX, model.ArtifactEmail}, Recipient: "c@example.org"}
	w.handle(ctx, delivery, msg)

	require.True(t, *acked)
	got, err := store.GetReportJob(ctx, "Analysis00000004")
	require.NoError(t, err)
	require.Equal(t, model.StateComplete, got.State)
	require.Len(t, got.Reports, 1)
	require.Equal(t, "XLSX", got.Reports[0].Name)
	require.Contains(t, got.Description, "email")
}
