package jobservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reactome/gsa-orchestrator/internal/broker"
	"github.com/reactome/gsa-orchestrator/internal/model"
)

// stubBroker is a minimal in-memory broker.Broker fake shared by this
// package's tests: Publish* calls are recorded, Consume* are never
// exercised here (the worker packages cover those) and panic if reached.
type stubBroker struct {
	publishedAnalysis []model.AnalysisMessage
	publishedDataset  []model.DatasetMessage
	published         []model.ReportMessage // reports
}

func (s *stubBroker) PublishAnalysis(ctx context.Context, msg model.AnalysisMessage) error {
	s.publishedAnalysis = append(s.publishedAnalysis, msg)
	return nil
}
func (s *stubBroker) PublishDataset(ctx context.Context, msg model.DatasetMessage) error {
	s.publishedDataset = append(s.publishedDataset, msg)
	return nil
}
func (s *stubBroker) PublishReport(ctx context.Context, msg model.ReportMessage) error {
	s.published = append(s.published, msg)
	return nil
}
func (s *stubBroker) ConsumeAnalysis(ctx context.Context) (*broker.Delivery, model.AnalysisMessage, error) {
	panic("not exercised by jobservice tests")
}
func (s *stubBroker) ConsumeDataset(ctx context.Context) (*broker.Delivery, model.DatasetMessage, error) {
	panic("not exercised by jobservice tests")
}
func (s *stubBroker) ConsumeReport(ctx context.Context) (*broker.Delivery, model.ReportMessage, error) {
	panic("not exercised by jobservice tests")
}
func (s *stubBroker) Shutdown() error { return nil }

func TestReportTrigger_NoOpOnEmptyKinds(t *testing.T) {
	br := &stubBroker{}
	trigger := NewReportTrigger(br)

	require.NoError(t, trigger.Trigger(context.Background(), "Analysis00000001", nil, ""))
	require.Empty(t, br.published)
}

func TestReportTrigger_PublishesRequestedKinds(t *testing.T) {
	br := &stubBroker{}
	trigger := NewReportTrigger(br)

	err := trigger.Trigger(context.Background(), "Analysis00000001", []string{model.ArtifactXLSX, model.ArtifactEmail}, "a@example.org")
	require.NoError(t, err)
	require.Len(t, br.published, 1)
	require.Equal(t, "Analysis00000001", br.published[0].JobID)
	require.Equal(t, []string{model.ArtifactXLSX, model.ArtifactEmail}, br.published[0].Kinds)
	require.Equal(t, "a@example.org", br.published[0].Recipient)
}

func TestArtifactWeight_SumsToOne(t *testing.T) {
	var total float64
	for _, w := range ArtifactWeight {
		total += w
	}
	require.InDelta(t, 1.0, total, 1e-9)
}
