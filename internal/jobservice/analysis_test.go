package jobservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reactome/gsa-orchestrator/internal/broker"
	"github.com/reactome/gsa-orchestrator/internal/model"
)

// queueFullNTimesBroker embeds stubBroker and fails PublishAnalysis with
// broker.ErrQueueFull for the first n attempts before succeeding, so
// Admit's bounded-retry loop can be exercised without a real queue.
type queueFullNTimesBroker struct {
	stubBroker
	failuresLeft int
}

func (b *queueFullNTimesBroker) PublishAnalysis(ctx context.Context, msg model.AnalysisMessage) error {
	if b.failuresLeft > 0 {
		b.failuresLeft--
		return broker.ErrQueueFull
	}
	return b.stubBroker.PublishAnalysis(ctx, msg)
}

func TestAnalysisAdmitter_Admit_SeedsAndPublishes(t *testing.T) {
	store := newTestStore()
	br := &stubBroker{}
	admitter := NewAnalysisAdmitter(store, br, 3)

	jobID, err := admitter.Admit(context.Background(), model.AnalysisInput{MethodName: "camera"}, true, false, "")
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	job, err := store.GetJob(context.Background(), jobID)
	require.NoError(t, err)
	require.Equal(t, model.StateRunning, job.State)
}

func TestAnalysisAdmitter_Admit_FailsAfterMaxTries(t *testing.T) {
	store := newTestStore()
	br := &stubBroker{}
	admitter := NewAnalysisAdmitter(store, br, 0)
	admitter.retryDelay = 0

	_, err := admitter.Admit(context.Background(), model.AnalysisInput{MethodName: "camera"}, false, false, "")
	require.Error(t, err)
	var admissionErr *AdmissionError
	require.ErrorAs(t, err, &admissionErr)
}

func TestAnalysisAdmitter_Admit_SurvivesTransientQueueFull(t *testing.T) {
	store := newTestStore()
	br := &queueFullNTimesBroker{failuresLeft: 2}
	admitter := NewAnalysisAdmitter(store, br, 3)
	admitter.retryDelay = 0

	jobID, err := admitter.Admit(context.Background(), model.AnalysisInput{MethodName: "camera"}, false, false, "")
	require.NoError(t, err)
	require.Len(t, br.publishedAnalysis, 1)
	require.Equal(t, jobID, br.publishedAnalysis[0].JobID)
}
