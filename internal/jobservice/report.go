package jobservice

import (
	"context"

	"github.com/reactome/gsa-orchestrator/internal/broker"
	"github.com/reactome/gsa-orchestrator/internal/model"
)

// ArtifactWeight is each artifact kind's contribution to a report job's
// overall progress, per spec.md §4.4.
var ArtifactWeight = map[string]float64{
	model.ArtifactXLSX:  0.3,
	model.ArtifactPDF:   0.6,
	model.ArtifactEmail: 0.1,
}

// ReportTrigger publishes report work items keyed on job_id, grounded on
// Design Note 9's "avoid publishing cycles by keying messages on job_id
// and making artifact writes idempotent."
type ReportTrigger struct {
	br broker.Broker
}

func NewReportTrigger(br broker.Broker) *ReportTrigger {
	return &ReportTrigger{br: br}
}

// Trigger enqueues a report message for jobID listing the requested
// artifact kinds. It is a no-op (returns nil, publishes nothing) when
// kinds is empty, satisfying spec.md §8's "no report message is ever
// enqueued" property for requests that omitted report/notification
// flags.
func (r *ReportTrigger) Trigger(ctx context.Context, jobID string, kinds []string, recipient string) error {
	if len(kinds) == 0 {
		return nil
	}
	return r.br.PublishReport(ctx, model.ReportMessage{JobID: jobID, Kinds: kinds, Recipient: recipient})
}
