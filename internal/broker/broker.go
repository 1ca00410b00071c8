// Package broker defines the work-dispatch capability described in
// spec.md §2: three logical queues (analysis, report, dataset), each with
// a hard max length and acknowledged, redelivery-bounded delivery.
package broker

import (
	"context"

	"github.com/reactome/gsa-orchestrator/internal/model"
)

// Delivery wraps one received message with its acknowledgement handles.
// A worker that crashes or errors before calling Ack leaves the message
// for the Broker's own redelivery machinery (bounded by its
// delivery-count limit, per spec.md §5).
type Delivery struct {
	// DeliveryCount is how many times the Broker has attempted to deliver
	// this message, starting at 1.
	DeliveryCount int

	ack  func() error
	nack func() error
}

// Ack acknowledges successful (or terminally failed, non-retryable)
// processing.
func (d *Delivery) Ack() error { return d.ack() }

// Nack asks the Broker to redeliver the message, subject to its
// delivery-count limit.
func (d *Delivery) Nack() error { return d.nack() }

// NewDelivery constructs a Delivery; used by broker backends.
func NewDelivery(deliveryCount int, ack, nack func() error) *Delivery {
	return &Delivery{DeliveryCount: deliveryCount, ack: ack, nack: nack}
}

// ErrQueueFull is returned by Publish* when the target queue is at its
// configured ceiling (spec.md §5, "Backpressure").
var ErrQueueFull = errQueueFull{}

type errQueueFull struct{}

func (errQueueFull) Error() string { return "broker: queue length ceiling reached" }

// Broker is the capability consumed by the API (publish side) and by the
// three worker roles (consume side).
type Broker interface {
	PublishAnalysis(ctx context.Context, msg model.AnalysisMessage) error
	PublishDataset(ctx context.Context, msg model.DatasetMessage) error
	PublishReport(ctx context.Context, msg model.ReportMessage) error

	// ConsumeAnalysis blocks, with prefetch=1, until one message is
	// available or ctx is done.
	ConsumeAnalysis(ctx context.Context) (*Delivery, model.AnalysisMessage, error)
	ConsumeDataset(ctx context.Context) (*Delivery, model.DatasetMessage, error)
	ConsumeReport(ctx context.Context) (*Delivery, model.ReportMessage, error)

	Shutdown() error
}
