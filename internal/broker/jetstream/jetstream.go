// Package jetstream adapts NATS JetStream to the broker.Broker
// capability, grounded on the teacher's internal/queue/jetstream client:
// one stream per logical queue, a durable pull consumer per stream,
// PullSubscribe+Fetch(1) for prefetch=1 consumption, and the same
// infinite-reconnect dial options.
package jetstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/reactome/gsa-orchestrator/internal/broker"
	"github.com/reactome/gsa-orchestrator/internal/config"
	"github.com/reactome/gsa-orchestrator/internal/model"
)

const (
	subjectAnalysis = "jobs.analysis"
	subjectDataset  = "jobs.dataset"
	subjectReport   = "jobs.report"

	streamAnalysis = "ANALYSIS"
	streamDataset  = "DATASET"
	streamReport   = "REPORT"

	consumerDurable = "worker"
)

// Client wraps a JetStream context to satisfy broker.Broker.
type Client struct {
	nc  *nats.Conn
	js  nats.JetStreamContext
	qc  *config.NatsQueueConfig

	subAnalysis *nats.Subscription
	subDataset  *nats.Subscription
	subReport   *nats.Subscription
}

// New connects to the JetStream deployment described by cfg and declares
// the three queues (streams + durable pull consumers).
func New(cfg *config.NatsConfig, qc *config.NatsQueueConfig) (*Client, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	c := &Client{nc: nc, js: js, qc: qc}

	for _, q := range []struct {
		stream  string
		subject string
	}{
		{streamAnalysis, subjectAnalysis},
		{streamDataset, subjectDataset},
		{streamReport, subjectReport},
	} {
		if err := c.declareStream(q.stream, q.subject); err != nil {
			nc.Close()
			return nil, fmt.Errorf("declare stream %s: %w", q.stream, err)
		}
	}

	c.subAnalysis, err = c.pullSubscribe(subjectAnalysis, streamAnalysis)
	if err != nil {
		nc.Close()
		return nil, err
	}
	c.subDataset, err = c.pullSubscribe(subjectDataset, streamDataset)
	if err != nil {
		nc.Close()
		return nil, err
	}
	c.subReport, err = c.pullSubscribe(subjectReport, streamReport)
	if err != nil {
		nc.Close()
		return nil, err
	}

	return c, nil
}

func (c *Client) declareStream(name, subject string) error {
	_, err := c.js.StreamInfo(name)
	if err == nil {
		return nil
	}

	_, err = c.js.AddStream(&nats.StreamConfig{
		Name:     name,
		Subjects: []string{subject},
		MaxMsgs:  int64(c.qc.MaxQueueLength),
		Discard:  nats.DiscardNew,
		Storage:  nats.FileStorage,
	})
	return err
}

func (c *Client) pullSubscribe(subject, stream string) (*nats.Subscription, error) {
	if _, err := c.js.ConsumerInfo(stream, consumerDurable); err != nil {
		_, err := c.js.AddConsumer(stream, &nats.ConsumerConfig{
			Durable:       consumerDurable,
			AckPolicy:     nats.AckExplicitPolicy,
			AckWait:       time.Duration(c.qc.AckWaitSeconds) * time.Second,
			MaxDeliver:    c.qc.MaxDeliver,
			BackOff:       []time.Duration{5 * time.Second, 15 * time.Second, 30 * time.Second},
			DeliverPolicy: nats.DeliverNewPolicy,
		})
		if err != nil {
			return nil, err
		}
	}

	return c.js.PullSubscribe(subject, consumerDurable, nats.BindStream(stream))
}

func publish(js nats.JetStreamContext, subject string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = js.Publish(subject, data, nats.MsgId(msgID(v)))
	if err != nil {
		if isQueueFullError(err) {
			return broker.ErrQueueFull
		}
		return err
	}
	return nil
}

// isQueueFullError recognizes the JetStream "maximum messages exceeded"
// API error returned when a stream configured with DiscardNew is at
// capacity — the JetStream equivalent of the original broker's
// "x-overflow: reject-publish" queue declaration.
func isQueueFullError(err error) bool {
	return strings.Contains(err.Error(), "maximum messages")
}

func msgID(v interface{}) string {
	switch m := v.(type) {
	case model.AnalysisMessage:
		return "analysis:" + m.JobID
	case model.DatasetMessage:
		return "dataset:" + m.LoadID
	case model.ReportMessage:
		return "report:" + m.JobID
	default:
		return ""
	}
}

func (c *Client) PublishAnalysis(ctx context.Context, msg model.AnalysisMessage) error {
	return publish(c.js, subjectAnalysis, msg)
}

func (c *Client) PublishDataset(ctx context.Context, msg model.DatasetMessage) error {
	return publish(c.js, subjectDataset, msg)
}

func (c *Client) PublishReport(ctx context.Context, msg model.ReportMessage) error {
	return publish(c.js, subjectReport, msg)
}

func fetchOne(ctx context.Context, sub *nats.Subscription) (*nats.Msg, error) {
	msgs, err := sub.Fetch(1, nats.MaxWait(30*time.Second), nats.Context(ctx))
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, nats.ErrTimeout
	}
	return msgs[0], nil
}

func toDelivery(msg *nats.Msg) *broker.Delivery {
	meta, _ := msg.Metadata()
	count := 1
	if meta != nil {
		count = int(meta.NumDelivered)
	}
	return broker.NewDelivery(count, func() error { return msg.Ack() }, func() error { return msg.Nak() })
}

func (c *Client) ConsumeAnalysis(ctx context.Context) (*broker.Delivery, model.AnalysisMessage, error) {
	var out model.AnalysisMessage
	msg, err := fetchOne(ctx, c.subAnalysis)
	if err != nil {
		return nil, out, err
	}
	if err := json.Unmarshal(msg.Data, &out); err != nil {
		_ = msg.Nak()
		return nil, out, err
	}
	return toDelivery(msg), out, nil
}

func (c *Client) ConsumeDataset(ctx context.Context) (*broker.Delivery, model.DatasetMessage, error) {
	var out model.DatasetMessage
	msg, err := fetchOne(ctx, c.subDataset)
	if err != nil {
		return nil, out, err
	}
	if err := json.Unmarshal(msg.Data, &out); err != nil {
		_ = msg.Nak()
		return nil, out, err
	}
	return toDelivery(msg), out, nil
}

func (c *Client) ConsumeReport(ctx context.Context) (*broker.Delivery, model.ReportMessage, error) {
	var out model.ReportMessage
	msg, err := fetchOne(ctx, c.subReport)
	if err != nil {
		return nil, out, err
	}
	if err := json.Unmarshal(msg.Data, &out); err != nil {
		_ = msg.Nak()
		return nil, out, err
	}
	return toDelivery(msg), out, nil
}

func (c *Client) Shutdown() error {
	if c.nc != nil {
		c.nc.Drain()
	}
	return nil
}
