// Package consumer runs a Kafka consumer group that hands records to a handler
// one at a time, in partition order. A record is committed only after its
// handler returns nil; on error the partition is rewound so the record is
// delivered again.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is one consumed record.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Handler processes one message. Returning nil commits it.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg *Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *Message) error { return f(ctx, msg) }

type Config struct {
	Brokers      []string
	Topic        string
	GroupID      string
	PollMaxBatch int
	// RetryBackoff is the pause before a failed record is redelivered.
	RetryBackoff time.Duration
}

type Consumer struct {
	client   *kgo.Client
	handler  Handler
	logger   *slog.Logger
	maxBatch int
	backoff  time.Duration
}

// New connects a group consumer for cfg.Topic.
func New(cfg Config, handler Handler, logger *slog.Logger, opts ...kgo.Opt) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if cfg.Topic == "" || cfg.GroupID == "" {
		return nil, errors.New("kafka topic and group id are required")
	}
	if handler == nil {
		return nil, errors.New("handler is required")
	}

	base := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.DisableAutoCommit(),
		kgo.BlockRebalanceOnPoll(),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	c := &Consumer{
		client:   client,
		handler:  handler,
		logger:   logger,
		maxBatch: cfg.PollMaxBatch,
		backoff:  cfg.RetryBackoff,
	}
	if c.maxBatch <= 0 {
		c.maxBatch = 100
	}
	if c.backoff <= 0 {
		c.backoff = time.Second
	}
	return c, nil
}

// Run polls until ctx is cancelled or the client is closed.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		fetches := c.client.PollRecords(ctx, c.maxBatch)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.ErrorContext(ctx, "kafka fetch failed",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		failed := false
		fetches.EachPartition(func(p kgo.FetchTopicPartition) {
			if !c.consumePartition(ctx, p.Records) {
				failed = true
			}
		})
		c.client.AllowRebalance()

		if failed {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.backoff):
			}
		}
	}
}

// consumePartition handles records in order and commits the handled prefix.
// It reports false when a record failed and the partition was rewound to it.
func (c *Consumer) consumePartition(ctx context.Context, records []*kgo.Record) bool {
	handled := make([]*kgo.Record, 0, len(records))
	var failed *kgo.Record
	for _, rec := range records {
		if err := c.handler.Handle(ctx, toMessage(rec)); err != nil {
			c.logger.WarnContext(ctx, "message left for redelivery",
				"topic", rec.Topic,
				"partition", rec.Partition,
				"offset", rec.Offset,
				"key", string(rec.Key),
				"error", err,
			)
			failed = rec
			break
		}
		handled = append(handled, rec)
	}

	if len(handled) > 0 {
		if err := c.client.CommitRecords(ctx, handled...); err != nil {
			c.logger.ErrorContext(ctx, "kafka commit failed", "error", err)
		}
	}
	if failed == nil {
		return true
	}
	c.client.SetOffsets(map[string]map[int32]kgo.EpochOffset{
		failed.Topic: {failed.Partition: {Epoch: failed.LeaderEpoch, Offset: failed.Offset}},
	})
	return false
}

// Close leaves the group and releases the client.
func (c *Consumer) Close() {
	c.client.Close()
}

func toMessage(rec *kgo.Record) *Message {
	headers := make(map[string]string, len(rec.Headers))
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}
	return &Message{
		Topic:     rec.Topic,
		Partition: rec.Partition,
		Offset:    rec.Offset,
		Key:       rec.Key,
		Value:     rec.Value,
		Headers:   headers,
		Timestamp: rec.Timestamp,
	}
}
