//go:build integration

package consumer_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"contactsync/internal/platform/kafka"
	"contactsync/internal/platform/kafka/consumer"
	"contactsync/pkg/testutil/containers"
)

// recorder fails the first delivery of every key listed in failOnce.
type recorder struct {
	mu       sync.Mutex
	seen     []string
	failOnce map[string]bool
}

func (r *recorder) Handle(_ context.Context, msg *consumer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := string(msg.Key)
	r.seen = append(r.seen, key)
	if r.failOnce[key] {
		delete(r.failOnce, key)
		return errors.New("transient")
	}
	return nil
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

func TestConsumerRedeliversFailedRecordInOrder(t *testing.T) {
	broker := containers.NewRedpandaContainer(t).Broker
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	const topic = "legacy.contacts.changes"
	require.NoError(t, kafka.EnsureTopic(ctx, []string{broker}, topic, 1, 1))
	require.NoError(t, kafka.EnsureTopic(ctx, []string{broker}, topic, 1, 1), "existing topic is accepted")

	producer, err := kgo.NewClient(kgo.SeedBrokers(broker), kgo.DefaultProduceTopic(topic))
	require.NoError(t, err)
	defer producer.Close()
	for _, key := range []string{"m-1", "m-2", "m-3"} {
		res := producer.ProduceSync(ctx, &kgo.Record{Key: []byte(key), Value: []byte(`{}`)})
		require.NoError(t, res.FirstErr())
	}

	rec := &recorder{failOnce: map[string]bool{"m-2": true}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := consumer.New(consumer.Config{
		Brokers:      []string{broker},
		Topic:        topic,
		GroupID:      "contactsync-test",
		RetryBackoff: 100 * time.Millisecond,
	}, rec, logger)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(rec.snapshot()) >= 4
	}, 30*time.Second, 100*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	c.Close()

	assert.Equal(t, []string{"m-1", "m-2", "m-2", "m-3"}, rec.snapshot())
}
