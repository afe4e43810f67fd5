package consumer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"

	"contactsync/internal/platform/logger"
)

func TestNewValidatesConfig(t *testing.T) {
	log := logger.Discard()
	h := HandlerFunc(func(context.Context, *Message) error { return nil })

	_, err := New(Config{Topic: "t", GroupID: "g"}, h, log)
	assert.ErrorContains(t, err, "brokers are required")

	_, err = New(Config{Brokers: []string{"localhost:9092"}, GroupID: "g"}, h, log)
	assert.ErrorContains(t, err, "topic and group id are required")

	_, err = New(Config{Brokers: []string{"localhost:9092"}, Topic: "t", GroupID: "g"}, nil, log)
	assert.ErrorContains(t, err, "handler is required")
}

func TestToMessage(t *testing.T) {
	rec := &kgo.Record{
		Topic:     "legacy.contacts.changes",
		Partition: 2,
		Offset:    41,
		Key:       []byte("m-1"),
		Value:     []byte(`{"eventType":"contact.created"}`),
		Headers:   []kgo.RecordHeader{{Key: "traceparent", Value: []byte("00-abc")}},
	}
	msg := toMessage(rec)

	assert.Equal(t, "legacy.contacts.changes", msg.Topic)
	assert.Equal(t, int32(2), msg.Partition)
	assert.Equal(t, int64(41), msg.Offset)
	assert.Equal(t, "m-1", string(msg.Key))
	assert.Equal(t, map[string]string{"traceparent": "00-abc"}, msg.Headers)
}
