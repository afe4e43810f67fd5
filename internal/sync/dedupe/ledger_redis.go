// Package dedupe remembers which messages were already processed so a
// redelivered message can be acknowledged without replaying it.
package dedupe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"contactsync/pkg/platform/sentinel"
)

const processedKeyPrefix = "contactsync:processed:"

// RedisLedger keeps processed message ids in Redis with a TTL, so every
// consumer instance shares one view.
type RedisLedger struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLedger constructs a ledger. The client lifecycle is managed by the caller.
func NewRedisLedger(client *redis.Client, ttl time.Duration) (*RedisLedger, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if err := validateTTL(ttl); err != nil {
		return nil, err
	}
	return &RedisLedger{client: client, ttl: ttl}, nil
}

// Seen reports whether messageID was marked and has not expired.
func (l *RedisLedger) Seen(ctx context.Context, messageID string) (bool, error) {
	if messageID == "" {
		return false, nil
	}
	_, err := l.client.Get(ctx, processedKeyPrefix+messageID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read processed marker: %w", err)
	}
	return true, nil
}

// Mark records messageID as processed.
func (l *RedisLedger) Mark(ctx context.Context, messageID string) error {
	if messageID == "" {
		return nil
	}
	if err := l.client.Set(ctx, processedKeyPrefix+messageID, "1", l.ttl).Err(); err != nil {
		return fmt.Errorf("write processed marker: %w", err)
	}
	return nil
}

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}
