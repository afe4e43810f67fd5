package dedupe

import (
	"context"
	"sync"
	"time"
)

// InMemoryLedger is a single-process ledger for local runs and tests.
type InMemoryLedger struct {
	mu      sync.Mutex
	expires map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*InMemoryLedger)

func WithClock(now func() time.Time) Option {
	return func(l *InMemoryLedger) {
		l.now = now
	}
}

func NewInMemoryLedger(ttl time.Duration, opts ...Option) (*InMemoryLedger, error) {
	if err := validateTTL(ttl); err != nil {
		return nil, err
	}
	l := &InMemoryLedger{
		expires: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *InMemoryLedger) Seen(_ context.Context, messageID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	exp, ok := l.expires[messageID]
	if !ok {
		return false, nil
	}
	if !l.now().Before(exp) {
		delete(l.expires, messageID)
		return false, nil
	}
	return true, nil
}

func (l *InMemoryLedger) Mark(_ context.Context, messageID string) error {
	if messageID == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.expires[messageID] = l.now().Add(l.ttl)
	return nil
}
