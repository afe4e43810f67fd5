package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"contactsync/internal/mapping"
	"contactsync/internal/sync/models"
	"contactsync/pkg/platform/sentinel"
)

// ErrNotFound is returned when a mapping does not exist.
var ErrNotFound = sentinel.ErrNotFound

type key struct {
	kind     models.EntityKind
	legacyID int64
}

type targetKey struct {
	kind     models.EntityKind
	targetID string
}

// InMemoryStore keeps mappings in process. It favours clarity over speed and
// backs unit tests and local runs without Postgres.
type InMemoryStore struct {
	mu       sync.RWMutex
	byLegacy map[key]mapping.Mapping
	byTarget map[targetKey]int64
	clock    func() time.Time
}

// Option configures an InMemoryStore.
type Option func(*InMemoryStore)

// WithClock sets the clock used to stamp WhenCreated.
func WithClock(clock func() time.Time) Option {
	return func(s *InMemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		byLegacy: make(map[key]mapping.Mapping),
		byTarget: make(map[targetKey]int64),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Get(_ context.Context, kind models.EntityKind, legacyID int64) (*mapping.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byLegacy[key{kind, legacyID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *InMemoryStore) Create(_ context.Context, m mapping.Mapping) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("create mapping: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.conflicting(m); ok {
		return &mapping.ConflictError{Duplicate: m, Existing: existing}
	}
	s.put(s.stamp(m))
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, kind models.EntityKind, legacyID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(key{kind, legacyID})
	return nil
}

func (s *InMemoryStore) ListForOwner(_ context.Context, kind models.EntityKind, ownerKey string) ([]mapping.Mapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ownedBy(kind, ownerKey), nil
}

func (s *InMemoryStore) ReplaceAllForOwner(_ context.Context, kind models.EntityKind, ownerKey string, mappings []mapping.Mapping) ([]mapping.Mapping, error) {
	for _, m := range mappings {
		if m.Kind != kind || m.OwnerKey != ownerKey {
			return nil, fmt.Errorf("replace mappings: %s/%d does not belong to %s/%s", m.Kind, m.LegacyID, kind, ownerKey)
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("replace mappings: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.ownedBy(kind, ownerKey)
	for _, m := range previous {
		s.remove(key{m.Kind, m.LegacyID})
	}

	// Apply in full or not at all.
	applied := make([]mapping.Mapping, 0, len(mappings))
	for _, m := range mappings {
		if existing, ok := s.conflicting(m); ok {
			for _, a := range applied {
				s.remove(key{a.Kind, a.LegacyID})
			}
			for _, p := range previous {
				s.put(p)
			}
			return nil, &mapping.ConflictError{Duplicate: m, Existing: existing}
		}
		stamped := s.stamp(m)
		s.put(stamped)
		applied = append(applied, stamped)
	}
	return previous, nil
}

func (s *InMemoryStore) ReplaceAfterMerge(_ context.Context, retainedOwnerKey, removedOwnerKey string) (int, error) {
	if retainedOwnerKey == "" || removedOwnerKey == "" {
		return 0, fmt.Errorf("merge requires both owner keys")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	moved := 0
	for k, m := range s.byLegacy {
		if m.OwnerKey == removedOwnerKey {
			m.OwnerKey = retainedOwnerKey
			s.byLegacy[k] = m
			moved++
		}
	}
	return moved, nil
}

func (s *InMemoryStore) conflicting(m mapping.Mapping) (mapping.Mapping, bool) {
	if existing, ok := s.byLegacy[key{m.Kind, m.LegacyID}]; ok {
		return existing, true
	}
	if legacyID, ok := s.byTarget[targetKey{m.Kind, m.TargetID}]; ok {
		return s.byLegacy[key{m.Kind, legacyID}], true
	}
	return mapping.Mapping{}, false
}

func (s *InMemoryStore) ownedBy(kind models.EntityKind, ownerKey string) []mapping.Mapping {
	result := make([]mapping.Mapping, 0)
	for _, m := range s.byLegacy {
		if m.Kind == kind && m.OwnerKey == ownerKey {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LegacyID < result[j].LegacyID })
	return result
}

func (s *InMemoryStore) stamp(m mapping.Mapping) mapping.Mapping {
	if m.WhenCreated.IsZero() {
		m.WhenCreated = s.clock()
	}
	return m
}

func (s *InMemoryStore) put(m mapping.Mapping) {
	s.byLegacy[key{m.Kind, m.LegacyID}] = m
	s.byTarget[targetKey{m.Kind, m.TargetID}] = m.LegacyID
}

func (s *InMemoryStore) remove(k key) {
	m, ok := s.byLegacy[k]
	if !ok {
		return
	}
	delete(s.byLegacy, k)
	delete(s.byTarget, targetKey{m.Kind, m.TargetID})
}
