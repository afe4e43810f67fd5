// Package ports declares what the sync services need from the outside world,
// so reconcile and resync depend on behaviour rather than on HTTP or SQL.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"encoding/json"
	"time"

	"contactsync/internal/mapping"
	"contactsync/internal/sync/models"
	"contactsync/internal/target"
)

// MappingStore is the legacy-id to target-id correspondence.
type MappingStore interface {
	Get(ctx context.Context, kind models.EntityKind, legacyID int64) (*mapping.Mapping, error)
	Create(ctx context.Context, m mapping.Mapping) error
	Delete(ctx context.Context, kind models.EntityKind, legacyID int64) error
	ListForOwner(ctx context.Context, kind models.EntityKind, ownerKey string) ([]mapping.Mapping, error)
	ReplaceAllForOwner(ctx context.Context, kind models.EntityKind, ownerKey string, mappings []mapping.Mapping) ([]mapping.Mapping, error)
	ReplaceAfterMerge(ctx context.Context, retainedOwnerKey, removedOwnerKey string) (int, error)
}

// TargetClient writes to the contacts system.
type TargetClient interface {
	Create(ctx context.Context, kind models.EntityKind, req target.Request) (string, error)
	Update(ctx context.Context, kind models.EntityKind, targetID string, req target.Request) error
	// Delete treats an already-deleted record as success.
	Delete(ctx context.Context, kind models.EntityKind, targetID string) error
	Migrate(ctx context.Context, kind models.EntityKind, ownerKey string, items []target.BulkItem) ([]target.Assigned, error)
	Reset(ctx context.Context, kind models.EntityKind, ownerKey string, items []target.BulkItem) ([]target.Assigned, error)
}

// LegacyClient reads current state from the legacy system.
type LegacyClient interface {
	Get(ctx context.Context, kind models.EntityKind, legacyID int64) (json.RawMessage, error)
	Snapshot(ctx context.Context, kind models.EntityKind, ownerKey string) ([]json.RawMessage, error)
}

// Sink receives one call per reconciled event.
type Sink interface {
	Observe(ctx context.Context, ev models.ChangeEvent, outcome models.Outcome, err error, elapsed time.Duration)
}

// NopSink discards observations.
type NopSink struct{}

func (NopSink) Observe(context.Context, models.ChangeEvent, models.Outcome, error, time.Duration) {}
