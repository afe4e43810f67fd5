// Package resync rebuilds the mapped state of one aggregate from a fresh legacy
// snapshot. Repair is a full, destructive rebuild; Migrate is the first-time
// variant that refuses to touch an owner that is already mapped.
package resync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"contactsync/internal/mapping"
	"contactsync/internal/platform/metrics"
	"contactsync/internal/sync/models"
	"contactsync/internal/sync/ports"
	"contactsync/internal/sync/translate"
	"contactsync/internal/target"
	"contactsync/pkg/platform/sentinel"
)

type (
	MappingStore = ports.MappingStore
	TargetClient = ports.TargetClient
	LegacyClient = ports.LegacyClient
)

// parentLookupLimit bounds concurrent mapping reads while resolving parents.
const parentLookupLimit = 8

// RepairResult counts mapping changes by legacy id: ids in both the old and
// new sets were re-pointed, the rest were created or removed.
type RepairResult struct {
	Kind     models.EntityKind `json:"kind"`
	OwnerKey string            `json:"ownerKey"`
	Created  int               `json:"created"`
	Updated  int               `json:"updated"`
	Removed  int               `json:"removed"`
}

// MigrateResult counts mappings written by a migration. Skipped records were
// already mapped by a concurrent writer and were left as they were.
type MigrateResult struct {
	Kind     models.EntityKind `json:"kind"`
	OwnerKey string            `json:"ownerKey"`
	Label    string            `json:"label"`
	Migrated int               `json:"migrated"`
	Skipped  int               `json:"skipped"`
}

type Service struct {
	legacy     LegacyClient
	target     TargetClient
	mappings   MappingStore
	translator *translate.Translator
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	now        func() time.Time
	newLabel   func() string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLabelGenerator overrides the default migration label (a random UUID).
func WithLabelGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newLabel = fn
	}
}

func New(legacy LegacyClient, targetClient TargetClient, mappings MappingStore, translator *translate.Translator, opts ...Option) (*Service, error) {
	if legacy == nil {
		return nil, errors.New("legacy client is required")
	}
	if targetClient == nil {
		return nil, errors.New("target client is required")
	}
	if mappings == nil {
		return nil, errors.New("mapping store is required")
	}
	if translator == nil {
		return nil, errors.New("translator is required")
	}

	svc := &Service{
		legacy:     legacy,
		target:     targetClient,
		mappings:   mappings,
		translator: translator,
		logger:     slog.Default(),
		tracer:     otel.Tracer("contactsync/resync"),
		now:        time.Now,
		newLabel:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Repair discards the target's records and mappings for one owner and kind and
// rebuilds both from the current legacy snapshot.
func (s *Service) Repair(ctx context.Context, kind models.EntityKind, ownerKey string) (RepairResult, error) {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, "resync.repair", trace.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.String("owner_key", ownerKey),
	))
	defer span.End()

	result, err := s.repair(ctx, kind, ownerKey)
	elapsed := s.now().Sub(start)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.metrics.ObserveRepair(kind.String(), string(FailedStage(err)), elapsed, 0, 0, 0)
		s.logger.ErrorContext(ctx, "repair failed",
			"kind", kind,
			"owner_key", ownerKey,
			"stage", FailedStage(err),
			"error", err,
		)
		return result, err
	}

	s.metrics.ObserveRepair(kind.String(), "ok", elapsed, result.Created, result.Updated, result.Removed)
	s.logger.InfoContext(ctx, "repair completed",
		"kind", kind,
		"owner_key", ownerKey,
		"created", result.Created,
		"updated", result.Updated,
		"removed", result.Removed,
		"duration_ms", elapsed.Milliseconds(),
	)
	return result, nil
}

func (s *Service) repair(ctx context.Context, kind models.EntityKind, ownerKey string) (RepairResult, error) {
	result := RepairResult{Kind: kind, OwnerKey: ownerKey}
	if err := s.validate(kind, ownerKey); err != nil {
		return result, err
	}

	translated, err := s.prepare(ctx, kind, ownerKey)
	if err != nil {
		return result, err
	}

	var assigned []target.Assigned
	err = s.stage(ctx, StageReset, kind, ownerKey, func(ctx context.Context) (err error) {
		assigned, err = s.target.Reset(ctx, kind, ownerKey, bulkItems(translated))
		return err
	})
	if err != nil {
		return result, err
	}

	var next []mapping.Mapping
	err = s.stage(ctx, StageZip, kind, ownerKey, func(context.Context) (err error) {
		next, err = s.zip(kind, ownerKey, mapping.TypeNomisCreated, "", translated, assigned)
		return err
	})
	if err != nil {
		return result, err
	}

	var previous []mapping.Mapping
	err = s.stage(ctx, StageMappings, kind, ownerKey, func(ctx context.Context) (err error) {
		previous, err = s.mappings.ReplaceAllForOwner(ctx, kind, ownerKey, next)
		return err
	})
	if err != nil {
		return result, err
	}

	result.Created, result.Updated, result.Removed = diff(previous, next)
	return result, nil
}

// Migrate performs the first bulk creation of an owner's records in the target
// and maps each one as MIGRATED under label. An empty label gets a fresh UUID.
func (s *Service) Migrate(ctx context.Context, kind models.EntityKind, ownerKey, label string) (MigrateResult, error) {
	if label == "" {
		label = s.newLabel()
	}
	result := MigrateResult{Kind: kind, OwnerKey: ownerKey, Label: label}
	ctx, span := s.tracer.Start(ctx, "resync.migrate", trace.WithAttributes(
		attribute.String("kind", kind.String()),
		attribute.String("owner_key", ownerKey),
		attribute.String("label", label),
	))
	defer span.End()

	if err := s.validate(kind, ownerKey); err != nil {
		return result, err
	}

	err := s.stage(ctx, StageCheck, kind, ownerKey, func(ctx context.Context) error {
		existing, err := s.mappings.ListForOwner(ctx, kind, ownerKey)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: %d %s mappings", ErrAlreadyMigrated, len(existing), kind)
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	translated, err := s.prepare(ctx, kind, ownerKey)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	var assigned []target.Assigned
	err = s.stage(ctx, StageMigrate, kind, ownerKey, func(ctx context.Context) (err error) {
		assigned, err = s.target.Migrate(ctx, kind, ownerKey, bulkItems(translated))
		return err
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	var created []mapping.Mapping
	err = s.stage(ctx, StageZip, kind, ownerKey, func(context.Context) (err error) {
		created, err = s.zip(kind, ownerKey, mapping.TypeMigrated, label, translated, assigned)
		return err
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	err = s.stage(ctx, StageMappings, kind, ownerKey, func(ctx context.Context) error {
		for _, m := range created {
			err := s.mappings.Create(ctx, m)
			var conflict *mapping.ConflictError
			switch {
			case errors.As(err, &conflict):
				s.logger.WarnContext(ctx, "migration kept existing mapping",
					"kind", kind,
					"legacy_id", m.LegacyID,
					"existing_target_id", conflict.Existing.TargetID,
					"migrated_target_id", m.TargetID,
				)
				if conflict.Existing.TargetID != m.TargetID {
					// The record migrated for it is unmapped; remove it.
					if err := s.target.Delete(ctx, kind, m.TargetID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
						return fmt.Errorf("delete orphaned target record %s: %w", m.TargetID, err)
					}
				}
				result.Skipped++
			case err != nil:
				return err
			default:
				result.Migrated++
			}
		}
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	s.logger.InfoContext(ctx, "migration completed",
		"kind", kind,
		"owner_key", ownerKey,
		"label", label,
		"migrated", result.Migrated,
		"skipped", result.Skipped,
	)
	return result, nil
}

func (s *Service) validate(kind models.EntityKind, ownerKey string) error {
	if !s.translator.Supports(kind) {
		return &StageError{Stage: StageCheck, Kind: kind, OwnerKey: ownerKey, Err: fmt.Errorf("%w: %q", translate.ErrUnknownKind, kind)}
	}
	if ownerKey == "" {
		return &StageError{Stage: StageCheck, Kind: kind, Err: fmt.Errorf("owner key is required: %w", sentinel.ErrInvalidState)}
	}
	return nil
}

// prepare runs the snapshot, parent and translate stages shared by repair and
// migration. The output keeps snapshot order.
func (s *Service) prepare(ctx context.Context, kind models.EntityKind, ownerKey string) ([]translate.Translated, error) {
	var decoded []translate.Decoded
	err := s.stage(ctx, StageSnapshot, kind, ownerKey, func(ctx context.Context) error {
		records, err := s.legacy.Snapshot(ctx, kind, ownerKey)
		if err != nil {
			return err
		}
		decoded, err = s.translator.DecodeAll(kind, records)
		return err
	})
	if err != nil {
		return nil, err
	}

	for i, d := range decoded {
		if d.OwnerKey != "" && d.OwnerKey != ownerKey {
			return nil, &StageError{Stage: StageSnapshot, Kind: kind, OwnerKey: ownerKey,
				Err: fmt.Errorf("%w: record %d belongs to owner %q", translate.ErrInvalidRecord, i, d.OwnerKey)}
		}
	}

	var parentIDs map[translate.ParentRef]string
	err = s.stage(ctx, StageParents, kind, ownerKey, func(ctx context.Context) (err error) {
		parentIDs, err = s.resolveParents(ctx, translate.Parents(decoded))
		return err
	})
	if err != nil {
		return nil, err
	}

	var translated []translate.Translated
	err = s.stage(ctx, StageTranslate, kind, ownerKey, func(context.Context) (err error) {
		translated, err = s.translator.TranslateAll(decoded, parentIDs)
		return err
	})
	return translated, err
}

// resolveParents looks up parent mappings concurrently. Unmapped parents are
// left out; translation then fails for the records that need them.
func (s *Service) resolveParents(ctx context.Context, refs []translate.ParentRef) (map[translate.ParentRef]string, error) {
	ids := make(map[translate.ParentRef]string, len(refs))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parentLookupLimit)
	for _, ref := range refs {
		g.Go(func() error {
			m, err := s.mappings.Get(ctx, ref.Kind, ref.LegacyID)
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("get %s %d: %w", ref.Kind, ref.LegacyID, err)
			}
			mu.Lock()
			ids[ref] = m.TargetID
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}

// zip pairs request and response positionally. A length mismatch, an empty or
// repeated id, or an echoed legacy id that disagrees with its position all
// mean the pairing cannot be trusted.
func (s *Service) zip(
	kind models.EntityKind,
	ownerKey string,
	mappingType mapping.Type,
	label string,
	translated []translate.Translated,
	assigned []target.Assigned,
) ([]mapping.Mapping, error) {
	if len(assigned) != len(translated) {
		return nil, fmt.Errorf("%w: sent %d records, received %d ids", ErrOrderingViolation, len(translated), len(assigned))
	}

	now := s.now()
	seen := make(map[string]struct{}, len(assigned))
	out := make([]mapping.Mapping, len(translated))
	for i, tr := range translated {
		a := assigned[i]
		if a.TargetID == "" {
			return nil, fmt.Errorf("%w: position %d has no id", ErrOrderingViolation, i)
		}
		if a.LegacyID != 0 && a.LegacyID != tr.LegacyID {
			return nil, fmt.Errorf("%w: position %d echoed legacy id %d, expected %d", ErrOrderingViolation, i, a.LegacyID, tr.LegacyID)
		}
		if _, dup := seen[a.TargetID]; dup {
			return nil, fmt.Errorf("%w: id %s returned twice", ErrOrderingViolation, a.TargetID)
		}
		seen[a.TargetID] = struct{}{}

		out[i] = mapping.Mapping{
			Kind:        kind,
			LegacyID:    tr.LegacyID,
			TargetID:    a.TargetID,
			OwnerKey:    ownerKey,
			MappingType: mappingType,
			Label:       label,
			WhenCreated: now,
		}
	}
	return out, nil
}

func (s *Service) stage(ctx context.Context, stage Stage, kind models.EntityKind, ownerKey string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "resync."+string(stage))
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &StageError{Stage: stage, Kind: kind, OwnerKey: ownerKey, Err: err}
	}
	return nil
}

func bulkItems(translated []translate.Translated) []target.BulkItem {
	items := make([]target.BulkItem, len(translated))
	for i, tr := range translated {
		items[i] = target.BulkItem{LegacyID: tr.LegacyID, Record: tr.Request}
	}
	return items
}

func diff(previous, next []mapping.Mapping) (created, updated, removed int) {
	old := make(map[int64]struct{}, len(previous))
	for _, m := range previous {
		old[m.LegacyID] = struct{}{}
	}
	for _, m := range next {
		if _, ok := old[m.LegacyID]; ok {
			updated++
			delete(old, m.LegacyID)
		} else {
			created++
		}
	}
	return created, updated, len(old)
}
