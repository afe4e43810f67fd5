package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"contactsync/internal/mapping"
	"contactsync/internal/sync/models"
	"contactsync/pkg/platform/sentinel"
	txcontext "contactsync/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists mappings in PostgreSQL. The (kind, legacy_id) primary
// key and the (kind, target_id) unique index enforce the mapping invariants.
type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithPostgresClock sets the clock used to stamp when_created.
func WithPostgresClock(clock func() time.Time) PostgresOption {
	return func(s *PostgresStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewPostgresStore constructs a PostgreSQL-backed mapping store.
func NewPostgresStore(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const selectColumns = `kind, legacy_id, target_id, owner_key, mapping_type, label, when_created`

func (s *PostgresStore) Get(ctx context.Context, kind models.EntityKind, legacyID int64) (*mapping.Mapping, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM sync_mappings WHERE kind = $1 AND legacy_id = $2`,
		string(kind), legacyID)
	m, err := scanMapping(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get mapping: %w", err)
	}
	return m, nil
}

// Create inserts a mapping. ON CONFLICT DO NOTHING covers both unique
// constraints; when nothing was inserted the colliding row is read back.
func (s *PostgresStore) Create(ctx context.Context, m mapping.Mapping) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("create mapping: %w", err)
	}
	if m.WhenCreated.IsZero() {
		m.WhenCreated = s.clock()
	}
	res, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO sync_mappings (kind, legacy_id, target_id, owner_key, mapping_type, label, when_created)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING
	`, string(m.Kind), m.LegacyID, m.TargetID, m.OwnerKey, string(m.MappingType), m.Label, m.WhenCreated)
	if err != nil {
		return fmt.Errorf("insert mapping: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert mapping: %w", err)
	}
	if inserted == 1 {
		return nil
	}
	existing, err := s.findColliding(ctx, m)
	if err != nil {
		return err
	}
	return &mapping.ConflictError{Duplicate: m, Existing: *existing}
}

func (s *PostgresStore) Delete(ctx context.Context, kind models.EntityKind, legacyID int64) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM sync_mappings WHERE kind = $1 AND legacy_id = $2`, string(kind), legacyID)
	if err != nil {
		return fmt.Errorf("delete mapping: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListForOwner(ctx context.Context, kind models.EntityKind, ownerKey string) ([]mapping.Mapping, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT `+selectColumns+` FROM sync_mappings WHERE kind = $1 AND owner_key = $2 ORDER BY legacy_id`,
		string(kind), ownerKey)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	defer rows.Close()

	result := make([]mapping.Mapping, 0)
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mappings: %w", err)
	}
	return result, nil
}

// ReplaceAllForOwner deletes and bulk-inserts in one transaction. Inserts use
// unnest so the round trips do not grow with the aggregate size.
func (s *PostgresStore) ReplaceAllForOwner(ctx context.Context, kind models.EntityKind, ownerKey string, mappings []mapping.Mapping) ([]mapping.Mapping, error) {
	legacyIDs := make([]int64, 0, len(mappings))
	targetIDs := make([]string, 0, len(mappings))
	types := make([]string, 0, len(mappings))
	labels := make([]string, 0, len(mappings))
	for _, m := range mappings {
		if m.Kind != kind || m.OwnerKey != ownerKey {
			return nil, fmt.Errorf("replace mappings: %s/%d does not belong to %s/%s", m.Kind, m.LegacyID, kind, ownerKey)
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("replace mappings: %w", err)
		}
		legacyIDs = append(legacyIDs, m.LegacyID)
		targetIDs = append(targetIDs, m.TargetID)
		types = append(types, string(m.MappingType))
		labels = append(labels, m.Label)
	}

	var previous []mapping.Mapping
	err := txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		var err error
		previous, err = s.ListForOwner(ctx, kind, ownerKey)
		if err != nil {
			return err
		}
		if _, err := s.execer(ctx).ExecContext(ctx,
			`DELETE FROM sync_mappings WHERE kind = $1 AND owner_key = $2`, string(kind), ownerKey); err != nil {
			return fmt.Errorf("delete owner mappings: %w", err)
		}
		if len(mappings) == 0 {
			return nil
		}
		_, err = s.execer(ctx).ExecContext(ctx, `
			INSERT INTO sync_mappings (kind, legacy_id, target_id, owner_key, mapping_type, label, when_created)
			SELECT $1, u.legacy_id, u.target_id, $2, u.mapping_type, u.label, $7
			FROM unnest($3::bigint[], $4::text[], $5::text[], $6::text[]) AS u(legacy_id, target_id, mapping_type, label)
		`, string(kind), ownerKey, pq.Array(legacyIDs), pq.Array(targetIDs), pq.Array(types), pq.Array(labels), s.clock())
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return replaceConflict(mappings, err)
			}
			return fmt.Errorf("insert owner mappings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}

func (s *PostgresStore) ReplaceAfterMerge(ctx context.Context, retainedOwnerKey, removedOwnerKey string) (int, error) {
	if retainedOwnerKey == "" || removedOwnerKey == "" {
		return 0, fmt.Errorf("merge requires both owner keys")
	}
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE sync_mappings SET owner_key = $1 WHERE owner_key = $2`, retainedOwnerKey, removedOwnerKey)
	if err != nil {
		return 0, fmt.Errorf("merge mappings: %w", err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("merge mappings: %w", err)
	}
	return int(moved), nil
}

// replaceConflict runs after a failed bulk insert. The statement error has
// aborted the transaction, so the colliding row cannot be read back here;
// the conflict reports the first duplicate within the batch when there is one.
func replaceConflict(mappings []mapping.Mapping, cause error) error {
	seenLegacy := make(map[int64]mapping.Mapping, len(mappings))
	seenTarget := make(map[string]mapping.Mapping, len(mappings))
	for _, m := range mappings {
		if prior, ok := seenLegacy[m.LegacyID]; ok {
			return &mapping.ConflictError{Duplicate: m, Existing: prior}
		}
		if prior, ok := seenTarget[m.TargetID]; ok {
			return &mapping.ConflictError{Duplicate: m, Existing: prior}
		}
		seenLegacy[m.LegacyID] = m
		seenTarget[m.TargetID] = m
	}
	return fmt.Errorf("insert owner mappings: %w: %w", sentinel.ErrConflict, cause)
}

func (s *PostgresStore) findColliding(ctx context.Context, m mapping.Mapping) (*mapping.Mapping, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT `+selectColumns+` FROM sync_mappings
		WHERE kind = $1 AND (legacy_id = $2 OR target_id = $3)
		ORDER BY (legacy_id = $2) DESC
		LIMIT 1
	`, string(m.Kind), m.LegacyID, m.TargetID)
	existing, err := scanMapping(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The colliding row was deleted between the insert and the read.
			return nil, fmt.Errorf("insert mapping: colliding row vanished, retry")
		}
		return nil, fmt.Errorf("read conflicting mapping: %w", err)
	}
	return existing, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMapping(row scanner) (*mapping.Mapping, error) {
	var (
		m           mapping.Mapping
		kind        string
		mappingType string
	)
	if err := row.Scan(&kind, &m.LegacyID, &m.TargetID, &m.OwnerKey, &mappingType, &m.Label, &m.WhenCreated); err != nil {
		return nil, err
	}
	m.Kind = models.EntityKind(kind)
	m.MappingType = mapping.Type(mappingType)
	return &m, nil
}
