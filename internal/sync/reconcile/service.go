// Package reconcile replays one legacy change event against the target system
// and keeps the mapping table in step. It holds no state between events, so
// concurrent calls for different aggregates are independent.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"contactsync/internal/mapping"
	"contactsync/internal/sync/models"
	"contactsync/internal/sync/origin"
	"contactsync/internal/sync/ports"
	"contactsync/internal/sync/translate"
	"contactsync/internal/target"
	"contactsync/pkg/platform/sentinel"
)

type (
	MappingStore = ports.MappingStore
	TargetClient = ports.TargetClient
	LegacyClient = ports.LegacyClient
	Sink         = ports.Sink
)

// ErrNoRecord is returned when an event carries no attributes and no legacy
// client is configured to read them.
var ErrNoRecord = errors.New("event carries no record and no legacy client is configured")

type Service struct {
	mappings   MappingStore
	target     TargetClient
	legacy     LegacyClient
	translator *translate.Translator
	classifier *origin.Classifier
	sink       Sink
	now        func() time.Time
}

type Option func(*Service)

// WithLegacyClient enables reading the current record for events that arrive
// without attributes.
func WithLegacyClient(c LegacyClient) Option {
	return func(s *Service) {
		s.legacy = c
	}
}

func WithClassifier(c *origin.Classifier) Option {
	return func(s *Service) {
		s.classifier = c
	}
}

func WithSink(sink Sink) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(mappings MappingStore, targetClient TargetClient, translator *translate.Translator, opts ...Option) (*Service, error) {
	if mappings == nil {
		return nil, errors.New("mapping store is required")
	}
	if targetClient == nil {
		return nil, errors.New("target client is required")
	}
	if translator == nil {
		return nil, errors.New("translator is required")
	}

	svc := &Service{
		mappings:   mappings,
		target:     targetClient,
		translator: translator,
		classifier: origin.NewClassifier(nil),
		sink:       ports.NopSink{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Reconcile processes one change event. Transient failures are returned
// unchanged so the delivery infrastructure can redeliver the event.
func (s *Service) Reconcile(ctx context.Context, ev models.ChangeEvent) (models.Outcome, error) {
	start := s.now()
	ev = s.classifier.Apply(ev)
	out, err := s.reconcile(ctx, ev)
	s.sink.Observe(ctx, ev, out, err, s.now().Sub(start))
	return out, err
}

// Merge re-points every mapping of the removed aggregate root to the retained one.
func (s *Service) Merge(ctx context.Context, ev models.MergeEvent) (models.Outcome, error) {
	start := s.now()
	out := models.Outcome{EventType: models.EventTypeMerge, OwnerKey: ev.RetainedOwnerKey}
	var err error
	switch {
	case ev.RetainedOwnerKey == "" || ev.RemovedOwnerKey == "":
		err = fmt.Errorf("merge requires retained and removed owner keys: %w", sentinel.ErrInvalidState)
	case ev.RetainedOwnerKey == ev.RemovedOwnerKey:
		out.Result = models.ResultNoop
	default:
		var n int
		n, err = s.mappings.ReplaceAfterMerge(ctx, ev.RetainedOwnerKey, ev.RemovedOwnerKey)
		if err != nil {
			err = fmt.Errorf("replace mappings after merge: %w", err)
		} else {
			out.Result = models.ResultMerged
			out.Count = n
		}
	}

	asEvent := models.ChangeEvent{MessageID: ev.MessageID, EventType: models.EventTypeMerge, OwnerKey: ev.RetainedOwnerKey, Origin: models.OriginLegacy}
	s.sink.Observe(ctx, asEvent, out, err, s.now().Sub(start))
	return out, err
}

func (s *Service) reconcile(ctx context.Context, ev models.ChangeEvent) (models.Outcome, error) {
	out := models.Outcome{
		EventType: ev.EventType,
		Kind:      ev.Kind,
		LegacyID:  ev.EntityID,
		OwnerKey:  ev.OwnerKey,
	}
	if ev.Origin == models.OriginTarget {
		out.Result = models.ResultSkipped
		return out, nil
	}
	if !s.translator.Supports(ev.Kind) {
		return out, fmt.Errorf("%w: %q", translate.ErrUnknownKind, ev.Kind)
	}
	if ev.IsDelete() {
		return s.delete(ctx, ev, out)
	}
	return s.upsert(ctx, ev, out)
}

func (s *Service) delete(ctx context.Context, ev models.ChangeEvent, out models.Outcome) (models.Outcome, error) {
	m, err := s.mappings.Get(ctx, ev.Kind, ev.EntityID)
	if errors.Is(err, sentinel.ErrNotFound) {
		out.Result = models.ResultNoop
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("get mapping: %w", err)
	}
	out.TargetID = m.TargetID
	out.OwnerKey = m.OwnerKey

	if err := s.target.Delete(ctx, ev.Kind, m.TargetID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return out, fmt.Errorf("delete target record: %w", err)
	}
	if err := s.mappings.Delete(ctx, ev.Kind, ev.EntityID); err != nil {
		return out, fmt.Errorf("delete mapping: %w", err)
	}
	out.Result = models.ResultDeleted
	return out, nil
}

func (s *Service) upsert(ctx context.Context, ev models.ChangeEvent, out models.Outcome) (models.Outcome, error) {
	decoded, err := s.record(ctx, ev)
	if errors.Is(err, sentinel.ErrNotFound) {
		// Removed upstream before it could be read; its delete event follows.
		out.Result = models.ResultNoop
		return out, nil
	}
	if err != nil {
		return out, err
	}
	if decoded.OwnerKey != "" {
		out.OwnerKey = decoded.OwnerKey
	}

	parentID, err := s.parentTargetID(ctx, decoded)
	if err != nil {
		return out, err
	}

	existing, err := s.mappings.Get(ctx, ev.Kind, decoded.LegacyID)
	switch {
	case err == nil:
		// Covers genuine updates and redelivered creates alike.
		return s.update(ctx, decoded, existing.TargetID, parentID, out)
	case errors.Is(err, sentinel.ErrNotFound):
		// An update with no mapping is repaired by creating.
		return s.create(ctx, decoded, parentID, out)
	default:
		return out, fmt.Errorf("get mapping: %w", err)
	}
}

// record decodes the event's attributes, or reads the current record from the
// legacy system when the event carries none.
func (s *Service) record(ctx context.Context, ev models.ChangeEvent) (translate.Decoded, error) {
	payload := ev.Attributes
	if len(payload) == 0 || string(payload) == "null" {
		if s.legacy == nil {
			return translate.Decoded{}, ErrNoRecord
		}
		raw, err := s.legacy.Get(ctx, ev.Kind, ev.EntityID)
		if err != nil {
			return translate.Decoded{}, fmt.Errorf("read legacy record: %w", err)
		}
		payload = raw
	}

	decoded, err := s.translator.Decode(ev.Kind, payload)
	if err != nil {
		return translate.Decoded{}, err
	}
	if ev.EntityID != 0 && decoded.LegacyID != ev.EntityID {
		return translate.Decoded{}, fmt.Errorf("%w: event id %d does not match record id %d",
			translate.ErrInvalidRecord, ev.EntityID, decoded.LegacyID)
	}
	if decoded.OwnerKey == "" {
		decoded.OwnerKey = ev.OwnerKey
	}
	return decoded, nil
}

// parentTargetID resolves the target id of the record's parent. A parent that
// is not mapped yet is an error so the event is redelivered once it is.
func (s *Service) parentTargetID(ctx context.Context, d translate.Decoded) (string, error) {
	if d.Parent == nil {
		return "", nil
	}
	parent, err := s.mappings.Get(ctx, d.Parent.Kind, d.Parent.LegacyID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", fmt.Errorf("%w: %s %d is not mapped", translate.ErrMissingParent, d.Parent.Kind, d.Parent.LegacyID)
	}
	if err != nil {
		return "", fmt.Errorf("get parent mapping: %w", err)
	}
	return parent.TargetID, nil
}

func (s *Service) update(ctx context.Context, d translate.Decoded, targetID, parentID string, out models.Outcome) (models.Outcome, error) {
	tr, err := s.translator.Translate(d, translate.Context{Op: translate.OpUpdate, ParentTargetID: parentID})
	if err != nil {
		return out, err
	}
	out.TargetID = targetID
	if err := s.target.Update(ctx, d.Kind, targetID, tr.Request); err != nil {
		return out, fmt.Errorf("update target record: %w", err)
	}
	out.Result = models.ResultUpdated
	return out, nil
}

func (s *Service) create(ctx context.Context, d translate.Decoded, parentID string, out models.Outcome) (models.Outcome, error) {
	tr, err := s.translator.Translate(d, translate.Context{Op: translate.OpCreate, ParentTargetID: parentID})
	if err != nil {
		return out, err
	}

	created := true
	targetID, err := s.target.Create(ctx, d.Kind, tr.Request)
	var dup *target.DuplicateError
	switch {
	case errors.As(err, &dup):
		// The record reached the target on an earlier delivery; adopt it.
		created = false
		out.Adopted = true
		out, err = s.update(ctx, d, dup.Existing.TargetID, parentID, out)
		if err != nil {
			return out, err
		}
		targetID = dup.Existing.TargetID
	case err != nil:
		return out, fmt.Errorf("create target record: %w", err)
	}
	out.TargetID = targetID

	err = s.mappings.Create(ctx, mapping.Mapping{
		Kind:        d.Kind,
		LegacyID:    d.LegacyID,
		TargetID:    targetID,
		OwnerKey:    d.OwnerKey,
		MappingType: mapping.TypeNomisCreated,
		WhenCreated: s.now(),
	})
	var conflict *mapping.ConflictError
	switch {
	case errors.As(err, &conflict):
		return s.adoptMapping(ctx, d, conflict, targetID, created, parentID, out)
	case err != nil:
		return out, fmt.Errorf("create mapping: %w", err)
	}
	out.Result = models.ResultCreated
	return out, nil
}

// adoptMapping resolves a mapping collision by keeping the mapping that won.
// The target record this attempt created, if any, is removed so it is not
// left unmapped.
func (s *Service) adoptMapping(
	ctx context.Context,
	d translate.Decoded,
	conflict *mapping.ConflictError,
	attemptedID string,
	created bool,
	parentID string,
	out models.Outcome,
) (models.Outcome, error) {
	existing := conflict.Existing
	if existing.Kind != d.Kind || existing.LegacyID != d.LegacyID {
		// The target id is already mapped to another legacy record; no safe
		// adoption exists.
		return out, fmt.Errorf("create mapping: %w", conflict)
	}

	out.Adopted = true
	if !created && attemptedID == existing.TargetID {
		// The adopted duplicate was already updated.
		out.TargetID = existing.TargetID
		out.Result = models.ResultUpdated
		return out, nil
	}
	out, err := s.update(ctx, d, existing.TargetID, parentID, out)
	if err != nil {
		return out, err
	}
	if created && attemptedID != existing.TargetID {
		if err := s.target.Delete(ctx, d.Kind, attemptedID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return out, fmt.Errorf("delete orphaned target record %s: %w", attemptedID, err)
		}
	}
	return out, nil
}
