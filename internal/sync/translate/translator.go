// Package translate maps legacy records to target write requests. Every entity
// kind has one variant; translation is pure and total, and the bulk path keeps
// snapshot order so identifiers can be zipped positionally afterwards.
package translate

import (
	"encoding/json"
	"errors"
	"fmt"

	"contactsync/internal/legacy"
	"contactsync/internal/sync/models"
	"contactsync/internal/target"
)

var (
	ErrUnknownKind   = errors.New("no translation for entity kind")
	ErrMissingParent = errors.New("parent target id is required")
	ErrInvalidRecord = errors.New("invalid legacy record")
)

// Error reports a translation failure. Index is the position in a snapshot,
// or -1 for single-record translation.
type Error struct {
	Kind  models.EntityKind
	Index int
	Err   error
}

func (e *Error) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("translate %s record %d: %v", e.Kind, e.Index, e.Err)
	}
	return fmt.Sprintf("translate %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Operation selects which audit fields a request carries.
type Operation int

const (
	OpCreate Operation = iota
	OpUpdate
	// OpBulk is used for migrate and reset, which carry full audit history.
	OpBulk
)

// ParentRef names the mapped record a child needs the target id of, e.g. the
// contact that owns an email address.
type ParentRef struct {
	Kind     models.EntityKind
	LegacyID int64
}

// Decoded is a legacy record parsed into its kind's shape.
type Decoded struct {
	Kind     models.EntityKind
	Record   legacy.Record
	LegacyID int64
	// OwnerKey is derived from the record; empty when the record does not
	// carry its aggregate root.
	OwnerKey string
	Parent   *ParentRef
}

// Context is the non-record input to a translation.
type Context struct {
	Op             Operation
	ParentTargetID string
}

// Translated pairs a request with the legacy id it was built from.
type Translated struct {
	LegacyID int64
	Request  target.Request
}

type variant struct {
	kind   models.EntityKind
	decode func(json.RawMessage) (legacy.Record, error)
	owner  func(legacy.Record) string
	parent func(legacy.Record) *ParentRef
	build  func(legacy.Record, Context) target.Request
}

// define builds a type-erased variant from typed functions. parent may be nil
// for kinds that hang directly off their aggregate root.
func define[R legacy.Record](
	kind models.EntityKind,
	owner func(R) string,
	parent func(R) *ParentRef,
	build func(R, Context) target.Request,
) variant {
	return variant{
		kind: kind,
		decode: func(raw json.RawMessage) (legacy.Record, error) {
			var rec R
			if err := json.Unmarshal(raw, &rec); err != nil {
				return nil, err
			}
			return rec, nil
		},
		owner: func(r legacy.Record) string { return owner(r.(R)) },
		parent: func(r legacy.Record) *ParentRef {
			if parent == nil {
				return nil
			}
			return parent(r.(R))
		},
		build: func(r legacy.Record, c Context) target.Request { return build(r.(R), c) },
	}
}

// Translator dispatches by entity kind over the closed variant set.
type Translator struct {
	variants map[models.EntityKind]variant
}

// New returns a translator with every entity kind registered.
func New() *Translator {
	t := &Translator{variants: make(map[models.EntityKind]variant, len(models.AllKinds))}
	for _, v := range variants() {
		t.variants[v.kind] = v
	}
	return t
}

// Supports reports whether kind has a variant.
func (t *Translator) Supports(kind models.EntityKind) bool {
	_, ok := t.variants[kind]
	return ok
}

// Decode parses one legacy payload.
func (t *Translator) Decode(kind models.EntityKind, payload json.RawMessage) (Decoded, error) {
	d, err := t.decode(kind, payload)
	if err != nil {
		return Decoded{}, &Error{Kind: kind, Index: -1, Err: err}
	}
	return d, nil
}

// Translate builds the target request for one decoded record.
func (t *Translator) Translate(d Decoded, c Context) (Translated, error) {
	tr, err := t.translate(d, c)
	if err != nil {
		return Translated{}, &Error{Kind: d.Kind, Index: -1, Err: err}
	}
	return tr, nil
}

// DecodeAll parses a snapshot, preserving order.
func (t *Translator) DecodeAll(kind models.EntityKind, payloads []json.RawMessage) ([]Decoded, error) {
	decoded := make([]Decoded, 0, len(payloads))
	for i, p := range payloads {
		d, err := t.decode(kind, p)
		if err != nil {
			return nil, &Error{Kind: kind, Index: i, Err: err}
		}
		decoded = append(decoded, d)
	}
	return decoded, nil
}

// TranslateAll is the bulk variant. parentIDs supplies the target id for every
// parent the records reference; the output order matches the input order.
func (t *Translator) TranslateAll(decoded []Decoded, parentIDs map[ParentRef]string) ([]Translated, error) {
	out := make([]Translated, 0, len(decoded))
	for i, d := range decoded {
		c := Context{Op: OpBulk}
		if d.Parent != nil {
			c.ParentTargetID = parentIDs[*d.Parent]
		}
		tr, err := t.translate(d, c)
		if err != nil {
			return nil, &Error{Kind: d.Kind, Index: i, Err: err}
		}
		out = append(out, tr)
	}
	return out, nil
}

// Parents lists the distinct parents referenced by a snapshot, in first-seen order.
func Parents(decoded []Decoded) []ParentRef {
	seen := make(map[ParentRef]struct{})
	refs := make([]ParentRef, 0)
	for _, d := range decoded {
		if d.Parent == nil {
			continue
		}
		if _, ok := seen[*d.Parent]; ok {
			continue
		}
		seen[*d.Parent] = struct{}{}
		refs = append(refs, *d.Parent)
	}
	return refs
}

func (t *Translator) decode(kind models.EntityKind, payload json.RawMessage) (Decoded, error) {
	v, ok := t.variants[kind]
	if !ok {
		return Decoded{}, ErrUnknownKind
	}
	if len(payload) == 0 {
		return Decoded{}, fmt.Errorf("%w: empty payload", ErrInvalidRecord)
	}
	rec, err := v.decode(payload)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if rec.LegacyID() <= 0 {
		return Decoded{}, fmt.Errorf("%w: missing legacy id", ErrInvalidRecord)
	}
	return Decoded{
		Kind:     kind,
		Record:   rec,
		LegacyID: rec.LegacyID(),
		OwnerKey: v.owner(rec),
		Parent:   v.parent(rec),
	}, nil
}

func (t *Translator) translate(d Decoded, c Context) (Translated, error) {
	v, ok := t.variants[d.Kind]
	if !ok {
		return Translated{}, ErrUnknownKind
	}
	if d.Parent != nil && c.ParentTargetID == "" {
		return Translated{}, fmt.Errorf("%w: %s %d", ErrMissingParent, d.Parent.Kind, d.Parent.LegacyID)
	}
	return Translated{LegacyID: d.LegacyID, Request: v.build(d.Record, c)}, nil
}
