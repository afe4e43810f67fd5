package mapping

import (
	"fmt"

	"contactsync/pkg/platform/sentinel"
)

// ConflictError is returned when a create collides with a mapping that already
// exists for the same legacy id or target id. Both payloads are carried so the
// caller can adopt the existing target id.
type ConflictError struct {
	Duplicate Mapping `json:"duplicate"`
	Existing  Mapping `json:"existing"`
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("mapping conflict for %s legacy id %d: existing target id %s, duplicate target id %s",
		e.Existing.Kind, e.Duplicate.LegacyID, e.Existing.TargetID, e.Duplicate.TargetID)
}

func (e *ConflictError) Unwrap() error {
	return sentinel.ErrConflict
}
