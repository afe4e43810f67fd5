package resync

import (
	"errors"
	"fmt"

	"contactsync/internal/sync/models"
)

var (
	// ErrOrderingViolation means the target's bulk response cannot be paired
	// with the request positionally. Nothing is written to the mapping store.
	ErrOrderingViolation = errors.New("target response does not match request order")
	// ErrAlreadyMigrated rejects a first-time migration for an owner that
	// already has mappings; use repair instead.
	ErrAlreadyMigrated = errors.New("owner already has mappings")
)

// Stage names one step of a repair or migration.
type Stage string

const (
	StageCheck     Stage = "check"
	StageSnapshot  Stage = "snapshot"
	StageTranslate Stage = "translate"
	StageParents   Stage = "parents"
	StageReset     Stage = "reset"
	StageMigrate   Stage = "migrate"
	StageZip       Stage = "zip"
	StageMappings  Stage = "mappings"
)

// StageError reports which step failed. Steps before it completed; steps
// after it did not run.
type StageError struct {
	Stage    Stage
	Kind     models.EntityKind
	OwnerKey string
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Kind, e.OwnerKey, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// FailedStage returns the stage of err, or "" when err is not a StageError.
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
