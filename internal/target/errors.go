package target

import (
	"errors"
	"fmt"

	"contactsync/internal/platform/restclient"
	"contactsync/internal/sync/models"
	"contactsync/pkg/platform/sentinel"
)

// DuplicateError is returned when a create collides with a record the target
// already holds. Existing is the id to adopt.
type DuplicateError struct {
	Kind      models.EntityKind
	Duplicate Assigned
	Existing  Assigned
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("target %s duplicate: attempted %q, existing %q", e.Kind, e.Duplicate.TargetID, e.Existing.TargetID)
}

func (e *DuplicateError) Unwrap() error { return sentinel.ErrConflict }

// Error is any other failed target call. Retryable errors wrap
// sentinel.ErrUnavailable; a 404 wraps sentinel.ErrNotFound.
type Error struct {
	Op         string
	Kind       models.EntityKind
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("target %s %s: status %d: %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("target %s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a transient target failure.
func IsRetryable(err error) bool {
	var te *Error
	return errors.As(err, &te) && te.Retryable
}

func wrapError(op string, kind models.EntityKind, err error) error {
	var status *restclient.StatusError
	if errors.As(err, &status) {
		return &Error{Op: op, Kind: kind, StatusCode: status.StatusCode, Retryable: status.Retryable(), Err: err}
	}
	return &Error{Op: op, Kind: kind, Retryable: errors.Is(err, sentinel.ErrUnavailable), Err: err}
}
