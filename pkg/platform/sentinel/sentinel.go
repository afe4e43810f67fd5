package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and remote clients return
// these (optionally wrapped) so the sync services can decide what is tolerable:
// - ErrNotFound: record does not exist in the store or the remote system
// - ErrConflict: record already exists for the same key
// - ErrUnavailable: dependency temporarily unavailable, worth redelivering
// - ErrInvalidState: response does not satisfy the contract we rely on
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)
