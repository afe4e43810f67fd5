package models

// Result is the terminal state of processing one event.
type Result string

const (
	ResultCreated Result = "created"
	ResultUpdated Result = "updated"
	ResultDeleted Result = "deleted"
	ResultSkipped Result = "skipped"
	ResultNoop    Result = "noop"
	ResultMerged  Result = "merged"
)

// Outcome is reported for every processed event so telemetry can attach
// identifiers without the reconciler logging anything itself.
type Outcome struct {
	Result    Result
	EventType string
	Kind      EntityKind
	LegacyID  int64
	TargetID  string
	OwnerKey  string
	// Adopted is set when an existing target record was reused after a
	// duplicate conflict.
	Adopted bool
	// Count carries the number of re-pointed mappings for merges.
	Count int
}
