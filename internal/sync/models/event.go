package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Action is what happened to the legacy row.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Origin records who caused a legacy write. It is computed once when the
// event is ingested and never re-derived downstream.
type Origin int

const (
	OriginUnclassified Origin = iota
	OriginLegacy
	OriginTarget
)

func (o Origin) String() string {
	switch o {
	case OriginLegacy:
		return "legacy"
	case OriginTarget:
		return "target"
	default:
		return "unclassified"
	}
}

// ChangeEvent is one inbound legacy change notification.
type ChangeEvent struct {
	MessageID    string
	EventType    string
	Kind         EntityKind
	Action       Action
	EntityID     int64
	OwnerKey     string
	IsUpdated    bool
	OriginModule string
	Origin       Origin
	// Attributes holds the legacy record as sent with the event. When empty the
	// reconciler reads the current record from the legacy system instead.
	Attributes json.RawMessage
}

// IsDelete reports whether the event removes the legacy row.
func (e ChangeEvent) IsDelete() bool {
	return e.Action == ActionDeleted
}

// MergeEvent reports that two legacy aggregate roots were merged upstream.
type MergeEvent struct {
	MessageID        string
	RetainedOwnerKey string
	RemovedOwnerKey  string
}

// EventTypeMerge is the event type of aggregate-root merges.
const EventTypeMerge = "merged"

// EventType formats the wire event type for a kind and action, e.g.
// "contact-phone.created".
func EventType(kind EntityKind, action Action) string {
	return string(kind) + "." + string(action)
}

// ParseEventType splits a wire event type into its kind and action.
func ParseEventType(eventType string) (EntityKind, Action, error) {
	i := strings.LastIndexByte(eventType, '.')
	if i <= 0 {
		return "", "", fmt.Errorf("malformed event type %q", eventType)
	}
	kind, err := ParseEntityKind(eventType[:i])
	if err != nil {
		return "", "", err
	}
	action := Action(eventType[i+1:])
	switch action {
	case ActionCreated, ActionUpdated, ActionDeleted:
		return kind, action, nil
	default:
		return "", "", fmt.Errorf("unknown action %q in event type %q", action, eventType)
	}
}

// IsMergeEventType reports whether eventType announces an aggregate-root
// merge, e.g. "person.merged" or "prisoner.merged".
func IsMergeEventType(eventType string) bool {
	scope, action, ok := strings.Cut(eventType, ".")
	return ok && action == EventTypeMerge && (scope == string(OwnerPerson) || scope == string(OwnerPrisoner))
}
