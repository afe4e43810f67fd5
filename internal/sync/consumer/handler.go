// Package consumer turns inbound change notifications into reconciler calls.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"contactsync/internal/legacy"
	"contactsync/internal/mapping"
	"contactsync/internal/platform/kafka/consumer"
	"contactsync/internal/platform/metrics"
	"contactsync/internal/sync/models"
	"contactsync/internal/sync/origin"
	"contactsync/internal/sync/reconcile"
	"contactsync/internal/sync/translate"
	"contactsync/internal/target"
	"contactsync/pkg/platform/sentinel"
)

// Reconciler processes decoded events.
type Reconciler interface {
	Reconcile(ctx context.Context, ev models.ChangeEvent) (models.Outcome, error)
	Merge(ctx context.Context, ev models.MergeEvent) (models.Outcome, error)
}

// Ledger remembers processed message ids.
type Ledger interface {
	Seen(ctx context.Context, messageID string) (bool, error)
	Mark(ctx context.Context, messageID string) error
}

// envelope is the wire shape of a change notification.
type envelope struct {
	EventType             string          `json:"eventType"`
	AdditionalInformation information     `json:"additionalInformation"`
	Attributes            json.RawMessage `json:"attributes,omitempty"`
}

type information struct {
	EntityID         int64  `json:"entityId"`
	OwnerKey         string `json:"ownerKey"`
	IsUpdated        bool   `json:"isUpdated"`
	OriginModule     string `json:"originModule"`
	RetainedOwnerKey string `json:"retainedOwnerKey"`
	RemovedOwnerKey  string `json:"removedOwnerKey"`
}

// Handler decodes a message, classifies its origin and hands it to the
// reconciler. Errors worth retrying are returned so the message is
// redelivered; permanent ones are logged and the message is committed.
type Handler struct {
	reconciler Reconciler
	classifier *origin.Classifier
	ledger     Ledger
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

type Option func(*Handler)

// WithLedger enables processed-message dedupe.
func WithLedger(l Ledger) Option {
	return func(h *Handler) {
		h.ledger = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

func NewHandler(reconciler Reconciler, classifier *origin.Classifier, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		reconciler: reconciler,
		classifier: classifier,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// MessageIDHeader carries a producer-assigned id that survives republishing.
const MessageIDHeader = "messageId"

// MessageID identifies a single record for dedupe. The record key is a
// partition key shared by every event about one entity, so it is never used.
func MessageID(msg *consumer.Message) string {
	if id := msg.Headers[MessageIDHeader]; id != "" {
		return id
	}
	return fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset)
}

func (h *Handler) Handle(ctx context.Context, msg *consumer.Message) error {
	messageID := MessageID(msg)

	if h.ledger != nil {
		seen, err := h.ledger.Seen(ctx, messageID)
		if err != nil {
			h.logger.WarnContext(ctx, "dedupe ledger unavailable, processing anyway",
				"message_id", messageID,
				"error", err,
			)
		}
		if seen {
			h.metrics.IncrementDedupeHit()
			h.logger.DebugContext(ctx, "skipping already processed message", "message_id", messageID)
			return nil
		}
	}

	var env envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		h.logger.ErrorContext(ctx, "failed to unmarshal change notification",
			"message_id", messageID,
			"error", err,
		)
		// Malformed messages should not block the partition.
		return nil
	}

	if err := h.dispatch(ctx, messageID, env); err != nil {
		if !Retryable(err) {
			h.logger.ErrorContext(ctx, "dropping message after permanent failure",
				"message_id", messageID,
				"event_type", env.EventType,
				"error", err,
			)
			return nil
		}
		return err
	}

	if h.ledger != nil {
		if err := h.ledger.Mark(ctx, messageID); err != nil {
			h.logger.WarnContext(ctx, "failed to mark message processed",
				"message_id", messageID,
				"error", err,
			)
		}
	}
	return nil
}

func (h *Handler) dispatch(ctx context.Context, messageID string, env envelope) error {
	info := env.AdditionalInformation
	if models.IsMergeEventType(env.EventType) {
		_, err := h.reconciler.Merge(ctx, models.MergeEvent{
			MessageID:        messageID,
			RetainedOwnerKey: info.RetainedOwnerKey,
			RemovedOwnerKey:  info.RemovedOwnerKey,
		})
		return err
	}

	kind, action, err := models.ParseEventType(env.EventType)
	if err != nil {
		return &permanentError{err: err}
	}
	ev := models.ChangeEvent{
		MessageID:    messageID,
		EventType:    env.EventType,
		Kind:         kind,
		Action:       action,
		EntityID:     info.EntityID,
		OwnerKey:     info.OwnerKey,
		IsUpdated:    info.IsUpdated || action == models.ActionUpdated,
		OriginModule: info.OriginModule,
		Attributes:   env.Attributes,
	}
	_, err = h.reconciler.Reconcile(ctx, h.classifier.Apply(ev))
	return err
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Retryable reports whether redelivering the message might succeed. Bad
// records and rejected requests will fail the same way every time; anything
// else, including unmapped parents that may arrive later, is retried.
func Retryable(err error) bool {
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	if errors.Is(err, translate.ErrInvalidRecord) ||
		errors.Is(err, translate.ErrUnknownKind) ||
		errors.Is(err, reconcile.ErrNoRecord) ||
		errors.Is(err, sentinel.ErrInvalidState) {
		return false
	}
	var conflict *mapping.ConflictError
	if errors.As(err, &conflict) {
		return false
	}

	var te *target.Error
	if errors.As(err, &te) {
		return te.Retryable || !rejected(te.StatusCode)
	}
	var le *legacy.Error
	if errors.As(err, &le) {
		return le.Retryable || !rejected(le.StatusCode)
	}
	return true
}

// rejected reports whether a status means the request itself was refused.
// Auth failures are credentials problems and are retried once fixed.
func rejected(status int) bool {
	switch status {
	case 0, http.StatusUnauthorized, http.StatusForbidden:
		return false
	default:
		return status >= 400 && status < 500
	}
}
