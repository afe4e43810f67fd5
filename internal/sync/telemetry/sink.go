// Package telemetry turns reconciliation outcomes into logs and metrics.
package telemetry

import (
	"context"
	"log/slog"
	"time"

	"contactsync/internal/platform/metrics"
	"contactsync/internal/sync/models"
)

// Sink logs and counts every reconciled event.
type Sink struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewSink builds a sink. m may be nil.
func NewSink(logger *slog.Logger, m *metrics.Metrics) *Sink {
	return &Sink{logger: logger, metrics: m}
}

func (s *Sink) Observe(ctx context.Context, ev models.ChangeEvent, out models.Outcome, err error, elapsed time.Duration) {
	kind := ev.Kind.String()
	if ev.EventType == models.EventTypeMerge {
		kind = models.EventTypeMerge
	}
	s.metrics.ObserveReconcileLatency(kind, elapsed)

	if err != nil {
		s.metrics.IncrementFailure(kind)
		s.logger.ErrorContext(ctx, "event reconciliation failed",
			"message_id", ev.MessageID,
			"event_type", ev.EventType,
			"kind", kind,
			"legacy_id", ev.EntityID,
			"owner_key", ev.OwnerKey,
			"origin", ev.Origin.String(),
			"error", err,
		)
		return
	}

	s.metrics.IncrementOutcome(kind, string(out.Result))
	level := slog.LevelInfo
	if out.Result == models.ResultSkipped || out.Result == models.ResultNoop {
		level = slog.LevelDebug
	}
	s.logger.Log(ctx, level, "event reconciled",
		"message_id", ev.MessageID,
		"event_type", out.EventType,
		"kind", kind,
		"result", out.Result,
		"legacy_id", out.LegacyID,
		"target_id", out.TargetID,
		"owner_key", out.OwnerKey,
		"origin", ev.Origin.String(),
		"origin_module", ev.OriginModule,
		"adopted", out.Adopted,
		"count", out.Count,
		"duration_ms", elapsed.Milliseconds(),
	)
}
