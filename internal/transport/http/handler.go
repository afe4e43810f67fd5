package httptransport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"contactsync/internal/mapping"
	"contactsync/internal/sync/models"
	"contactsync/internal/sync/resync"
	"contactsync/pkg/platform/httputil"
)

// Resynchroniser runs repairs and migrations.
type Resynchroniser interface {
	Repair(ctx context.Context, kind models.EntityKind, ownerKey string) (resync.RepairResult, error)
	Migrate(ctx context.Context, kind models.EntityKind, ownerKey, label string) (resync.MigrateResult, error)
}

// Merger re-points mappings after an upstream merge.
type Merger interface {
	Merge(ctx context.Context, ev models.MergeEvent) (models.Outcome, error)
}

// MappingStore is the subset of the mapping store exposed to operators.
type MappingStore interface {
	Get(ctx context.Context, kind models.EntityKind, legacyID int64) (*mapping.Mapping, error)
	Create(ctx context.Context, m mapping.Mapping) error
	Delete(ctx context.Context, kind models.EntityKind, legacyID int64) error
}

// Handler serves the operator API: repair and migration triggers, merges and
// direct mapping maintenance.
type Handler struct {
	resync   Resynchroniser
	merger   Merger
	mappings MappingStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewHandler(resync Resynchroniser, merger Merger, mappings MappingStore, logger *slog.Logger) *Handler {
	return &Handler{
		resync:   resync,
		merger:   merger,
		mappings: mappings,
		logger:   logger,
		now:      time.Now,
	}
}

// Register mounts the operator routes on r. Authentication is applied by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/repair/{kind}/{ownerKey}", h.handleRepair)
	r.Post("/migrate/{kind}/{ownerKey}", h.handleMigrate)
	r.Post("/merge", h.handleMerge)

	r.Post("/mappings", h.handleCreateMapping)
	r.Get("/mappings/{kind}/legacy/{legacyID}", h.handleGetMapping)
	r.Delete("/mappings/{kind}/legacy/{legacyID}", h.handleDeleteMapping)
}

func (h *Handler) handleRepair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, err := kindParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ownerKey := chi.URLParam(r, "ownerKey")

	result, err := h.resync.Repair(ctx, kind, ownerKey)
	if err != nil {
		h.writeStageError(w, r, "repair", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleMigrate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	kind, err := kindParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ownerKey := chi.URLParam(r, "ownerKey")

	result, err := h.resync.Migrate(ctx, kind, ownerKey, r.URL.Query().Get("label"))
	if err != nil {
		h.writeStageError(w, r, "migrate", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

type mergeRequest struct {
	Retained string `json:"retained"`
	Removed  string `json:"removed"`
}

type mergeResponse struct {
	Retained string `json:"retained"`
	Removed  string `json:"removed"`
	Moved    int    `json:"moved"`
}

func (h *Handler) handleMerge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req mergeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Retained == "" || req.Removed == "" {
		httputil.WriteError(w, httputil.BadRequest("retained and removed are required"))
		return
	}

	out, err := h.merger.Merge(ctx, models.MergeEvent{
		MessageID:        chimw.GetReqID(ctx),
		RetainedOwnerKey: req.Retained,
		RemovedOwnerKey:  req.Removed,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "merge failed",
			"request_id", chimw.GetReqID(ctx),
			"retained", req.Retained,
			"removed", req.Removed,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, mergeResponse{Retained: req.Retained, Removed: req.Removed, Moved: out.Count})
}

type createMappingRequest struct {
	Kind        models.EntityKind `json:"kind"`
	LegacyID    int64             `json:"legacyId"`
	TargetID    string            `json:"targetId"`
	OwnerKey    string            `json:"ownerKey"`
	MappingType mapping.Type      `json:"mappingType"`
	Label       string            `json:"label"`
}

// handleCreateMapping records a correspondence written outside this service,
// typically DPS_CREATED mappings for records the target pushed to legacy.
func (h *Handler) handleCreateMapping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createMappingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.MappingType == "" {
		req.MappingType = mapping.TypeDPSCreated
	}

	m := mapping.Mapping{
		Kind:        req.Kind,
		LegacyID:    req.LegacyID,
		TargetID:    req.TargetID,
		OwnerKey:    req.OwnerKey,
		MappingType: req.MappingType,
		Label:       req.Label,
		WhenCreated: h.now(),
	}
	if err := m.Validate(); err != nil {
		httputil.WriteError(w, httputil.BadRequest("%v", err))
		return
	}

	err := h.mappings.Create(ctx, m)
	var conflict *mapping.ConflictError
	if errors.As(err, &conflict) {
		httputil.WriteJSON(w, http.StatusConflict, conflict)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create mapping",
			"request_id", chimw.GetReqID(ctx),
			"kind", m.Kind,
			"legacy_id", m.LegacyID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	kind, legacyID, err := mappingParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	m, err := h.mappings.Get(r.Context(), kind, legacyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) handleDeleteMapping(w http.ResponseWriter, r *http.Request) {
	kind, legacyID, err := mappingParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.mappings.Delete(r.Context(), kind, legacyID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeStageError maps resync failures. Validation failures are the caller's
// fault; an ordering violation or an unavailable dependency is the remote
// side's; anything else is ours.
func (h *Handler) writeStageError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	stage := resync.FailedStage(err)
	h.logger.ErrorContext(ctx, op+" request failed",
		"request_id", chimw.GetReqID(ctx),
		"kind", chi.URLParam(r, "kind"),
		"owner_key", chi.URLParam(r, "ownerKey"),
		"stage", stage,
		"error", err,
	)

	extra := map[string]string{"stage": string(stage)}
	switch {
	case errors.Is(err, resync.ErrAlreadyMigrated):
		httputil.WriteJSON(w, http.StatusConflict, map[string]string{
			"error": "already_migrated", "error_description": err.Error(), "stage": string(stage),
		})
	case errors.Is(err, resync.ErrOrderingViolation):
		httputil.WriteJSON(w, http.StatusBadGateway, map[string]string{
			"error": "ordering_violation", "error_description": err.Error(), "stage": string(stage),
		})
	case stage == resync.StageCheck:
		httputil.WriteErrorWith(w, httputil.BadRequest("%v", err), extra)
	default:
		httputil.WriteErrorWith(w, err, extra)
	}
}

func kindParam(r *http.Request) (models.EntityKind, error) {
	kind, err := models.ParseEntityKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", httputil.BadRequest("%v", err)
	}
	return kind, nil
}

func mappingParams(r *http.Request) (models.EntityKind, int64, error) {
	kind, err := kindParam(r)
	if err != nil {
		return "", 0, err
	}
	legacyID, err := strconv.ParseInt(chi.URLParam(r, "legacyID"), 10, 64)
	if err != nil || legacyID <= 0 {
		return "", 0, httputil.BadRequest("legacy id must be a positive integer")
	}
	return kind, legacyID, nil
}
