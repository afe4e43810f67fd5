package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"contactsync/internal/mapping"
	"contactsync/internal/mapping/store"
	"contactsync/internal/platform/logger"
	"contactsync/internal/platform/servicetoken"
	"contactsync/internal/sync/models"
	"contactsync/internal/sync/resync"
	"contactsync/pkg/platform/sentinel"
)

const adminToken = "s3cret"

type fakeResync struct {
	repairErr  error
	migrateErr error
	label      string
}

func (f *fakeResync) Repair(_ context.Context, kind models.EntityKind, ownerKey string) (resync.RepairResult, error) {
	if f.repairErr != nil {
		return resync.RepairResult{}, f.repairErr
	}
	return resync.RepairResult{Kind: kind, OwnerKey: ownerKey, Created: 2, Updated: 1, Removed: 1}, nil
}

func (f *fakeResync) Migrate(_ context.Context, kind models.EntityKind, ownerKey, label string) (resync.MigrateResult, error) {
	f.label = label
	if f.migrateErr != nil {
		return resync.MigrateResult{}, f.migrateErr
	}
	return resync.MigrateResult{Kind: kind, OwnerKey: ownerKey, Label: label, Migrated: 3}, nil
}

type fakeMerger struct {
	got models.MergeEvent
	err error
}

func (f *fakeMerger) Merge(_ context.Context, ev models.MergeEvent) (models.Outcome, error) {
	f.got = ev
	if f.err != nil {
		return models.Outcome{}, f.err
	}
	return models.Outcome{Result: models.ResultMerged, Count: 4}, nil
}

type rejectAll struct{}

func (rejectAll) Validate(string) (*servicetoken.Claims, error) {
	return nil, servicetoken.ErrInvalidToken
}

type HandlerSuite struct {
	suite.Suite
	resync   *fakeResync
	merger   *fakeMerger
	mappings *store.InMemoryStore
	router   http.Handler
	now      time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.resync = &fakeResync{}
	s.merger = &fakeMerger{}
	s.mappings = store.NewInMemoryStore()
	s.now = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	log := logger.Discard()
	h := NewHandler(s.resync, s.merger, s.mappings, log)
	h.now = func() time.Time { return s.now }

	s.router = NewRouter(RouterConfig{
		Handler:    h,
		Validator:  rejectAll{},
		AdminToken: adminToken,
		Logger:     log,
		Checks: map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
		},
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# metrics\n"))
		}),
	})
}

func (s *HandlerSuite) do(method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Admin-Token", adminToken)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func (s *HandlerSuite) TestAuthentication() {
	req := httptest.NewRequest(http.MethodPost, "/repair/contact/101", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)

	s.Run("health and metrics are public", func() {
		for _, path := range []string{"/health", "/metrics"} {
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			s.Equal(http.StatusOK, rec.Code, path)
		}
	})
}

func (s *HandlerSuite) TestRepair() {
	s.Run("returns the diff", func() {
		rec, body := s.do(http.MethodPost, "/repair/contact/101", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("contact", body["kind"])
		s.Equal("101", body["ownerKey"])
		s.Equal(2.0, body["created"])
		s.Equal(1.0, body["removed"])
	})

	s.Run("unknown kind", func() {
		rec, body := s.do(http.MethodPost, "/repair/visit/101", "")
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("bad_request", body["error"])
	})

	tests := []struct {
		name   string
		err    error
		status int
		code   string
		stage  string
	}{
		{
			name:   "snapshot unavailable",
			err:    &resync.StageError{Stage: resync.StageSnapshot, Err: sentinel.ErrUnavailable},
			status: http.StatusBadGateway, code: "upstream_unavailable", stage: "snapshot",
		},
		{
			name:   "ordering violation",
			err:    &resync.StageError{Stage: resync.StageZip, Err: fmt.Errorf("%w: position 0 has no id", resync.ErrOrderingViolation)},
			status: http.StatusBadGateway, code: "ordering_violation", stage: "zip",
		},
		{
			name:   "bad owner",
			err:    &resync.StageError{Stage: resync.StageCheck, Err: errors.New("owner key is required")},
			status: http.StatusBadRequest, code: "bad_request", stage: "check",
		},
		{
			name:   "mapping write failure",
			err:    &resync.StageError{Stage: resync.StageMappings, Err: errors.New("connection reset")},
			status: http.StatusInternalServerError, code: "internal_error", stage: "mappings",
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.resync.repairErr = tt.err
			defer func() { s.resync.repairErr = nil }()

			rec, body := s.do(http.MethodPost, "/repair/contact/101", "")
			s.Equal(tt.status, rec.Code)
			s.Equal(tt.code, body["error"])
			s.Equal(tt.stage, body["stage"])
		})
	}

	s.Run("internal errors hide their description", func() {
		s.resync.repairErr = &resync.StageError{Stage: resync.StageMappings, Err: errors.New("pq: password authentication failed")}
		defer func() { s.resync.repairErr = nil }()

		_, body := s.do(http.MethodPost, "/repair/contact/101", "")
		s.NotContains(body, "error_description")
	})
}

func (s *HandlerSuite) TestMigrate() {
	rec, body := s.do(http.MethodPost, "/migrate/prisoner-phone/A1234BC?label=2025-03-01T09:00:00", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("2025-03-01T09:00:00", s.resync.label)
	s.Equal(3.0, body["migrated"])

	s.Run("already migrated is a conflict", func() {
		s.resync.migrateErr = &resync.StageError{
			Stage: resync.StageCheck,
			Err:   fmt.Errorf("%w: 2 prisoner-phone mappings", resync.ErrAlreadyMigrated),
		}
		defer func() { s.resync.migrateErr = nil }()

		rec, body := s.do(http.MethodPost, "/migrate/prisoner-phone/A1234BC", "")
		s.Equal(http.StatusConflict, rec.Code)
		s.Equal("already_migrated", body["error"])
		s.Equal("check", body["stage"])
	})
}

func (s *HandlerSuite) TestMerge() {
	rec, body := s.do(http.MethodPost, "/merge", `{"retained":"A1234BC","removed":"B9999ZZ"}`)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(4.0, body["moved"])
	s.Equal("A1234BC", s.merger.got.RetainedOwnerKey)
	s.Equal("B9999ZZ", s.merger.got.RemovedOwnerKey)
	s.NotEmpty(s.merger.got.MessageID, "request id doubles as the message id")

	s.Run("missing owner", func() {
		rec, _ := s.do(http.MethodPost, "/merge", `{"retained":"A1234BC"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("unknown fields", func() {
		rec, _ := s.do(http.MethodPost, "/merge", `{"retained":"A","removed":"B","force":true}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("wrong content type", func() {
		req := httptest.NewRequest(http.MethodPost, "/merge", strings.NewReader(`retained=A`))
		req.Header.Set("X-Admin-Token", adminToken)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		s.Equal(http.StatusUnsupportedMediaType, rec.Code)
	})

	s.Run("store failure", func() {
		s.merger.err = fmt.Errorf("replace mappings after merge: %w", sentinel.ErrUnavailable)
		defer func() { s.merger.err = nil }()
		rec, _ := s.do(http.MethodPost, "/merge", `{"retained":"A","removed":"B"}`)
		s.Equal(http.StatusBadGateway, rec.Code)
	})
}

func (s *HandlerSuite) TestMappings() {
	ctx := context.Background()

	rec, body := s.do(http.MethodPost, "/mappings",
		`{"kind":"contact-email","legacyId":11,"targetId":"110","ownerKey":"101"}`)
	s.Require().Equal(http.StatusCreated, rec.Code)
	s.Equal(string(mapping.TypeDPSCreated), body["mappingType"], "type defaults to DPS_CREATED")

	stored, err := s.mappings.Get(ctx, models.KindContactEmail, 11)
	s.Require().NoError(err)
	s.Equal("110", stored.TargetID)
	s.True(stored.WhenCreated.Equal(s.now))

	s.Run("get", func() {
		rec, body := s.do(http.MethodGet, "/mappings/contact-email/legacy/11", "")
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("110", body["targetId"])
	})

	s.Run("duplicate carries both records", func() {
		rec, body := s.do(http.MethodPost, "/mappings",
			`{"kind":"contact-email","legacyId":11,"targetId":"999","ownerKey":"101","mappingType":"MIGRATED"}`)
		s.Equal(http.StatusConflict, rec.Code)
		s.Equal("999", body["duplicate"].(map[string]any)["targetId"])
		s.Equal("110", body["existing"].(map[string]any)["targetId"])
	})

	s.Run("invalid mapping", func() {
		rec, _ := s.do(http.MethodPost, "/mappings", `{"kind":"contact-email","legacyId":0,"targetId":"1"}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("bad legacy id", func() {
		rec, _ := s.do(http.MethodGet, "/mappings/contact-email/legacy/abc", "")
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("delete then missing", func() {
		rec, _ := s.do(http.MethodDelete, "/mappings/contact-email/legacy/11", "")
		s.Equal(http.StatusNoContent, rec.Code)

		rec, body := s.do(http.MethodGet, "/mappings/contact-email/legacy/11", "")
		s.Equal(http.StatusNotFound, rec.Code)
		s.Equal("not_found", body["error"])
	})
}

func (s *HandlerSuite) TestHealthDegraded() {
	log := logger.Discard()
	router := NewRouter(RouterConfig{
		Handler: NewHandler(s.resync, s.merger, s.mappings, log),
		Logger:  log,
		Checks: map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		},
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.JSONEq(`{"status":"degraded","checks":{"postgres":"ok","redis":"connection refused"}}`, rec.Body.String())
}
