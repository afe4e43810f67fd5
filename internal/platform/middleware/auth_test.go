package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"contactsync/internal/platform/logger"
	"contactsync/internal/platform/servicetoken"
)

type stubValidator struct{ valid string }

func (v stubValidator) Validate(token string) (*servicetoken.Claims, error) {
	if token != v.valid {
		return nil, errors.New("invalid")
	}
	return &servicetoken.Claims{ClientID: "ops"}, nil
}

func TestRequireOperator(t *testing.T) {
	log := logger.Discard()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		adminToken string
		headers    map[string]string
		want       int
	}{
		{name: "admin token", adminToken: "s3cret", headers: map[string]string{"X-Admin-Token": "s3cret"}, want: http.StatusTeapot},
		{name: "wrong admin token", adminToken: "s3cret", headers: map[string]string{"X-Admin-Token": "guess"}, want: http.StatusUnauthorized},
		{name: "admin path disabled", adminToken: "", headers: map[string]string{"X-Admin-Token": ""}, want: http.StatusUnauthorized},
		{name: "bearer token", headers: map[string]string{"Authorization": "Bearer good"}, want: http.StatusTeapot},
		{name: "bad bearer token", headers: map[string]string{"Authorization": "Bearer bad"}, want: http.StatusUnauthorized},
		{name: "basic auth", headers: map[string]string{"Authorization": "Basic good"}, want: http.StatusUnauthorized},
		{name: "no credentials", adminToken: "s3cret", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RequireOperator(stubValidator{valid: "good"}, tt.adminToken, log)(ok)
			req := httptest.NewRequest(http.MethodPost, "/repair/contact/101", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"unauthorized","error_description":"service token or admin token required"}`, rec.Body.String())
			}
		})
	}

	t.Run("nil validator only accepts the admin token", func(t *testing.T) {
		h := RequireOperator(nil, "s3cret", log)(ok)
		req := httptest.NewRequest(http.MethodGet, "/mappings/contact/legacy/1", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
