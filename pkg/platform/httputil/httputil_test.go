package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"contactsync/pkg/platform/sentinel"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, fmt.Errorf("db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, BadRequest("invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", body["error"])
		}
		if !strings.Contains(body["error_description"], "invalid input") {
			t.Fatalf("expected error_description to be returned for bad request")
		}
	})

	t.Run("wrapped sentinels map to their status", func(t *testing.T) {
		cases := map[error]int{
			fmt.Errorf("get: %w", sentinel.ErrNotFound):      http.StatusNotFound,
			fmt.Errorf("create: %w", sentinel.ErrConflict):   http.StatusConflict,
			fmt.Errorf("reset: %w", sentinel.ErrUnavailable): http.StatusBadGateway,
		}
		for err, want := range cases {
			w := httptest.NewRecorder()
			WriteError(w, err)
			if w.Code != want {
				t.Fatalf("%v: expected status %d, got %d", err, want, w.Code)
			}
		}
	})

	t.Run("extra fields are included", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteErrorWith(w, fmt.Errorf("boom"), map[string]string{"stage": "reset"})

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["stage"] != "reset" {
			t.Fatalf("expected stage reset, got %q", body["stage"])
		}
	})
}
