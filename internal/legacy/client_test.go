package legacy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactsync/internal/sync/models"
	"contactsync/pkg/platform/sentinel"
)

func newTestClient(t *testing.T) (*HTTPClient, *[]string) {
	t.Helper()
	var paths []string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /persons/101", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"personId":101,"firstName":"JOHN"}`))
	})
	mux.HandleFunc("GET /persons/emails/11", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"emailAddressId":11}`))
	})
	mux.HandleFunc("GET /persons/101/emails", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"emailAddressId":11},{"emailAddressId":12}]`))
	})
	mux.HandleFunc("GET /prisoners/A1234BC/phones", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	mux.HandleFunc("GET /prisoners/restrictions/7", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(srv.URL, time.Second, nil)
	require.NoError(t, err)
	return client, &paths
}

func TestGet(t *testing.T) {
	client, paths := newTestClient(t)
	ctx := context.Background()

	t.Run("aggregate root", func(t *testing.T) {
		raw, err := client.Get(ctx, models.KindContact, 101)
		require.NoError(t, err)
		assert.JSONEq(t, `{"personId":101,"firstName":"JOHN"}`, string(raw))
	})

	t.Run("child record", func(t *testing.T) {
		raw, err := client.Get(ctx, models.KindContactEmail, 11)
		require.NoError(t, err)
		assert.JSONEq(t, `{"emailAddressId":11}`, string(raw))
	})

	t.Run("missing record wraps not found", func(t *testing.T) {
		_, err := client.Get(ctx, models.KindContactPhone, 99)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		var le *Error
		require.ErrorAs(t, err, &le)
		assert.Equal(t, http.StatusNotFound, le.StatusCode)
		assert.False(t, le.Retryable)
	})

	t.Run("server failure is retryable", func(t *testing.T) {
		_, err := client.Get(ctx, models.KindPrisonerRestriction, 7)
		var le *Error
		require.ErrorAs(t, err, &le)
		assert.True(t, le.Retryable)
		assert.ErrorIs(t, err, sentinel.ErrUnavailable)
	})

	t.Run("unknown kind is refused before any request", func(t *testing.T) {
		before := len(*paths)
		_, err := client.Get(ctx, models.EntityKind("visit"), 1)
		require.Error(t, err)
		assert.Len(t, *paths, before)
	})
}

func TestSnapshot(t *testing.T) {
	client, paths := newTestClient(t)
	ctx := context.Background()

	t.Run("contact snapshot is the person record", func(t *testing.T) {
		records, err := client.Snapshot(ctx, models.KindContact, "101")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.JSONEq(t, `{"personId":101,"firstName":"JOHN"}`, string(records[0]))
	})

	t.Run("child snapshot keeps legacy order", func(t *testing.T) {
		records, err := client.Snapshot(ctx, models.KindContactEmail, "101")
		require.NoError(t, err)
		require.Len(t, records, 2)

		var first struct {
			ID int64 `json:"emailAddressId"`
		}
		require.NoError(t, json.Unmarshal(records[0], &first))
		assert.Equal(t, int64(11), first.ID)
		assert.Contains(t, *paths, "/persons/101/emails")
	})

	t.Run("null list is empty", func(t *testing.T) {
		records, err := client.Snapshot(ctx, models.KindPrisonerPhone, "A1234BC")
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	})

	t.Run("unknown owner", func(t *testing.T) {
		_, err := client.Snapshot(ctx, models.KindPrisonerAddress, "Z9999ZZ")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
