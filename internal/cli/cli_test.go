package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Token  string
	Body   map[string]any
}

func fakeServer(t *testing.T, status int, response any) (*httptest.Server, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.Method = r.Method
		rec.Path = r.URL.Path
		rec.Query = r.URL.RawQuery
		rec.Token = r.Header.Get("X-Admin-Token")
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		}
		if response == nil {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func execute(t *testing.T, server string, args ...string) (string, string, error) {
	t.Helper()
	color.NoColor = true

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--server", server, "--admin-token", "s3cret"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRepairText(t *testing.T) {
	srv, rec := fakeServer(t, http.StatusOK, map[string]any{
		"kind": "contact-address", "ownerKey": "1234", "created": 2, "updated": 1, "removed": 0,
	})

	out, _, err := execute(t, srv.URL, "repair", "contact-address", "1234")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.Method)
	assert.Equal(t, "/repair/contact-address/1234", rec.Path)
	assert.Equal(t, "s3cret", rec.Token)
	golden(t).Assert(t, "repair_text", []byte(out))
}

func TestMigrateJSON(t *testing.T) {
	srv, rec := fakeServer(t, http.StatusOK, map[string]any{
		"kind": "prisoner-contact", "ownerKey": "A1234BC", "label": "2026-batch-1", "migrated": 3, "skipped": 1,
	})

	out, _, err := execute(t, srv.URL, "--format", "json", "migrate", "prisoner-contact", "A1234BC", "--label", "2026-batch-1")
	require.NoError(t, err)

	assert.Equal(t, "/migrate/prisoner-contact/A1234BC", rec.Path)
	assert.Equal(t, "label=2026-batch-1", rec.Query)
	golden(t).Assert(t, "migrate_json", []byte(out))
}

func TestRepairStageFailure(t *testing.T) {
	srv, _ := fakeServer(t, http.StatusBadGateway, map[string]string{
		"error":             "ordering_violation",
		"error_description": "target returned 1 records for 2 sent",
		"stage":             "zip",
	})

	_, errOut, err := execute(t, srv.URL, "repair", "contact", "1234")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, errOut, "✗ repair failed at stage zip (ordering_violation: target returned 1 records for 2 sent)")
}

func TestMergeSendsOwnerKeys(t *testing.T) {
	srv, rec := fakeServer(t, http.StatusOK, map[string]any{"retained": "A1111AA", "removed": "B2222BB", "moved": 4})

	out, _, err := execute(t, srv.URL, "merge", "A1111AA", "B2222BB")
	require.NoError(t, err)

	assert.Equal(t, "/merge", rec.Path)
	assert.Equal(t, map[string]any{"retained": "A1111AA", "removed": "B2222BB"}, rec.Body)
	assert.Equal(t, "✓ merged B2222BB into A1111AA: 4 mappings moved\n", out)
}

func TestMappingCommands(t *testing.T) {
	t.Run("get prints the mapping", func(t *testing.T) {
		srv, rec := fakeServer(t, http.StatusOK, map[string]any{
			"kind": "contact-phone", "legacyId": 77, "targetId": "9001", "ownerKey": "1234",
			"mappingType": "NOMIS_CREATED", "whenCreated": "2026-03-01T10:00:00Z",
		})

		out, _, err := execute(t, srv.URL, "mapping", "get", "contact-phone", "77")
		require.NoError(t, err)
		assert.Equal(t, http.MethodGet, rec.Method)
		assert.Equal(t, "/mappings/contact-phone/legacy/77", rec.Path)
		golden(t).Assert(t, "mapping_get_text", []byte(out))
	})

	t.Run("create posts flags as the request body", func(t *testing.T) {
		srv, rec := fakeServer(t, http.StatusCreated, map[string]any{
			"kind": "contact", "legacyId": 5, "targetId": "50", "ownerKey": "5", "mappingType": "DPS_CREATED",
		})

		_, _, err := execute(t, srv.URL, "mapping", "create",
			"--kind", "contact", "--legacy-id", "5", "--target-id", "50", "--owner", "5")
		require.NoError(t, err)
		assert.Equal(t, "/mappings", rec.Path)
		assert.Equal(t, "contact", rec.Body["kind"])
		assert.EqualValues(t, 5, rec.Body["legacyId"])
		assert.NotContains(t, rec.Body, "mappingType")
	})

	t.Run("delete reports success", func(t *testing.T) {
		srv, rec := fakeServer(t, http.StatusNoContent, nil)

		out, _, err := execute(t, srv.URL, "mapping", "delete", "contact", "5")
		require.NoError(t, err)
		assert.Equal(t, http.MethodDelete, rec.Method)
		assert.Equal(t, "✓ mapping contact/5 deleted\n", out)
	})

	t.Run("not found surfaces the api error", func(t *testing.T) {
		srv, _ := fakeServer(t, http.StatusNotFound, map[string]string{"error": "not_found", "error_description": "mapping not found"})

		_, errOut, err := execute(t, srv.URL, "mapping", "get", "contact", "5")
		require.Error(t, err)
		assert.Contains(t, errOut, "✗ mapping get failed (not_found: mapping not found)")
	})
}

func TestArgumentValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown kind", args: []string{"repair", "visitor", "1"}, want: "unknown entity kind"},
		{name: "bad legacy id", args: []string{"mapping", "get", "contact", "abc"}, want: "must be a positive integer"},
		{name: "bad format", args: []string{"--format", "yaml", "merge", "a", "b"}, want: "invalid format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "http://127.0.0.1:1", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
