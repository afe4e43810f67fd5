// Package target writes translated records to the contacts system.
package target

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"contactsync/internal/platform/restclient"
	"contactsync/internal/sync/models"
	"contactsync/pkg/platform/sentinel"
)

// Assigned is a target id handed back by a write. LegacyID is echoed by bulk
// endpoints when the target supports it and is zero otherwise.
type Assigned struct {
	TargetID string `json:"id"`
	LegacyID int64  `json:"legacyId,omitempty"`
}

// BulkItem is one record of a migrate or reset call.
type BulkItem struct {
	LegacyID int64   `json:"legacyId"`
	Record   Request `json:"record"`
}

type bulkRequest struct {
	Records []BulkItem `json:"records"`
}

type bulkResponse struct {
	Records []Assigned `json:"records"`
}

type duplicateBody struct {
	Duplicate Assigned `json:"duplicate"`
	Existing  Assigned `json:"existing"`
}

// HTTPClient talks to the target write API.
type HTTPClient struct {
	rest *restclient.Client
}

// NewHTTPClient builds a client for baseURL. tokens signs every request.
func NewHTTPClient(baseURL string, timeout time.Duration, tokens restclient.TokenSource) (*HTTPClient, error) {
	rest, err := restclient.New("target", baseURL, timeout, tokens)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{rest: rest}, nil
}

// Create writes a new record and returns its target id.
func (c *HTTPClient) Create(ctx context.Context, kind models.EntityKind, req Request) (string, error) {
	var created Assigned
	err := c.rest.Do(ctx, http.MethodPost, restclient.Path("sync", kind.String()), req, &created)
	if err != nil {
		if dup := duplicate(kind, err); dup != nil {
			return "", dup
		}
		return "", wrapError("create", kind, err)
	}
	if created.TargetID == "" {
		return "", &Error{Op: "create", Kind: kind, Err: errors.New("response carried no id")}
	}
	return created.TargetID, nil
}

// Update replaces the record held under targetID.
func (c *HTTPClient) Update(ctx context.Context, kind models.EntityKind, targetID string, req Request) error {
	if err := c.rest.Do(ctx, http.MethodPut, restclient.Path("sync", kind.String(), targetID), req, nil); err != nil {
		return wrapError("update", kind, err)
	}
	return nil
}

// Delete removes the record. A record that is already gone is not an error.
func (c *HTTPClient) Delete(ctx context.Context, kind models.EntityKind, targetID string) error {
	err := c.rest.Do(ctx, http.MethodDelete, restclient.Path("sync", kind.String(), targetID), nil, nil)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return wrapError("delete", kind, err)
	}
	return nil
}

// Migrate creates every record of an owner in one call. The response is in
// request order.
func (c *HTTPClient) Migrate(ctx context.Context, kind models.EntityKind, ownerKey string, items []BulkItem) ([]Assigned, error) {
	return c.bulk(ctx, "migrate", kind, ownerKey, items)
}

// Reset discards every target record of the owner for kind and recreates
// them from items. The response is in request order.
func (c *HTTPClient) Reset(ctx context.Context, kind models.EntityKind, ownerKey string, items []BulkItem) ([]Assigned, error) {
	return c.bulk(ctx, "reset", kind, ownerKey, items)
}

func (c *HTTPClient) bulk(ctx context.Context, op string, kind models.EntityKind, ownerKey string, items []BulkItem) ([]Assigned, error) {
	if items == nil {
		items = []BulkItem{}
	}
	var resp bulkResponse
	err := c.rest.Do(ctx, http.MethodPost, restclient.Path(op, kind.String(), ownerKey), bulkRequest{Records: items}, &resp)
	if err != nil {
		return nil, wrapError(op, kind, err)
	}
	return resp.Records, nil
}

func duplicate(kind models.EntityKind, err error) *DuplicateError {
	var status *restclient.StatusError
	if !errors.As(err, &status) || status.StatusCode != http.StatusConflict {
		return nil
	}
	var body duplicateBody
	if json.Unmarshal(status.Body, &body) != nil || body.Existing.TargetID == "" {
		return nil
	}
	return &DuplicateError{Kind: kind, Duplicate: body.Duplicate, Existing: body.Existing}
}
