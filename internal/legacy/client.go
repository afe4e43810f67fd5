package legacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"contactsync/internal/platform/restclient"
	"contactsync/internal/sync/models"
	"contactsync/pkg/platform/sentinel"
)

// Error is a failed legacy read. Retryable errors wrap sentinel.ErrUnavailable;
// a 404 wraps sentinel.ErrNotFound.
type Error struct {
	Op         string
	Kind       models.EntityKind
	StatusCode int
	Retryable  bool
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("legacy %s %s: status %d: %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("legacy %s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// route locates a kind in the legacy read API. Single records live under
// /{scope}/{resource}/{id}; an owner's records under /{scope}/{owner}/{resource}.
type route struct {
	scope    string
	resource string
}

var routes = map[models.EntityKind]route{
	models.KindContact:                    {scope: "persons"},
	models.KindContactAddress:             {scope: "persons", resource: "addresses"},
	models.KindContactPhone:               {scope: "persons", resource: "phones"},
	models.KindContactAddressPhone:        {scope: "persons", resource: "address-phones"},
	models.KindContactEmail:               {scope: "persons", resource: "emails"},
	models.KindContactIdentity:            {scope: "persons", resource: "identifiers"},
	models.KindContactEmployment:          {scope: "persons", resource: "employments"},
	models.KindContactRestriction:         {scope: "persons", resource: "restrictions"},
	models.KindPrisonerContact:            {scope: "prisoners", resource: "contacts"},
	models.KindPrisonerContactRestriction: {scope: "prisoners", resource: "contact-restrictions"},
	models.KindPrisonerAddress:            {scope: "prisoners", resource: "addresses"},
	models.KindPrisonerAddressPhone:       {scope: "prisoners", resource: "address-phones"},
	models.KindPrisonerPhone:              {scope: "prisoners", resource: "phones"},
	models.KindPrisonerRestriction:        {scope: "prisoners", resource: "restrictions"},
}

// HTTPClient reads current records from the legacy system.
type HTTPClient struct {
	rest *restclient.Client
}

// NewHTTPClient builds a client for baseURL. tokens may be nil.
func NewHTTPClient(baseURL string, timeout time.Duration, tokens restclient.TokenSource) (*HTTPClient, error) {
	rest, err := restclient.New("legacy", baseURL, timeout, tokens)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{rest: rest}, nil
}

// Get returns the raw current record for one legacy id.
func (c *HTTPClient) Get(ctx context.Context, kind models.EntityKind, legacyID int64) (json.RawMessage, error) {
	r, ok := routes[kind]
	if !ok {
		return nil, &Error{Op: "get", Kind: kind, Err: fmt.Errorf("unsupported kind %q", kind)}
	}
	id := strconv.FormatInt(legacyID, 10)
	path := restclient.Path(r.scope, id)
	if r.resource != "" {
		path = restclient.Path(r.scope, r.resource, id)
	}

	var raw json.RawMessage
	if err := c.rest.Do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, wrapError("get", kind, err)
	}
	return raw, nil
}

// Snapshot returns every current record of kind held by ownerKey, in the
// order the legacy system lists them.
func (c *HTTPClient) Snapshot(ctx context.Context, kind models.EntityKind, ownerKey string) ([]json.RawMessage, error) {
	r, ok := routes[kind]
	if !ok {
		return nil, &Error{Op: "snapshot", Kind: kind, Err: fmt.Errorf("unsupported kind %q", kind)}
	}
	if r.resource == "" {
		// The aggregate root is its own snapshot.
		var raw json.RawMessage
		if err := c.rest.Do(ctx, http.MethodGet, restclient.Path(r.scope, ownerKey), nil, &raw); err != nil {
			return nil, wrapError("snapshot", kind, err)
		}
		return []json.RawMessage{raw}, nil
	}

	var records []json.RawMessage
	if err := c.rest.Do(ctx, http.MethodGet, restclient.Path(r.scope, ownerKey, r.resource), nil, &records); err != nil {
		return nil, wrapError("snapshot", kind, err)
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

func wrapError(op string, kind models.EntityKind, err error) error {
	var status *restclient.StatusError
	if errors.As(err, &status) {
		return &Error{Op: op, Kind: kind, StatusCode: status.StatusCode, Retryable: status.Retryable(), Err: err}
	}
	return &Error{Op: op, Kind: kind, Retryable: errors.Is(err, sentinel.ErrUnavailable), Err: err}
}
