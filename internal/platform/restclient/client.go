// Package restclient is the JSON-over-HTTP plumbing shared by the legacy and
// target clients: bearer tokens, tracing spans and status classification.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"contactsync/pkg/platform/sentinel"
)

// TokenSource supplies bearer tokens for outbound calls.
type TokenSource interface {
	Token() (string, error)
}

// StatusError is a non-2xx response.
type StatusError struct {
	System     string
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s %s: status %d: %s", e.System, e.Method, e.Path, e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// Retryable reports whether redelivery may succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusRequestTimeout
}

// Unwrap maps the status onto the sentinel taxonomy.
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return sentinel.ErrNotFound
	case e.StatusCode == http.StatusConflict:
		return sentinel.ErrConflict
	case e.Retryable():
		return sentinel.ErrUnavailable
	default:
		return nil
	}
}

// Client issues JSON requests against one remote system.
type Client struct {
	system  string
	base    *url.URL
	http    *http.Client
	tokens  TokenSource
	headers http.Header
	tracer  trace.Tracer
}

type Option func(*Client)

// WithHeader sets a header on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// New builds a client. tokens may be nil for unauthenticated systems.
func New(system, baseURL string, timeout time.Duration, tokens TokenSource, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse %s base url: %w", system, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%s base url %q must be absolute", system, baseURL)
	}
	c := &Client{
		system:  system,
		base:    base,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		headers: http.Header{},
		tracer:  otel.Tracer("contactsync/" + system),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Path joins escaped segments into a request path.
func Path(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return "/" + strings.Join(escaped, "/")
}

// Do sends body (when non-nil) as JSON and decodes the response into out
// (when non-nil). Transport failures wrap sentinel.ErrUnavailable.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	ctx, span := c.tracer.Start(ctx, c.system+" "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
		))
	defer span.End()

	err := c.do(ctx, method, path, body, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", c.system, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", c.system, err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("%s token: %w", c.system, err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%s %s %s: %w: %w", c.system, method, path, sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%s %s %s: read body: %w: %w", c.system, method, path, sentinel.ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{System: c.system, Method: method, Path: path, StatusCode: resp.StatusCode, Body: respBody}
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s response: %w: %w", c.system, sentinel.ErrInvalidState, err)
	}
	return nil
}
