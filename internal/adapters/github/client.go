// Package github is a thin GitHub REST v3 client for the pull request connector
// every call goes through the backend dispatcher and returns a future
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"hubconnect/internal/core/dispatch"
	perr "hubconnect/internal/platform/errors"
	"hubconnect/internal/platform/logger"
)

const (
	baseURLDefault = "https://api.github.com"
	apiVersion     = "2022-11-28"
)

// Creds are the vendor credentials forwarded by the Hub on each request
type Creds struct {
	BaseURL string
	Token   string
}

// Client issues GitHub calls through a Dispatcher
// it never retries; failures surface as *dispatch.BackendFailure
type Client struct {
	d *dispatch.Dispatcher
}

// NewClient creates a Client over d
func NewClient(d *dispatch.Dispatcher) *Client {
	return &Client{d: d}
}

// newRequest builds an authenticated request for path relative to the creds' base url
func (c *Client) newRequest(ctx context.Context, cr Creds, method, path string, q url.Values, body any) (*http.Request, error) {
	base := strings.TrimRight(cr.BaseURL, "/")
	if base == "" {
		base = baseURLDefault
	}
	u := base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeUnknown, "github encode body failed")
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "github new request failed")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a := authorization(cr.Token); a != "" {
		req.Header.Set("Authorization", a)
	}
	return req, nil
}

// authorization keeps an explicit scheme and defaults bare tokens to Bearer
func authorization(tok string) string {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return ""
	}
	if strings.Contains(tok, " ") {
		return tok
	}
	return "Bearer " + tok
}

// call sends one request and decodes the JSON reply into T
func call[T any](ctx context.Context, c *Client, cr Creds, method, path string, q url.Values, body any) *dispatch.Future[T] {
	req, err := c.newRequest(ctx, cr, method, path, q, body)
	if err != nil {
		var zero T
		return dispatch.Completed(c.d.Executor(), zero, err)
	}
	observed := dispatch.Then(ctx, c.d.Do(ctx, req), func(ctx context.Context, r *dispatch.Response, err error) (*dispatch.Response, error) {
		observe(ctx, method, path, r, err)
		return r, err
	})
	return dispatch.JSON[T](ctx, observed)
}

// observe logs lightweight response metadata including the remaining quota
func observe(ctx context.Context, method, path string, r *dispatch.Response, err error) {
	var h http.Header
	status := 0
	switch {
	case r != nil:
		h, status = r.Header, r.Status
	case err != nil:
		if f, ok := dispatch.AsFailure(err); ok {
			h, status = f.Header, f.Status
		}
	}
	rl := parseRate(h)
	log := logger.C(ctx).With().Str("component", "github").Logger()
	ev := log.Debug()
	if rl.Remaining == 0 {
		ev = log.Warn()
	}
	ev.Str("method", method).
		Str("path", path).
		Int("status", status).
		Int("rate_remaining", rl.Remaining).
		Time("rate_reset", rl.Reset).
		Dur("retry_after", rl.RetryAfter).
		Msg("github http response")
}
