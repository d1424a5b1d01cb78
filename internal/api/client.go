// Package api is the authenticated JSON client for the learning service.
// It attaches bearer tokens and retries once on 401 through the refresh
// flow.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 4 * 1024

// TokenSource supplies bearer tokens. Refresh exchanges the stored refresh
// token for a fresh access token after a 401.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// StatusError is a non-2xx response.
type StatusError struct {
	Status int
	Method string
	Path   string
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// IsAuth reports whether the failure was an authorization rejection.
func (e *StatusError) IsAuth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Client issues authenticated JSON requests against a base URL.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	log    zerolog.Logger
}

// New creates a Client. A nil httpClient gets a default with a bounded
// timeout; tokens may be nil for unauthenticated endpoints.
func New(base string, tokens TokenSource, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		http:   httpClient,
		tokens: tokens,
		log:    log,
	}
}

// Get issues a GET and decodes the response into out (skipped when nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
	}

	resp, err := c.send(ctx, method, path, payload, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Status: resp.StatusCode, Method: method, Path: path, Body: string(snippet)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// send performs one attempt, refreshing the token and retrying exactly once
// on a 401.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, retried bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !retried && c.tokens != nil {
		resp.Body.Close()
		c.log.Debug().Str("path", path).Msg("401; refreshing token")
		if _, err := c.tokens.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("refresh token: %w", err)
		}
		return c.send(ctx, method, path, payload, true)
	}
	return resp, nil
}
