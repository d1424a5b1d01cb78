package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ErrNotLoggedIn is returned when no credentials are stored.
var ErrNotLoggedIn = errors.New("not logged in")

// CredentialStore persists the token pair between runs.
type CredentialStore interface {
	LoadTokens(ctx context.Context) (access, refresh string, err error)
	SaveTokens(ctx context.Context, access, refresh string) error
}

// RefreshingTokenSource serves access tokens from a CredentialStore and
// exchanges the refresh token at the auth endpoint when asked.
type RefreshingTokenSource struct {
	store   CredentialStore
	authURL string
	http    *http.Client

	mu      sync.Mutex
	access  string
	refresh string
	loaded  bool
}

// NewRefreshingTokenSource creates a token source. authURL is the full
// refresh endpoint, e.g. https://api.example.com/auth/refresh.
func NewRefreshingTokenSource(store CredentialStore, authURL string, httpClient *http.Client) *RefreshingTokenSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &RefreshingTokenSource{store: store, authURL: authURL, http: httpClient}
}

// AccessToken returns the current access token, loading from the store on
// first use.
func (t *RefreshingTokenSource) AccessToken(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.load(ctx); err != nil {
		return "", err
	}
	if t.access == "" {
		return "", ErrNotLoggedIn
	}
	return t.access, nil
}

// Refresh exchanges the refresh token for a new pair and persists it.
func (t *RefreshingTokenSource) Refresh(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.load(ctx); err != nil {
		return "", err
	}
	if t.refresh == "" {
		return "", ErrNotLoggedIn
	}

	body, _ := json.Marshal(map[string]string{"refreshToken": t.refresh})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.authURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Status: resp.StatusCode, Method: http.MethodPost, Path: t.authURL}
	}

	var pair struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}

	t.access = pair.AccessToken
	if pair.RefreshToken != "" {
		t.refresh = pair.RefreshToken
	}
	if err := t.store.SaveTokens(ctx, t.access, t.refresh); err != nil {
		return "", fmt.Errorf("persist tokens: %w", err)
	}
	return t.access, nil
}

func (t *RefreshingTokenSource) load(ctx context.Context) error {
	if t.loaded {
		return nil
	}
	access, refresh, err := t.store.LoadTokens(ctx)
	if err != nil {
		return fmt.Errorf("load tokens: %w", err)
	}
	t.access, t.refresh = access, refresh
	t.loaded = true
	return nil
}
