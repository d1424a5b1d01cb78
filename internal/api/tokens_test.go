package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type memCreds struct {
	access, refresh string
	saves           int
}

func (m *memCreds) LoadTokens(context.Context) (string, string, error) {
	return m.access, m.refresh, nil
}

func (m *memCreds) SaveTokens(_ context.Context, access, refresh string) error {
	m.access, m.refresh = access, refresh
	m.saves++
	return nil
}

func TestRefreshingTokenSource_ExchangesAndPersists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["refreshToken"] != "ref-1" {
			t.Errorf("refreshToken = %q", body["refreshToken"])
		}
		json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "acc-2",
			"refreshToken": "ref-2",
		})
	}))
	defer srv.Close()

	creds := &memCreds{access: "acc-1", refresh: "ref-1"}
	ts := NewRefreshingTokenSource(creds, srv.URL, nil)

	got, err := ts.AccessToken(context.Background())
	if err != nil || got != "acc-1" {
		t.Fatalf("AccessToken() = %q, %v", got, err)
	}

	got, err = ts.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got != "acc-2" {
		t.Errorf("Refresh() = %q, want acc-2", got)
	}
	if creds.access != "acc-2" || creds.refresh != "ref-2" || creds.saves != 1 {
		t.Errorf("store after refresh = %+v", creds)
	}
}

func TestRefreshingTokenSource_EmptyStoreIsNotLoggedIn(t *testing.T) {
	ts := NewRefreshingTokenSource(&memCreds{}, "http://unused", nil)
	if _, err := ts.AccessToken(context.Background()); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("AccessToken() error = %v, want ErrNotLoggedIn", err)
	}
	if _, err := ts.Refresh(context.Background()); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("Refresh() error = %v, want ErrNotLoggedIn", err)
	}
}

func TestRefreshingTokenSource_RejectedRefreshSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	ts := NewRefreshingTokenSource(&memCreds{access: "a", refresh: "r"}, srv.URL, nil)
	_, err := ts.Refresh(context.Background())
	var se *StatusError
	if !errors.As(err, &se) || se.Status != http.StatusUnauthorized {
		t.Errorf("Refresh() error = %v, want 401 StatusError", err)
	}
}
