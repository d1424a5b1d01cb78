package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTokenRepo_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Tokens()

	creds, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() on empty store error = %v", err)
	}
	if creds.AccessToken != "" || creds.RefreshToken != "" {
		t.Errorf("empty store returned %+v", creds)
	}

	want := Credentials{AccessToken: "acc", RefreshToken: "ref"}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	got, _ = repo.Load(ctx)
	if got.AccessToken != "" {
		t.Error("tokens survived Clear()")
	}
}

func TestPrefsRepo_DefaultsAndOverwrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Prefs()

	p, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.Speed != 1.0 {
		t.Errorf("default speed = %v, want 1.0", p.Speed)
	}

	if err := repo.Save(ctx, Prefs{Speed: 1.5, Quality: "720p"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := repo.Save(ctx, Prefs{Speed: 0.75, Quality: "1080p"}); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	p, err = repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.Speed != 0.75 || p.Quality != "1080p" {
		t.Errorf("Load() = %+v, want latest save", p)
	}
}

func TestResumeRepo_UpsertAndDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Resume()

	got, err := repo.Get(ctx, "v1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Fatalf("Get() on empty journal = %+v, want nil", got)
	}

	first := ResumeEntry{
		VideoID:    "v1",
		Position:   42 * time.Second,
		Checkpoint: 30 * time.Second,
		UpdatedAt:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := repo.Put(ctx, first); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	second := first
	second.Position = 90 * time.Second
	second.Completed = true
	if err := repo.Put(ctx, second); err != nil {
		t.Fatalf("upsert Put() error = %v", err)
	}

	got, err = repo.Get(ctx, "v1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Position != 90*time.Second || !got.Completed {
		t.Errorf("Get() = %+v, want upserted entry", got)
	}
	if !got.UpdatedAt.Equal(first.UpdatedAt) {
		t.Errorf("UpdatedAt = %v", got.UpdatedAt)
	}

	if err := repo.Delete(ctx, "v1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	got, _ = repo.Get(ctx, "v1")
	if got != nil {
		t.Error("entry survived Delete()")
	}
}
