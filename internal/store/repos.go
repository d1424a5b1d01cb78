package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Credentials are the stored auth pair.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// TokenRepo persists auth credentials across runs.
type TokenRepo interface {
	Save(ctx context.Context, creds Credentials) error
	Load(ctx context.Context) (Credentials, error)
	Clear(ctx context.Context) error
}

// Prefs are user playback preferences.
type Prefs struct {
	Speed   float64
	Quality string
}

// PrefsRepo persists playback preferences.
type PrefsRepo interface {
	Save(ctx context.Context, p Prefs) error
	Load(ctx context.Context) (Prefs, error)
}

// ResumeEntry is the locally journaled position for one video, used to
// resume playback when the server has no fresher record.
type ResumeEntry struct {
	VideoID    string
	Position   time.Duration
	Checkpoint time.Duration
	Completed  bool
	UpdatedAt  time.Time
}

// ResumeRepo is the per-video resume journal.
type ResumeRepo interface {
	Put(ctx context.Context, e ResumeEntry) error
	Get(ctx context.Context, videoID string) (*ResumeEntry, error)
	Delete(ctx context.Context, videoID string) error
}

type tokenRepo struct {
	db *sql.DB
}

func (r *tokenRepo) Save(ctx context.Context, creds Credentials) error {
	if err := putKV(ctx, r.db, "access_token", creds.AccessToken); err != nil {
		return err
	}
	return putKV(ctx, r.db, "refresh_token", creds.RefreshToken)
}

func (r *tokenRepo) Load(ctx context.Context) (Credentials, error) {
	access, err := getKV(ctx, r.db, "access_token")
	if err != nil {
		return Credentials{}, err
	}
	refresh, err := getKV(ctx, r.db, "refresh_token")
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{AccessToken: access, RefreshToken: refresh}, nil
}

func (r *tokenRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM kv WHERE key IN ('access_token', 'refresh_token')`)
	return err
}

type prefsRepo struct {
	db *sql.DB
}

func (r *prefsRepo) Save(ctx context.Context, p Prefs) error {
	if err := putKV(ctx, r.db, "pref_speed", strconv.FormatFloat(p.Speed, 'f', -1, 64)); err != nil {
		return err
	}
	return putKV(ctx, r.db, "pref_quality", p.Quality)
}

func (r *prefsRepo) Load(ctx context.Context) (Prefs, error) {
	p := Prefs{Speed: 1.0}
	raw, err := getKV(ctx, r.db, "pref_speed")
	if err != nil {
		return p, err
	}
	if raw != "" {
		speed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return p, fmt.Errorf("parse stored speed %q: %w", raw, err)
		}
		p.Speed = speed
	}
	p.Quality, err = getKV(ctx, r.db, "pref_quality")
	return p, err
}

type resumeRepo struct {
	db *sql.DB
}

func (r *resumeRepo) Put(ctx context.Context, e ResumeEntry) error {
	completed := 0
	if e.Completed {
		completed = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO resume (video_id, position_ms, checkpoint_ms, completed, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			position_ms = excluded.position_ms,
			checkpoint_ms = excluded.checkpoint_ms,
			completed = excluded.completed,
			updated_at = excluded.updated_at`,
		e.VideoID, e.Position.Milliseconds(), e.Checkpoint.Milliseconds(),
		completed, e.UpdatedAt.UTC().Format(time.RFC3339))
	return err
}

func (r *resumeRepo) Get(ctx context.Context, videoID string) (*ResumeEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT position_ms, checkpoint_ms, completed, updated_at
		FROM resume WHERE video_id = ?`, videoID)

	var posMs, cpMs int64
	var completed int
	var updated string
	if err := row.Scan(&posMs, &cpMs, &completed, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339, updated)
	if err != nil {
		return nil, fmt.Errorf("parse resume timestamp: %w", err)
	}
	return &ResumeEntry{
		VideoID:    videoID,
		Position:   time.Duration(posMs) * time.Millisecond,
		Checkpoint: time.Duration(cpMs) * time.Millisecond,
		Completed:  completed == 1,
		UpdatedAt:  ts,
	}, nil
}

func (r *resumeRepo) Delete(ctx context.Context, videoID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM resume WHERE video_id = ?`, videoID)
	return err
}

func putKV(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func getKV(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}
