// Package analytics is a fire-and-forget telemetry sink. Tracking can never
// fail a caller: errors are logged and dropped.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Event names emitted by the playback subsystem.
const (
	EventPlay             = "video_play"
	EventPause            = "video_pause"
	EventSeek             = "video_seek"
	EventSeekBlocked      = "video_seek_blocked"
	EventMilestone        = "video_milestone"
	EventEnded            = "video_ended"
	EventReplay           = "video_replay"
	EventQuestionShown    = "question_shown"
	EventQuestionAnswered = "question_answered"
	EventQuestionTimeout  = "question_timeout"
	EventSourceFallback   = "source_fallback"
	EventSourceExhausted  = "source_exhausted"
)

// Payload is the free-form event body.
type Payload map[string]any

// Sink accepts telemetry events.
type Sink interface {
	// Track records an event. Implementations must not block the caller and
	// must swallow their own failures.
	Track(event string, payload Payload)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Track(string, Payload) {}

// WithSession wraps a sink so every event carries the watch-session id.
func WithSession(inner Sink, sessionID string) Sink {
	return &sessionSink{inner: inner, sessionID: sessionID}
}

type sessionSink struct {
	inner     Sink
	sessionID string
}

func (s *sessionSink) Track(event string, payload Payload) {
	if payload == nil {
		payload = Payload{}
	}
	payload["sessionId"] = s.sessionID
	s.inner.Track(event, payload)
}

// MemorySink collects events for tests and the diagnostics screen.
type MemorySink struct {
	mu     sync.Mutex
	events []Recorded
}

// Recorded is one captured event.
type Recorded struct {
	Event   string
	Payload Payload
}

func (m *MemorySink) Track(event string, payload Payload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Recorded{Event: event, Payload: payload})
}

// Events returns a snapshot of everything tracked so far.
func (m *MemorySink) Events() []Recorded {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Recorded, len(m.events))
	copy(out, m.events)
	return out
}

// Named returns the captured events with the given name, in order.
func (m *MemorySink) Named(event string) []Recorded {
	var out []Recorded
	for _, r := range m.Events() {
		if r.Event == event {
			out = append(out, r)
		}
	}
	return out
}

// HTTPSink posts events as JSON to a collector endpoint. Each Track spawns a
// short-lived goroutine; responses and errors are logged at debug and
// otherwise ignored.
type HTTPSink struct {
	URL    string
	Client *http.Client
	Log    zerolog.Logger
}

// NewHTTPSink creates an HTTPSink with a bounded-timeout client.
func NewHTTPSink(url string, log zerolog.Logger) *HTTPSink {
	return &HTTPSink{
		URL:    url,
		Client: &http.Client{Timeout: 5 * time.Second},
		Log:    log,
	}
}

type wireEvent struct {
	Event      string  `json:"event"`
	Payload    Payload `json:"payload,omitempty"`
	OccurredAt string  `json:"occurredAt"`
}

func (s *HTTPSink) Track(event string, payload Payload) {
	body, err := json.Marshal(wireEvent{
		Event:      event,
		Payload:    payload,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		s.Log.Debug().Err(err).Str("event", event).Msg("analytics marshal")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
		if err != nil {
			s.Log.Debug().Err(err).Msg("analytics request")
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.Client.Do(req)
		if err != nil {
			s.Log.Debug().Err(err).Str("event", event).Msg("analytics post dropped")
			return
		}
		resp.Body.Close()
	}()
}
