// Package engine wraps the native media player behind a command surface.
// All player mutation in the app goes through the Adapter; nothing else
// touches the engine directly.
package engine

import (
	"time"

	"github.com/praagya/vidya/internal/source"
)

// Status is the engine-reported lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusBuffering
	StatusReady
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusBuffering:
		return "buffering"
	case StatusReady:
		return "ready"
	case StatusEnded:
		return "ended"
	default:
		return "idle"
	}
}

// Event is a lifecycle notification from an engine. Engines deliver events
// synchronously on the app's event loop; listeners must not block.
type Event interface{ event() }

// SourceLoadedEvent fires when the engine has bound a source and knows its
// duration.
type SourceLoadedEvent struct {
	Duration time.Duration
}

// StatusEvent fires on engine lifecycle transitions.
type StatusEvent struct {
	Status Status
}

// TimeEvent fires as playback position advances.
type TimeEvent struct {
	Position time.Duration
	Duration time.Duration
}

// ErrorEvent fires when the engine hits a playback failure. The adapter
// forwards these verbatim; fallback handling lives elsewhere.
type ErrorEvent struct {
	Code    string
	Message string
}

func (SourceLoadedEvent) event() {}
func (StatusEvent) event()       {}
func (TimeEvent) event()         {}
func (ErrorEvent) event()        {}

// Engine is one underlying player instance bound to a single source.
type Engine interface {
	Play() error
	Pause() error
	SeekTo(pos time.Duration) error
	SetVolume(v float64) error
	SetRate(r float64) error
	Playing() bool
	Status() Status
	Close() error
}

// Advancer is implemented by engines whose clock is driven externally (the
// simulated engine). The adapter advances them on its tick.
type Advancer interface {
	Advance(delta time.Duration)
}

// Factory constructs an engine for a source, delivering its events to
// listen. Construction failure means the source cannot be played at all.
type Factory func(src source.Source, listen func(Event)) (Engine, error)
