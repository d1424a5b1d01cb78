package engine

import "time"

// BufferState is the adapter's view of engine readiness.
type BufferState int

const (
	BufferIdle BufferState = iota
	BufferBuffering
	BufferReady
	BufferErrored
)

func (b BufferState) String() string {
	switch b {
	case BufferBuffering:
		return "buffering"
	case BufferReady:
		return "ready"
	case BufferErrored:
		return "errored"
	default:
		return "idle"
	}
}

// Speeds are the playback rates the UI offers. SetSpeed rejects anything
// else.
var Speeds = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0}

// PlaybackState is the adapter-owned player state. Playing reflects the
// requested state; the engine may lag behind it while buffering.
type PlaybackState struct {
	Position time.Duration
	Duration time.Duration
	Playing  bool
	Volume   float64
	Speed    float64
	Buffer   BufferState
}

// Progress returns watch progress in [0, 1].
func (s PlaybackState) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	p := float64(s.Position) / float64(s.Duration)
	if p > 1 {
		return 1
	}
	return p
}
