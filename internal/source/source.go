package source

import "time"

// Format identifies the container/streaming format of a media URL.
type Format int

const (
	FormatUnknown Format = iota
	FormatProgressive
	FormatHLS
	FormatDASH
)

// String returns the format name used in logs and analytics payloads.
func (f Format) String() string {
	switch f {
	case FormatProgressive:
		return "progressive"
	case FormatHLS:
		return "hls"
	case FormatDASH:
		return "dash"
	default:
		return "unknown"
	}
}

// BufferHints carries per-format buffering targets handed to the playback
// engine when a source is loaded.
type BufferHints struct {
	MinBuffer time.Duration
	MaxBuffer time.Duration
}

// Source is one playback candidate. Immutable once constructed.
type Source struct {
	URI     string
	Format  Format
	Hints   BufferHints
	VideoID string // set by the caller when the source belongs to a catalog video
}

// hintsFor returns the buffering targets for a format. Streaming formats get
// a deeper buffer than progressive downloads.
func hintsFor(f Format) BufferHints {
	switch f {
	case FormatHLS, FormatDASH:
		return BufferHints{MinBuffer: 15 * time.Second, MaxBuffer: 50 * time.Second}
	default:
		return BufferHints{MinBuffer: 2500 * time.Millisecond, MaxBuffer: 30 * time.Second}
	}
}
