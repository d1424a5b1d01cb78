package source

import "fmt"

// InvalidURLError indicates a raw media URL that cannot be played at all:
// unparseable, or a scheme other than http/https. Callers must not attempt
// playback when they see this.
type InvalidURLError struct {
	URL    string
	Reason string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid media url %q: %s", e.URL, e.Reason)
}

// StreamCheckError indicates an HLS diagnostic (validate/manifest fetch)
// failed. Diagnostics are best-effort: this error is informational and must
// never block playback.
type StreamCheckError struct {
	URL string
	Err error
}

func (e *StreamCheckError) Error() string {
	return fmt.Sprintf("stream check failed for %s: %v", e.URL, e.Err)
}

func (e *StreamCheckError) Unwrap() error { return e.Err }
