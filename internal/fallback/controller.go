// Package fallback advances playback through the candidate source list when
// the engine reports errors, until the list is exhausted.
package fallback

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/praagya/vidya/internal/analytics"
	"github.com/praagya/vidya/internal/engine"
	"github.com/praagya/vidya/internal/source"
)

// errorCooldown suppresses duplicate error bursts for the index that just
// failed. It is not resettable; it exists to deduplicate, not to pace.
const errorCooldown = 2 * time.Second

// State of the controller.
type State int

const (
	// StateActive means sources[index] is mounted and presumed playable.
	StateActive State = iota

	// StateRetrying is the transient state while the adapter re-mounts the
	// next candidate.
	StateRetrying

	// StateExhausted is terminal: every candidate failed. Only a fresh
	// resolve and remount recovers.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateRetrying:
		return "retrying"
	case StateExhausted:
		return "exhausted"
	default:
		return "active"
	}
}

// ExhaustedError is the terminal, user-visible failure after all candidates
// fail.
type ExhaustedError struct {
	Sources  int
	LastCode string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d playback sources failed (last error %s)", e.Sources, e.LastCode)
}

// Remounter is the slice of the engine adapter the controller drives.
type Remounter interface {
	Initialize(src source.Source)
	ReplaceSource(src source.Source)
}

// Controller owns the ranked source list for one playback session.
type Controller struct {
	sources []source.Source
	adapter Remounter
	sink    analytics.Sink
	log     zerolog.Logger

	state         State
	index         int
	cooldownUntil time.Time
	failedURI     string
	terminal      *ExhaustedError
}

// New creates a Controller over a non-empty candidate list.
func New(sources []source.Source, adapter Remounter, sink analytics.Sink, log zerolog.Logger) *Controller {
	if sink == nil {
		sink = analytics.NopSink{}
	}
	return &Controller{
		sources: sources,
		adapter: adapter,
		sink:    sink,
		log:     log,
	}
}

// Start mounts the primary source.
func (c *Controller) Start() {
	c.state = StateActive
	c.index = 0
	c.adapter.Initialize(c.sources[0])
}

// State returns the controller state.
func (c *Controller) State() State { return c.state }

// Index returns the index of the mounted candidate.
func (c *Controller) Index() int { return c.index }

// Current returns the mounted source.
func (c *Controller) Current() source.Source { return c.sources[c.index] }

// Terminal returns the exhaustion error once the controller is exhausted,
// nil before that.
func (c *Controller) Terminal() *ExhaustedError { return c.terminal }

// HandleError reacts to an engine error: advance to the next candidate, or
// exhaust. Duplicate errors from the source that just failed are ignored for
// the cool-down window.
func (c *Controller) HandleError(now time.Time, err engine.EngineError) {
	if c.state == StateExhausted {
		return
	}
	if err.SourceURI == c.failedURI && now.Before(c.cooldownUntil) {
		c.log.Debug().Str("uri", err.SourceURI).Msg("duplicate engine error suppressed")
		return
	}

	c.failedURI = err.SourceURI
	c.cooldownUntil = now.Add(errorCooldown)

	next := c.index + 1
	if next >= len(c.sources) {
		c.state = StateExhausted
		c.terminal = &ExhaustedError{Sources: len(c.sources), LastCode: err.Code}
		c.log.Error().Int("sources", len(c.sources)).Str("code", err.Code).Msg("playback sources exhausted")
		c.sink.Track(analytics.EventSourceExhausted, analytics.Payload{
			"sourceIndex":  c.index,
			"totalSources": len(c.sources),
			"url":          err.SourceURI,
			"errorCode":    err.Code,
		})
		return
	}

	c.state = StateRetrying
	c.log.Warn().
		Int("from", c.index).
		Int("to", next).
		Str("code", err.Code).
		Msg("advancing to fallback source")
	c.sink.Track(analytics.EventSourceFallback, analytics.Payload{
		"sourceIndex":  next,
		"totalSources": len(c.sources),
		"url":          c.sources[next].URI,
		"errorCode":    err.Code,
	})

	c.index = next
	c.adapter.ReplaceSource(c.sources[next])
	c.state = StateActive
}
