package engine

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/praagya/vidya/internal/source"
)

const (
	// playConfirmDelay is the interval between play-confirmation polls when
	// the engine has not honored a requested play.
	playConfirmDelay = 500 * time.Millisecond

	// maxPlayAttempts bounds the reconciliation polls before giving up.
	maxPlayAttempts = 3
)

// EngineError is a playback failure forwarded out of the adapter.
type EngineError struct {
	SourceURI string
	Code      string
	Message   string
}

// Hooks receive adapter notifications. Nil hooks are skipped.
type Hooks struct {
	// OnTime fires on every position update.
	OnTime func(pos, dur time.Duration)

	// OnError receives engine errors verbatim.
	OnError func(EngineError)

	// OnEnded fires once when playback reaches the end of the source.
	OnEnded func()
}

// Adapter owns the single engine instance for one mounted player screen and
// serializes all intent toward it. Commands are last-write-wins on desired
// state; execution is reconciled on Tick.
type Adapter struct {
	factory Factory
	canSeek func() bool
	hooks   Hooks
	log     zerolog.Logger

	eng   Engine
	gen   int
	state PlaybackState

	videoID   string
	sourceURI string

	wantPlaying   bool
	playAttempts  int
	nextPlayCheck time.Time
	resumePos     time.Duration
	lastTick      time.Time
}

// New creates an Adapter. canSeek gates user seeks; nil means always
// allowed.
func New(factory Factory, canSeek func() bool, hooks Hooks, log zerolog.Logger) *Adapter {
	return &Adapter{
		factory: factory,
		canSeek: canSeek,
		hooks:   hooks,
		log:     log,
		state:   PlaybackState{Volume: 1.0, Speed: 1.0},
	}
}

// State returns a copy of the current playback state.
func (a *Adapter) State() PlaybackState { return a.state }

// SourceURI returns the URI of the currently bound source.
func (a *Adapter) SourceURI() string { return a.sourceURI }

// Initialize binds the adapter to a fresh source, resetting position.
// Construction failure degrades to BufferErrored with a diagnostic log;
// no error surfaces to the caller.
func (a *Adapter) Initialize(src source.Source) {
	a.state.Position = 0
	a.resumePos = 0
	a.bind(src)
}

// ReplaceSource swaps the engine's source mid-session. Volume and speed
// carry over; position carries over unless the new source is for a
// different video.
func (a *Adapter) ReplaceSource(src source.Source) {
	if src.VideoID == a.videoID {
		a.resumePos = a.state.Position
	} else {
		a.state.Position = 0
		a.resumePos = 0
	}
	a.bind(src)
}

func (a *Adapter) bind(src source.Source) {
	if a.eng != nil {
		if err := a.eng.Close(); err != nil {
			a.log.Debug().Err(err).Msg("closing previous engine")
		}
		a.eng = nil
	}

	a.gen++
	gen := a.gen
	a.state.Buffer = BufferBuffering
	a.playAttempts = 0
	a.nextPlayCheck = time.Time{}

	eng, err := a.factory(src, func(ev Event) {
		// Stale engines keep delivering until closed; drop their events.
		if gen != a.gen {
			return
		}
		a.handleEvent(ev)
	})
	if err != nil {
		a.state.Buffer = BufferErrored
		a.log.Error().Err(err).Str("uri", src.URI).Msg("engine construction failed")
		return
	}

	a.eng = eng
	a.videoID = src.VideoID
	a.sourceURI = src.URI
	a.applySettings()
}

func (a *Adapter) applySettings() {
	if err := a.eng.SetVolume(a.state.Volume); err != nil {
		a.log.Debug().Err(err).Msg("apply volume")
	}
	if err := a.eng.SetRate(a.state.Speed); err != nil {
		a.log.Debug().Err(err).Msg("apply speed")
	}
}

// SetPlaying records the desired play state and issues the command. The
// engine may not honor play synchronously; Tick reconciles.
func (a *Adapter) SetPlaying(play bool) {
	a.wantPlaying = play
	a.state.Playing = play
	a.playAttempts = 0
	a.nextPlayCheck = time.Time{}
	if a.eng == nil {
		return
	}
	var err error
	if play {
		err = a.eng.Play()
	} else {
		err = a.eng.Pause()
	}
	if err != nil {
		a.log.Debug().Err(err).Bool("play", play).Msg("engine command")
	}
}

// Seek requests a position change. Returns false when the seek policy
// blocks it or no engine is bound; blocked seeks are ignored, not queued.
func (a *Adapter) Seek(pos time.Duration) bool {
	if a.canSeek != nil && !a.canSeek() {
		a.log.Debug().Dur("pos", pos).Msg("seek blocked by policy")
		return false
	}
	if a.eng == nil {
		return false
	}
	if pos < 0 {
		pos = 0
	}
	if a.state.Duration > 0 && pos > a.state.Duration {
		pos = a.state.Duration
	}
	if err := a.eng.SeekTo(pos); err != nil {
		a.log.Debug().Err(err).Msg("engine seek")
		return false
	}
	a.state.Position = pos
	return true
}

// Restore jumps to a previously saved position without consulting the
// seek policy: resuming a gated video is not a user seek. The jump is
// applied immediately when the engine is ready, otherwise deferred to the
// ready transition like a source-swap restore.
func (a *Adapter) Restore(pos time.Duration) {
	if pos <= 0 {
		return
	}
	if a.eng != nil && a.state.Buffer == BufferReady {
		if err := a.eng.SeekTo(pos); err != nil {
			a.log.Debug().Err(err).Msg("restore seek")
			return
		}
		a.state.Position = pos
		return
	}
	a.resumePos = pos
}

// SetVolume clamps to [0, 1] and applies.
func (a *Adapter) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	a.state.Volume = v
	if a.eng != nil {
		if err := a.eng.SetVolume(v); err != nil {
			a.log.Debug().Err(err).Msg("engine volume")
		}
	}
}

// SetSpeed applies one of the allowed playback rates; others are ignored.
func (a *Adapter) SetSpeed(rate float64) bool {
	ok := false
	for _, s := range Speeds {
		if s == rate {
			ok = true
			break
		}
	}
	if !ok {
		return false
	}
	a.state.Speed = rate
	if a.eng != nil {
		if err := a.eng.SetRate(rate); err != nil {
			a.log.Debug().Err(err).Msg("engine rate")
		}
	}
	return true
}

// Tick drives externally clocked engines and reconciles a requested play
// the engine has not honored: after playConfirmDelay it re-issues Play, up
// to maxPlayAttempts, then gives up and reports buffering.
func (a *Adapter) Tick(now time.Time) {
	if a.eng == nil {
		a.lastTick = now
		return
	}

	if adv, ok := a.eng.(Advancer); ok && !a.lastTick.IsZero() {
		adv.Advance(now.Sub(a.lastTick))
	}
	a.lastTick = now

	if !a.wantPlaying || a.eng == nil || a.eng.Playing() || a.state.Buffer != BufferReady {
		return
	}
	if a.nextPlayCheck.IsZero() {
		a.nextPlayCheck = now.Add(playConfirmDelay)
		return
	}
	if now.Before(a.nextPlayCheck) {
		return
	}
	if a.playAttempts >= maxPlayAttempts {
		a.log.Warn().Str("uri", a.sourceURI).Msg("engine refused play; giving up reconciliation")
		a.state.Buffer = BufferBuffering
		a.wantPlaying = false
		a.state.Playing = false
		return
	}
	a.playAttempts++
	a.nextPlayCheck = now.Add(playConfirmDelay)
	if err := a.eng.Play(); err != nil {
		a.log.Debug().Err(err).Int("attempt", a.playAttempts).Msg("play reconciliation")
	}
}

// Close tears down the engine.
func (a *Adapter) Close() {
	if a.eng != nil {
		if err := a.eng.Close(); err != nil {
			a.log.Debug().Err(err).Msg("engine close")
		}
		a.eng = nil
	}
	a.gen++
	a.state.Buffer = BufferIdle
}

func (a *Adapter) handleEvent(ev Event) {
	switch ev := ev.(type) {
	case SourceLoadedEvent:
		a.state.Duration = ev.Duration

	case StatusEvent:
		switch ev.Status {
		case StatusBuffering:
			a.state.Buffer = BufferBuffering
		case StatusReady:
			a.state.Buffer = BufferReady
			if a.resumePos > 0 {
				// Internal position restore after a source swap; bypasses
				// the seek policy on purpose.
				if err := a.eng.SeekTo(a.resumePos); err == nil {
					a.state.Position = a.resumePos
				}
				a.resumePos = 0
			}
			// Late-ready race: play was requested while still buffering.
			if a.wantPlaying && !a.eng.Playing() {
				if err := a.eng.Play(); err != nil {
					a.log.Debug().Err(err).Msg("auto-start on ready")
				}
			}
		case StatusEnded:
			a.state.Playing = false
			a.wantPlaying = false
			if a.hooks.OnEnded != nil {
				a.hooks.OnEnded()
			}
		}

	case TimeEvent:
		a.state.Position = ev.Position
		if ev.Duration > 0 {
			a.state.Duration = ev.Duration
		}
		if a.hooks.OnTime != nil {
			a.hooks.OnTime(ev.Position, a.state.Duration)
		}

	case ErrorEvent:
		a.state.Buffer = BufferErrored
		a.log.Warn().Str("uri", a.sourceURI).Str("code", ev.Code).Str("msg", ev.Message).Msg("engine error")
		if a.hooks.OnError != nil {
			a.hooks.OnError(EngineError{SourceURI: a.sourceURI, Code: ev.Code, Message: ev.Message})
		}
	}
}
