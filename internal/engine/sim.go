package engine

import (
	"errors"
	"time"

	"github.com/praagya/vidya/internal/source"
)

// SimConfig scripts a simulated engine for one source URI.
type SimConfig struct {
	// Duration is the media duration the engine reports once loaded.
	Duration time.Duration

	// ReadyAfter is how many Advance calls the engine spends buffering
	// before reporting ready.
	ReadyAfter int

	// FailCode, when set, makes the engine emit a playback error instead of
	// becoming ready.
	FailCode string

	// ConstructErr, when set, makes the factory fail outright.
	ConstructErr string

	// IgnorePlays drops this many Play calls silently, mimicking an engine
	// that does not honor play while it still settles.
	IgnorePlays int
}

// SimEngine is a clock-driven engine used by the TUI and tests. Its clock is
// external: the adapter calls Advance on every tick, and events are emitted
// synchronously from there.
type SimEngine struct {
	cfg    SimConfig
	listen func(Event)

	pos      time.Duration
	rate     float64
	volume   float64
	playing  bool
	status   Status
	loaded   bool
	failed   bool
	closed   bool
	advances int
	dropped  int
}

var errEngineClosed = errors.New("engine closed")

// NewSimFactory builds a Factory that scripts engines per source URI.
// URIs missing from byURI get def.
func NewSimFactory(byURI map[string]SimConfig, def SimConfig) Factory {
	return func(src source.Source, listen func(Event)) (Engine, error) {
		cfg, ok := byURI[src.URI]
		if !ok {
			cfg = def
		}
		if cfg.ConstructErr != "" {
			return nil, errors.New(cfg.ConstructErr)
		}
		if cfg.Duration == 0 {
			cfg.Duration = 10 * time.Minute
		}
		return &SimEngine{cfg: cfg, listen: listen, rate: 1.0, volume: 1.0, status: StatusIdle}, nil
	}
}

func (e *SimEngine) Play() error {
	if e.closed {
		return errEngineClosed
	}
	if e.dropped < e.cfg.IgnorePlays {
		e.dropped++
		return nil
	}
	if e.status == StatusReady {
		e.playing = true
	}
	return nil
}

func (e *SimEngine) Pause() error {
	if e.closed {
		return errEngineClosed
	}
	e.playing = false
	return nil
}

func (e *SimEngine) SeekTo(pos time.Duration) error {
	if e.closed {
		return errEngineClosed
	}
	if pos < 0 {
		pos = 0
	}
	if pos > e.cfg.Duration {
		pos = e.cfg.Duration
	}
	e.pos = pos
	if e.loaded && e.status == StatusEnded {
		e.status = StatusReady
		e.emit(StatusEvent{Status: StatusReady})
	}
	e.emit(TimeEvent{Position: e.pos, Duration: e.cfg.Duration})
	return nil
}

func (e *SimEngine) SetVolume(v float64) error {
	if e.closed {
		return errEngineClosed
	}
	e.volume = v
	return nil
}

func (e *SimEngine) SetRate(r float64) error {
	if e.closed {
		return errEngineClosed
	}
	e.rate = r
	return nil
}

func (e *SimEngine) Playing() bool  { return e.playing }
func (e *SimEngine) Status() Status { return e.status }

func (e *SimEngine) Close() error {
	e.closed = true
	e.playing = false
	return nil
}

// Advance moves the simulated clock. Load, buffering, failure, and playback
// progress all happen here so that event order is deterministic.
func (e *SimEngine) Advance(delta time.Duration) {
	if e.closed {
		return
	}
	e.advances++

	if !e.loaded {
		e.loaded = true
		e.status = StatusBuffering
		e.emit(SourceLoadedEvent{Duration: e.cfg.Duration})
		e.emit(StatusEvent{Status: StatusBuffering})
	}

	if e.cfg.FailCode != "" {
		if !e.failed && e.advances > e.cfg.ReadyAfter {
			e.failed = true
			e.emit(ErrorEvent{Code: e.cfg.FailCode, Message: "simulated playback failure"})
		}
		return
	}

	if e.status == StatusBuffering && e.advances > e.cfg.ReadyAfter {
		e.status = StatusReady
		e.emit(StatusEvent{Status: StatusReady})
	}

	if e.status == StatusReady && e.playing {
		e.pos += time.Duration(float64(delta) * e.rate)
		if e.pos >= e.cfg.Duration {
			e.pos = e.cfg.Duration
			e.playing = false
			e.status = StatusEnded
			e.emit(TimeEvent{Position: e.pos, Duration: e.cfg.Duration})
			e.emit(StatusEvent{Status: StatusEnded})
			return
		}
		e.emit(TimeEvent{Position: e.pos, Duration: e.cfg.Duration})
	}
}

func (e *SimEngine) emit(ev Event) {
	if e.listen != nil {
		e.listen(ev)
	}
}
