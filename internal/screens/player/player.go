// Package player is the playback screen: it mounts the engine adapter, the
// source fallback controller and the question session over one video and
// translates key presses into intents against them.
package player

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/praagya/vidya/internal/analytics"
	"github.com/praagya/vidya/internal/catalog"
	"github.com/praagya/vidya/internal/engine"
	"github.com/praagya/vidya/internal/fallback"
	"github.com/praagya/vidya/internal/playback"
	"github.com/praagya/vidya/internal/progress"
	"github.com/praagya/vidya/internal/quiz"
	"github.com/praagya/vidya/internal/screen"
	"github.com/praagya/vidya/internal/source"
	"github.com/praagya/vidya/internal/store"
	"github.com/praagya/vidya/internal/ui/components"
	"github.com/praagya/vidya/internal/ui/layout"
)

const (
	tickInterval = 250 * time.Millisecond
	seekStep     = 10 * time.Second
)

// Deps are the injected collaborators for a player screen.
type Deps struct {
	Catalog *catalog.Service
	Syncer  *progress.Syncer
	Resume  store.ResumeRepo
	Prefs   store.PrefsRepo
	Sink    analytics.Sink
	Factory engine.Factory
	Log     zerolog.Logger
}

// PlayerScreen implements screen.Screen for video playback.
type PlayerScreen struct {
	deps  Deps
	video catalog.Video

	adapter *engine.Adapter
	ctrl    *fallback.Controller
	sess    *playback.Session
	rec     *progress.Record

	now         time.Time
	loading     bool
	errMsg      string
	syncPending bool

	// question overlay input state, rebuilt on batch navigation
	picker    components.ChoicePicker
	text      components.TextInput
	overlayID string
	closed    bool
}

var _ screen.Screen = (*PlayerScreen)(nil)
var _ screen.KeyHintProvider = (*PlayerScreen)(nil)
var _ screen.Closer = (*PlayerScreen)(nil)

// New creates a player screen for a video.
func New(deps Deps, video catalog.Video) *PlayerScreen {
	return &PlayerScreen{
		deps:    deps,
		video:   video,
		loading: true,
		now:     time.Now(),
	}
}

func (p *PlayerScreen) Init() tea.Cmd {
	return tea.Batch(p.loadContent(), tickCmd())
}

func (p *PlayerScreen) Title() string {
	return p.video.Title
}

// loadContent fetches the question set and prior progress off the UI loop.
func (p *PlayerScreen) loadContent() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		questions, err := p.deps.Catalog.Questions(ctx, p.video.ID)
		if err != nil {
			return contentReadyMsg{Err: err}
		}

		var rec *progress.Record
		if p.deps.Syncer != nil {
			rec, err = p.deps.Syncer.Fetch(ctx, p.video.ID)
			if err != nil {
				p.deps.Log.Warn().Err(err).Str("video", p.video.ID).Msg("progress fetch failed, starting fresh")
			}
		}
		if rec == nil {
			rec = progress.NewRecord(p.video)
			if p.deps.Resume != nil {
				if entry, err := p.deps.Resume.Get(ctx, p.video.ID); err == nil && entry != nil {
					rec.Position = entry.Position
					rec.Checkpoint = entry.Checkpoint
					rec.Completed = entry.Completed
				}
			}
		}
		return contentReadyMsg{Questions: questions, Record: rec}
	}
}

// mount builds the playback pipeline once content is loaded.
func (p *PlayerScreen) mount(questions []quiz.Question, rec *progress.Record) {
	p.rec = rec
	p.loading = false

	sources, err := source.Resolve(p.video.MediaURL)
	if err != nil {
		p.deps.Log.Error().Err(err).Str("video", p.video.ID).Msg("unplayable media url")
		p.errMsg = "This content is unavailable."
		return
	}

	factory := p.deps.Factory
	if factory == nil {
		// default engine: simulated playback sized to the video
		dur := time.Duration(p.video.DurationMs) * time.Millisecond
		if dur <= 0 {
			dur = 5 * time.Minute
		}
		factory = engine.NewSimFactory(nil, engine.SimConfig{Duration: dur, ReadyAfter: 2})
	}

	p.adapter = engine.New(factory, p.canSeek, engine.Hooks{
		OnTime:  p.onEngineTime,
		OnError: p.onEngineError,
		OnEnded: p.onEngineEnded,
	}, p.deps.Log)

	sink := analytics.WithSession(p.deps.Sink, uuid.NewString())

	var resumeAt time.Duration
	if rec.Position > 0 && !rec.Completed {
		resumeAt = rec.Position
	}

	correct := map[string]bool{}
	for _, id := range rec.CorrectQuestionIDs() {
		correct[id] = true
	}
	p.sess = playback.NewSession(playback.Config{
		Video:             p.video,
		Questions:         questions,
		Completed:         rec.Completed,
		AnsweredCorrectly: correct,
		Checkpoint:        rec.Checkpoint,
		Position:          resumeAt,
	}, p.adapter, sink, playback.Hooks{Sync: p.onSync}, p.deps.Log)

	p.ctrl = fallback.New(sources, p.adapter, sink, p.deps.Log)
	p.ctrl.Start()

	if p.deps.Prefs != nil {
		if prefs, err := p.deps.Prefs.Load(context.Background()); err == nil && prefs.Speed > 0 {
			p.adapter.SetSpeed(prefs.Speed)
		}
	}
	// the restore path bypasses seek gating: jumping back to where the
	// learner left off is not a user seek
	p.adapter.Restore(resumeAt)
	p.sess.SetPlaying(true)
}

func (p *PlayerScreen) canSeek() bool {
	if p.sess == nil {
		return true
	}
	return p.sess.CanSeek()
}

func (p *PlayerScreen) onEngineTime(pos, dur time.Duration) {
	if p.sess != nil {
		p.sess.HandleTime(p.now, pos, dur)
	}
}

func (p *PlayerScreen) onEngineError(err engine.EngineError) {
	if p.ctrl != nil {
		p.ctrl.HandleError(p.now, err)
	}
}

func (p *PlayerScreen) onEngineEnded() {
	if p.sess != nil {
		st := p.adapter.State()
		p.sess.HandleTime(p.now, st.Duration, st.Duration)
	}
}

// onSync is invoked by the session on sync transitions; the actual push
// happens in a command so the UI loop never blocks on the network.
func (p *PlayerScreen) onSync(playback.SyncReason) {
	p.syncPending = true
}

func (p *PlayerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case contentReadyMsg:
		if msg.Err != nil {
			p.loading = false
			p.errMsg = "This content is unavailable."
			return p, nil
		}
		p.mount(msg.Questions, msg.Record)
		return p, nil

	case playTickMsg:
		return p.handleTick(time.Time(msg))

	case syncDoneMsg:
		if msg.Pushed && p.rec != nil {
			p.rec.MarkPushed()
		}
		return p, nil

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	if p.inQuestion() && p.textKindActive() {
		var cmd tea.Cmd
		p.text, cmd = p.text.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p *PlayerScreen) handleTick(now time.Time) (screen.Screen, tea.Cmd) {
	p.now = now
	if p.closed {
		return p, nil
	}

	if p.adapter != nil {
		p.adapter.Tick(now)
	}
	if p.sess != nil {
		p.sess.HandleTick(now)
	}
	p.ensureOverlay()

	cmds := []tea.Cmd{tickCmd()}
	if cmd := p.flushSync(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return p, tea.Batch(cmds...)
}

// flushSync snapshots session state into the record and returns a push
// command when a sync transition happened since the last tick.
func (p *PlayerScreen) flushSync() tea.Cmd {
	if !p.syncPending || p.sess == nil || p.rec == nil {
		return nil
	}
	p.syncPending = false

	p.rec.Position = p.sess.Position()
	p.rec.Duration = p.sess.Duration()
	p.rec.Completed = p.sess.Completed()
	p.rec.Checkpoint = p.sess.Checkpoint()
	p.rec.MergeAttempts(p.sess.Attempts())

	snapshot := p.rec.Clone()
	entry := store.ResumeEntry{
		VideoID:    p.video.ID,
		Position:   snapshot.Position,
		Checkpoint: snapshot.Checkpoint,
		Completed:  snapshot.Completed,
		UpdatedAt:  p.now,
	}
	syncer, resume := p.deps.Syncer, p.deps.Resume
	log := p.deps.Log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if resume != nil {
			if err := resume.Put(ctx, entry); err != nil {
				log.Warn().Err(err).Msg("resume journal write failed")
			}
		}
		if syncer != nil {
			syncer.Push(ctx, snapshot)
		}
		return syncDoneMsg{Pushed: snapshot.Pushed()}
	}
}

func (p *PlayerScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if p.sess == nil || p.errMsg != "" {
		return p, nil
	}
	if p.inQuestion() {
		return p.handleQuestionKey(msg)
	}

	switch msg.String() {
	case "space", " ":
		p.sess.SetPlaying(!p.adapter.State().Playing)
	case "left":
		p.sess.Seek(p.sess.Position() - seekStep)
	case "right":
		p.sess.Seek(p.sess.Position() + seekStep)
	case "[":
		p.cycleSpeed(-1)
		return p, p.savePrefs()
	case "]":
		p.cycleSpeed(1)
		return p, p.savePrefs()
	case "-":
		p.adapter.SetVolume(p.adapter.State().Volume - 0.1)
	case "+", "=":
		p.adapter.SetVolume(p.adapter.State().Volume + 0.1)
	case "r":
		if p.sess.Ended() {
			p.sess.Replay()
		}
	}
	return p, nil
}

// ensureOverlay rebuilds the answer input when the question on screen
// changes, seeding it from any answer already given in this batch.
func (p *PlayerScreen) ensureOverlay() {
	if !p.inQuestion() {
		p.overlayID = ""
		return
	}
	batch := p.sess.Active()
	q := batch.Current()
	if q == nil || q.ID == p.overlayID {
		return
	}
	p.overlayID = q.ID

	ans := batch.CurrentAnswer()
	switch q.Kind {
	case quiz.KindSingleChoice, quiz.KindMultiChoice:
		p.picker = components.NewChoicePicker(q.Options, q.Kind == quiz.KindMultiChoice)
		if ans != nil {
			p.picker.SetChosen(ans.Selected)
		}
	default:
		p.text = components.NewTextInput("Type your answer...", 200)
		if ans != nil {
			p.text.SetValue(ans.Text)
		}
	}
}

func (p *PlayerScreen) currentAnswer(q *quiz.Question) quiz.Answer {
	switch q.Kind {
	case quiz.KindSingleChoice, quiz.KindMultiChoice:
		return quiz.Answer{Selected: p.picker.Selected()}
	default:
		return quiz.Answer{Text: p.text.Value()}
	}
}

func (p *PlayerScreen) handleQuestionKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	p.ensureOverlay()
	batch := p.sess.Active()
	q := batch.Current()
	if q == nil {
		return p, nil
	}

	switch msg.String() {
	case "enter":
		p.sess.SetAnswer(p.currentAnswer(q))
		if batch.OnLast() {
			p.sess.SubmitAll(p.now)
			p.overlayID = ""
		} else {
			p.sess.Next()
			p.ensureOverlay()
		}
		return p, nil

	case "tab":
		// keep edits when stepping back
		p.sess.SetAnswer(p.currentAnswer(q))
		p.sess.Previous()
		p.overlayID = ""
		p.ensureOverlay()
		return p, nil
	}

	switch q.Kind {
	case quiz.KindSingleChoice, quiz.KindMultiChoice:
		var cmd tea.Cmd
		p.picker, cmd = p.picker.Update(msg)
		return p, cmd
	default:
		var cmd tea.Cmd
		p.text, cmd = p.text.Update(msg)
		return p, cmd
	}
}

func (p *PlayerScreen) cycleSpeed(dir int) {
	current := p.adapter.State().Speed
	idx := 0
	for i, s := range engine.Speeds {
		if s == current {
			idx = i
			break
		}
	}
	idx += dir
	if idx < 0 || idx >= len(engine.Speeds) {
		return
	}
	p.adapter.SetSpeed(engine.Speeds[idx])
}

func (p *PlayerScreen) savePrefs() tea.Cmd {
	if p.deps.Prefs == nil {
		return nil
	}
	prefs := store.Prefs{Speed: p.adapter.State().Speed}
	repo := p.deps.Prefs
	log := p.deps.Log
	return func() tea.Msg {
		if err := repo.Save(context.Background(), prefs); err != nil {
			log.Warn().Err(err).Msg("prefs save failed")
		}
		return nil
	}
}

// CloseScreen flushes a final progress push and releases the engine.
func (p *PlayerScreen) CloseScreen() {
	if p.closed {
		return
	}
	p.closed = true

	if p.sess != nil && p.rec != nil {
		p.rec.Position = p.sess.Position()
		p.rec.Duration = p.sess.Duration()
		p.rec.Completed = p.sess.Completed()
		p.rec.Checkpoint = p.sess.Checkpoint()
		p.rec.MergeAttempts(p.sess.Attempts())

		snapshot := p.rec.Clone()
		entry := store.ResumeEntry{
			VideoID:    p.video.ID,
			Position:   snapshot.Position,
			Checkpoint: snapshot.Checkpoint,
			Completed:  snapshot.Completed,
			UpdatedAt:  time.Now(),
		}
		syncer, resume := p.deps.Syncer, p.deps.Resume
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if resume != nil {
				resume.Put(ctx, entry)
			}
			if syncer != nil {
				syncer.Push(ctx, snapshot)
			}
		}()
	}
	if p.adapter != nil {
		p.adapter.Close()
	}
}

func (p *PlayerScreen) KeyHints() []layout.KeyHint {
	if p.inQuestion() {
		hints := []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "Space", Description: "Toggle"},
			{Key: "Enter", Description: "Next"},
		}
		if batch := p.sess.Active(); batch != nil && batch.OnLast() {
			hints[2] = layout.KeyHint{Key: "Enter", Description: "Submit"}
		}
		if batch := p.sess.Active(); batch != nil && batch.CanPrev() {
			hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Back"})
		}
		return hints
	}
	if p.sess != nil && p.sess.Ended() {
		return []layout.KeyHint{
			{Key: "R", Description: "Replay"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Space", Description: "Play/Pause"},
		{Key: "←→", Description: "Seek"},
		{Key: "[ ]", Description: "Speed"},
		{Key: "Esc", Description: "Back"},
	}
}

func (p *PlayerScreen) inQuestion() bool {
	return p.sess != nil && p.sess.Phase() == playback.PhaseQuestion && p.sess.Active() != nil
}

func (p *PlayerScreen) textKindActive() bool {
	batch := p.sess.Active()
	if batch == nil {
		return false
	}
	q := batch.Current()
	return q != nil && (q.Kind == quiz.KindFreeText || q.Kind == quiz.KindFillBlank)
}

// tickCmd schedules the next playback tick.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return playTickMsg(t)
	})
}
