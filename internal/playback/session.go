package playback

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/praagya/vidya/internal/analytics"
	"github.com/praagya/vidya/internal/catalog"
	"github.com/praagya/vidya/internal/quiz"
)

// Config seeds a Session, partly from the server-side progress record.
type Config struct {
	Video     catalog.Video
	Questions []quiz.Question // sorted by trigger time (quiz.Decode guarantees)

	// Completed is true when the video was already watched to completion in
	// an earlier session; it unlocks seeking for gated video types.
	Completed bool

	// AnsweredCorrectly seeds the set of question ids already answered
	// correctly. Those questions never re-trigger.
	AnsweredCorrectly map[string]bool

	// Checkpoint seeds lastCorrectCheckpoint from the server record.
	Checkpoint time.Duration

	// Position seeds the starting playback position when resuming an
	// unfinished video. Triggers before it do not fire on the first time
	// update; a backward seek re-arms closeable ones as usual.
	Position time.Duration
}

// Hooks connect the session to its collaborators. Sync fires on pause,
// milestone, answer submission and completion; the syncer owns delivery and
// failure swallowing.
type Hooks struct {
	Sync func(reason SyncReason)
}

// Session is the question trigger and gating state machine for one mounted
// video screen.
type Session struct {
	video  catalog.Video
	all    []quiz.Question
	player Player
	sink   analytics.Sink
	hooks  Hooks
	log    zerolog.Logger

	phase     Phase
	completed bool
	ended     bool
	pos       time.Duration
	dur       time.Duration

	// answered holds question ids shown this session plus ids answered
	// correctly in any session; members never re-trigger (a backward seek
	// re-arms closeable ones not yet correct).
	answered        map[string]bool
	answeredCorrect map[string]bool
	checkpoint      time.Duration
	attempts        []quiz.Attempt
	milestonesFired map[int]bool

	active *ActiveBatch
}

// NewSession builds a session over a video and its question set.
func NewSession(cfg Config, player Player, sink analytics.Sink, hooks Hooks, log zerolog.Logger) *Session {
	if sink == nil {
		sink = analytics.NopSink{}
	}
	answered := make(map[string]bool, len(cfg.AnsweredCorrectly))
	correct := make(map[string]bool, len(cfg.AnsweredCorrectly))
	for id := range cfg.AnsweredCorrectly {
		answered[id] = true
		correct[id] = true
	}
	return &Session{
		video:           cfg.Video,
		all:             cfg.Questions,
		player:          player,
		sink:            sink,
		hooks:           hooks,
		log:             log,
		completed:       cfg.Completed,
		checkpoint:      cfg.Checkpoint,
		pos:             cfg.Position,
		answered:        answered,
		answeredCorrect: correct,
		milestonesFired: make(map[int]bool),
	}
}

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Active returns the on-screen question batch, nil outside PhaseQuestion.
func (s *Session) Active() *ActiveBatch { return s.active }

// Completed reports whether the video has been watched to completion.
func (s *Session) Completed() bool { return s.completed }

// Ended reports whether playback has reached the end of the video.
func (s *Session) Ended() bool { return s.ended }

// Position returns the last observed playback position.
func (s *Session) Position() time.Duration { return s.pos }

// Duration returns the last observed media duration.
func (s *Session) Duration() time.Duration { return s.dur }

// Checkpoint returns lastCorrectCheckpoint: the furthest point reachable
// without re-answering. It only ever advances.
func (s *Session) Checkpoint() time.Duration { return s.checkpoint }

// Attempts returns the session's submission log in submission order.
func (s *Session) Attempts() []quiz.Attempt { return s.attempts }

// AnsweredCorrectly returns the ids of questions answered correctly so far
// (including ones seeded from the server record).
func (s *Session) AnsweredCorrectly() map[string]bool {
	out := make(map[string]bool, len(s.answeredCorrect))
	for id := range s.answeredCorrect {
		out[id] = true
	}
	return out
}

// CanSeek applies the gating table to this session's video.
func (s *Session) CanSeek() bool {
	return CanSeek(s.video.Type, s.completed)
}

// SetPlaying forwards a user play/pause intent. Play is ignored while a
// question is on screen; pause triggers a progress sync.
func (s *Session) SetPlaying(play bool) {
	if play && s.phase != PhasePlaying {
		return
	}
	s.player.SetPlaying(play)
	if play {
		s.sink.Track(analytics.EventPlay, s.payload(nil))
	} else {
		s.sink.Track(analytics.EventPause, s.payload(nil))
		s.syncNow(SyncPause)
	}
}

// Seek forwards a user seek intent through the gating table. A backward
// seek re-arms closeable questions not yet answered correctly. Returns
// whether the seek was applied.
func (s *Session) Seek(pos time.Duration) bool {
	if s.phase != PhasePlaying {
		return false
	}
	if !s.CanSeek() {
		s.sink.Track(analytics.EventSeekBlocked, s.payload(analytics.Payload{"to": pos.Milliseconds()}))
		return false
	}
	from := s.pos
	if !s.player.Seek(pos) {
		return false
	}
	if pos < from {
		s.rearmCloseable(pos, from)
	}
	s.pos = pos
	s.sink.Track(analytics.EventSeek, s.payload(analytics.Payload{
		"from": from.Milliseconds(),
		"to":   pos.Milliseconds(),
	}))
	return true
}

// rearmCloseable clears the shown marker for closeable questions whose
// trigger lies in (to, from], so they fire again on the way forward.
// Questions already answered correctly stay retired.
func (s *Session) rearmCloseable(to, from time.Duration) {
	for i := range s.all {
		q := &s.all[i]
		if !q.Closeable || s.answeredCorrect[q.ID] {
			continue
		}
		if q.TriggerTime > to && q.TriggerTime <= from {
			delete(s.answered, q.ID)
		}
	}
}

// HandleTime is the trigger evaluation entry point, driven by engine time
// updates. Milestones fire first, then end detection, then any crossed
// question triggers (in ascending trigger order, batched when several are
// crossed in one tick).
func (s *Session) HandleTime(now time.Time, pos, dur time.Duration) {
	if s.phase != PhasePlaying {
		return
	}
	prev := s.pos
	s.pos = pos
	if dur > 0 {
		s.dur = dur
	}

	s.fireMilestones(pos)

	// Triggers win over end detection: a question sitting inside the end
	// tolerance still fires, and completion waits for its submission.
	if pos > prev {
		s.fireTriggers(now, prev, pos)
		if s.phase == PhaseQuestion {
			return
		}
	}

	if s.dur > 0 && pos >= s.dur-endTolerance && !s.ended {
		s.handleEnded()
	}
}

// fireMilestones reports 25/50/75% crossings. Each fires at most once per
// session: a backward seek followed by a forward sweep does not re-fire
// already-reported milestones.
func (s *Session) fireMilestones(pos time.Duration) {
	if s.dur <= 0 {
		return
	}
	pct := int(pos * 100 / s.dur)
	for _, m := range milestones {
		if pct >= m && !s.milestonesFired[m] {
			s.milestonesFired[m] = true
			s.sink.Track(analytics.EventMilestone, s.payload(analytics.Payload{"percent": m}))
			s.syncNow(SyncMilestone)
		}
	}
}

func (s *Session) handleEnded() {
	s.ended = true
	if !s.completed {
		s.completed = true
	}
	s.player.SetPlaying(false)
	s.sink.Track(analytics.EventEnded, s.payload(nil))
	s.syncNow(SyncComplete)
}

// fireTriggers collects every unanswered question whose trigger lies in
// (prev, pos] and shows them as one batch. Crossing t1 then t2 in a single
// tick presents t1 first: the batch preserves ascending trigger order.
func (s *Session) fireTriggers(now time.Time, prev, pos time.Duration) {
	var due []quiz.Question
	for _, q := range s.all {
		if s.answered[q.ID] {
			continue
		}
		if q.TriggerTime > prev && q.TriggerTime <= pos {
			due = append(due, q)
		}
	}
	if len(due) == 0 {
		return
	}

	for _, q := range due {
		s.answered[q.ID] = true
		s.sink.Track(analytics.EventQuestionShown, s.payload(analytics.Payload{
			"questionId": q.ID,
			"triggerMs":  q.TriggerTime.Milliseconds(),
		}))
	}

	s.active = &ActiveBatch{
		Questions: due,
		Answers:   make([]quiz.Answer, len(due)),
		Deadline:  now.Add(due[0].EffectiveTimeLimit()),
		ShownAt:   now,
	}
	s.phase = PhaseQuestion
	s.player.SetPlaying(false)
	s.log.Debug().Int("batch", len(due)).Dur("pos", pos).Msg("question batch fired")
}

// HandleTick checks the question countdown. Expiry auto-submits whatever
// partial answers exist; the timeout is a normal transition, logged with its
// own analytics event, not an error.
func (s *Session) HandleTick(now time.Time) {
	if s.phase != PhaseQuestion || s.active == nil {
		return
	}
	if now.Before(s.active.Deadline) {
		return
	}
	s.log.Debug().Str("question", s.active.Current().ID).Msg("question countdown expired")
	s.finalize(now, true)
}

// SetAnswer records the editable answer for the current batch item.
func (s *Session) SetAnswer(ans quiz.Answer) {
	if s.phase != PhaseQuestion || s.active == nil {
		return
	}
	*s.active.CurrentAnswer() = ans
}

// Next moves to the next batch item.
func (s *Session) Next() {
	if s.phase == PhaseQuestion && s.active != nil && s.active.CanNext() {
		s.active.Index++
	}
}

// Previous moves back one batch item. No-op on the first item.
func (s *Session) Previous() {
	if s.phase == PhaseQuestion && s.active != nil && s.active.CanPrev() {
		s.active.Index--
	}
}

// SubmitAll finalizes every answer in the batch and resumes playback.
func (s *Session) SubmitAll(now time.Time) {
	if s.phase != PhaseQuestion || s.active == nil {
		return
	}
	s.finalize(now, false)
}

func (s *Session) finalize(now time.Time, timedOut bool) {
	s.phase = PhaseSubmitting
	batch := s.active

	for i := range batch.Questions {
		q := &batch.Questions[i]
		ans := batch.Answers[i]
		correct := quiz.Score(q, ans)

		s.attempts = append(s.attempts, quiz.Attempt{
			QuestionID:   q.ID,
			Answer:       ans,
			IsCorrect:    correct,
			TimedOut:     timedOut,
			AttemptedAt:  now,
			TimeToAnswer: now.Sub(batch.ShownAt),
		})

		event := analytics.EventQuestionAnswered
		if timedOut {
			event = analytics.EventQuestionTimeout
		}
		s.sink.Track(event, s.payload(analytics.Payload{
			"questionId": q.ID,
			"correct":    correct,
		}))

		if correct {
			s.answeredCorrect[q.ID] = true
			// The checkpoint only moves forward, and only for gated videos.
			if s.video.Type.Gated() && q.TriggerTime > s.checkpoint {
				s.checkpoint = q.TriggerTime
			}
		}
	}

	s.active = nil
	s.phase = PhasePlaying
	s.syncNow(SyncAnswer)

	// A batch fired inside the end tolerance deferred completion until it
	// was submitted; settle it now instead of resuming playback.
	if s.dur > 0 && s.pos >= s.dur-endTolerance && !s.ended {
		s.handleEnded()
		return
	}
	s.player.SetPlaying(true)
}

// Replay restarts an ended video. Questions already answered stay retired;
// the position returns to zero and playback resumes.
func (s *Session) Replay() {
	if !s.ended {
		return
	}
	s.ended = false
	s.pos = 0
	s.player.Seek(0)
	s.player.SetPlaying(true)
	s.sink.Track(analytics.EventReplay, s.payload(nil))
}

func (s *Session) syncNow(reason SyncReason) {
	if s.hooks.Sync != nil {
		s.hooks.Sync(reason)
	}
}

func (s *Session) payload(extra analytics.Payload) analytics.Payload {
	p := analytics.Payload{
		"videoId":    s.video.ID,
		"videoType":  string(s.video.Type),
		"positionMs": s.pos.Milliseconds(),
	}
	for k, v := range extra {
		p[k] = v
	}
	return p
}
