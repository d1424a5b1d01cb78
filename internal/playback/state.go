// Package playback orchestrates one video session: question triggering,
// seek gating, milestones, replay, and the hand-off points to progress sync.
// Everything funnels through explicit dispatch methods on Session so event
// ordering is auditable.
package playback

import (
	"time"

	"github.com/praagya/vidya/internal/quiz"
)

// endTolerance is how close to the end counts as "ended".
const endTolerance = 500 * time.Millisecond

// milestones are the progress percentages reported once per session.
var milestones = []int{25, 50, 75}

// Phase is the session's top-level state.
type Phase int

const (
	// PhasePlaying: normal playback; triggers are evaluated on time updates.
	PhasePlaying Phase = iota

	// PhaseQuestion: playback is paused and a question batch is on screen.
	PhaseQuestion

	// PhaseSubmitting: answers are being finalized.
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseQuestion:
		return "question"
	case PhaseSubmitting:
		return "submitting"
	default:
		return "playing"
	}
}

// SyncReason tells the progress syncer why a push is happening.
type SyncReason string

const (
	SyncPause     SyncReason = "pause"
	SyncMilestone SyncReason = "milestone"
	SyncAnswer    SyncReason = "answer"
	SyncComplete  SyncReason = "complete"
)

// Player is the slice of the engine adapter the session drives.
type Player interface {
	SetPlaying(play bool)
	Seek(pos time.Duration) bool
}

// ActiveBatch is the question batch currently on screen. When several
// triggers are crossed in one playback tick their questions are shown
// together as a batch, in trigger order.
type ActiveBatch struct {
	Questions []quiz.Question
	Index     int
	Answers   []quiz.Answer
	Deadline  time.Time
	ShownAt   time.Time
}

// Current returns the question the learner is looking at.
func (b *ActiveBatch) Current() *quiz.Question {
	return &b.Questions[b.Index]
}

// CurrentAnswer returns a pointer to the editable answer for the current
// question.
func (b *ActiveBatch) CurrentAnswer() *quiz.Answer {
	return &b.Answers[b.Index]
}

// CanPrev reports whether Previous navigation is allowed. Disabled on the
// first item.
func (b *ActiveBatch) CanPrev() bool { return b.Index > 0 }

// CanNext reports whether there is a later item to move to.
func (b *ActiveBatch) CanNext() bool { return b.Index < len(b.Questions)-1 }

// OnLast reports whether the learner is on the final item, where Submit All
// lives.
func (b *ActiveBatch) OnLast() bool { return b.Index == len(b.Questions)-1 }
