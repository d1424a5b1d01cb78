package player

import (
	"time"

	"github.com/praagya/vidya/internal/progress"
	"github.com/praagya/vidya/internal/quiz"
)

// playTickMsg drives the playback clock. Every tick advances the engine,
// feeds the session state machine and re-renders the seek bar.
type playTickMsg time.Time

// contentReadyMsg is sent when the question set and server progress record
// have been fetched.
type contentReadyMsg struct {
	Questions []quiz.Question
	Record    *progress.Record
	Err       error
}

// syncDoneMsg reports a finished progress push.
type syncDoneMsg struct {
	Pushed bool
}
