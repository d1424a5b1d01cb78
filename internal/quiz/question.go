package quiz

import (
	"fmt"
	"time"
)

// DefaultTimeLimit applies when a question does not specify one.
const DefaultTimeLimit = 30 * time.Second

// Kind discriminates the question union. Scoring and rendering switch
// exhaustively on it, so adding a kind is a compile-surfaced change.
type Kind string

const (
	// KindSingleChoice means exactly one option is correct.
	KindSingleChoice Kind = "single-choice"

	// KindMultiChoice means a set of options is correct; the learner must
	// select exactly that set.
	KindMultiChoice Kind = "multi-choice"

	// KindFreeText means the learner types a free-form answer.
	KindFreeText Kind = "free-text"

	// KindFillBlank means the learner fills a blank in the prompt.
	KindFillBlank Kind = "fill-blank"
)

// ParseKind validates a wire kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindSingleChoice, KindMultiChoice, KindFreeText, KindFillBlank:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown question kind %q", s)
}

// Question is one embedded quiz question, loaded once per video and
// immutable during playback.
type Question struct {
	ID     string
	Kind   Kind
	Prompt string

	// TriggerTime is the playback position at which the question fires.
	TriggerTime time.Duration

	// TimeLimit is how long the learner has to answer once the question is
	// shown. Zero means DefaultTimeLimit.
	TimeLimit time.Duration

	// Closeable questions re-fire if the learner seeks backward past the
	// trigger; non-closeable ones fire at most once per session.
	Closeable bool

	// Options is populated for the choice kinds.
	Options []string

	// Correct holds the indices into Options that form the correct answer
	// set. Empty for free-text and fill-blank, which are not auto-scored.
	Correct []int

	// ExplanationRequired marks questions whose submission must carry a
	// learner-written explanation.
	ExplanationRequired bool
}

// EffectiveTimeLimit returns the countdown duration for this question.
func (q *Question) EffectiveTimeLimit() time.Duration {
	if q.TimeLimit > 0 {
		return q.TimeLimit
	}
	return DefaultTimeLimit
}

// Answer is a learner's response to a question. Selected is used by the
// choice kinds, Text by free-text and fill-blank.
type Answer struct {
	Selected    []int
	Text        string
	Explanation string
}

// Attempt records the outcome of one question presentation. Created when the
// question first fires, finalized on submit or timeout, and never reopened
// for a question already answered correctly.
type Attempt struct {
	QuestionID   string
	Answer       Answer
	IsCorrect    bool
	TimedOut     bool
	AttemptedAt  time.Time
	TimeToAnswer time.Duration
}
