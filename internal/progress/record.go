// Package progress tracks per-video watch state and syncs it with the
// learning service. Sync failures are logged and swallowed so playback
// never stalls on the network.
package progress

import (
	"sort"
	"time"

	"github.com/praagya/vidya/internal/catalog"
	"github.com/praagya/vidya/internal/quiz"
)

// Record is the client-side progress state for one video.
type Record struct {
	VideoID   string
	CourseID  string
	ChapterID string
	VideoType catalog.VideoType

	Position  time.Duration
	Duration  time.Duration
	Completed bool

	// Checkpoint is the furthest position reached through correct answers.
	Checkpoint time.Duration

	attempts []quiz.Attempt
	byID     map[string]int

	// pushed is set after the first successful POST; later syncs PATCH.
	pushed bool
}

// NewRecord creates a Record for a video.
func NewRecord(v catalog.Video) *Record {
	return &Record{
		VideoID:   v.ID,
		CourseID:  v.CourseID,
		ChapterID: v.ChapterID,
		VideoType: v.Type,
		byID:      map[string]int{},
	}
}

// MergeAttempts folds new attempts in, keeping one entry per question.
// A later attempt for the same question replaces the earlier one in place.
func (r *Record) MergeAttempts(attempts []quiz.Attempt) {
	for _, a := range attempts {
		if i, ok := r.byID[a.QuestionID]; ok {
			r.attempts[i] = a
			continue
		}
		r.byID[a.QuestionID] = len(r.attempts)
		r.attempts = append(r.attempts, a)
	}
}

// Attempts returns the deduplicated submission log in first-seen order.
func (r *Record) Attempts() []quiz.Attempt {
	out := make([]quiz.Attempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}

// CorrectQuestionIDs returns the ids answered correctly, sorted.
func (r *Record) CorrectQuestionIDs() []string {
	var ids []string
	for _, a := range r.attempts {
		if a.IsCorrect {
			ids = append(ids, a.QuestionID)
		}
	}
	sort.Strings(ids)
	return ids
}

// SeedCorrect marks questions as already answered correctly, typically from
// a server fetch before playback starts.
func (r *Record) SeedCorrect(ids []string) {
	for _, id := range ids {
		if _, ok := r.byID[id]; ok {
			continue
		}
		r.byID[id] = len(r.attempts)
		r.attempts = append(r.attempts, quiz.Attempt{QuestionID: id, IsCorrect: true})
	}
}

// Pushed reports whether the record has been created server-side.
func (r *Record) Pushed() bool { return r.pushed }

// MarkPushed records that the server copy exists, typically after a clone
// of this record was pushed successfully.
func (r *Record) MarkPushed() { r.pushed = true }

// Clone returns a deep copy safe to hand to another goroutine.
func (r *Record) Clone() *Record {
	c := *r
	c.attempts = make([]quiz.Attempt, len(r.attempts))
	copy(c.attempts, r.attempts)
	c.byID = make(map[string]int, len(r.byID))
	for k, v := range r.byID {
		c.byID[k] = v
	}
	return &c
}
