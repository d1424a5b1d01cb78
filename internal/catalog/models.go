package catalog

import "fmt"

// VideoType controls seek gating and progress tracking for a video.
type VideoType string

const (
	// VideoBasic videos allow free seeking at any time.
	VideoBasic VideoType = "basic"

	// VideoTrackable videos block seeking until watched to completion once.
	VideoTrackable VideoType = "trackable"

	// VideoTrackableRandom is trackable with randomized question order
	// server-side; gating behaves as trackable.
	VideoTrackableRandom VideoType = "trackableRandom"

	// VideoInteractive videos carry embedded questions and block seeking
	// until completed.
	VideoInteractive VideoType = "interactive"
)

// ParseVideoType validates a wire video type string.
func ParseVideoType(s string) (VideoType, error) {
	switch VideoType(s) {
	case VideoBasic, VideoTrackable, VideoTrackableRandom, VideoInteractive:
		return VideoType(s), nil
	}
	return "", fmt.Errorf("unknown video type %q", s)
}

// Gated reports whether this video type restricts seeking before completion.
func (t VideoType) Gated() bool {
	return t == VideoTrackable || t == VideoTrackableRandom || t == VideoInteractive
}

// Course is a top-level catalog entry.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Chapters    []Chapter `json:"chapters"`
}

// Chapter groups the content items of a course section.
type Chapter struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Videos      []Video      `json:"videos"`
	Notes       []Note       `json:"notes"`
	Assignments []Assignment `json:"assignments"`
	Tests       []Test       `json:"tests"`
}

// Video is a playable catalog item.
type Video struct {
	ID         string    `json:"id"`
	CourseID   string    `json:"courseId"`
	ChapterID  string    `json:"chapterId"`
	Title      string    `json:"title"`
	MediaURL   string    `json:"mediaUrl"`
	Type       VideoType `json:"type"`
	DurationMs int64     `json:"durationMs"`
}

// Note is a text/document content item.
type Note struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Assignment is a batch of questions submitted together.
type Assignment struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	DueDate string `json:"dueDate"`
}

// Test is a timed assessment attached to a chapter.
type Test struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	TimeLimitSec int    `json:"timeLimitSec"`
}
