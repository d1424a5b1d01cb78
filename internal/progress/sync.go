package progress

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/praagya/vidya/internal/api"
	"github.com/praagya/vidya/internal/quiz"
)

// The progress endpoint keeps booleans as strings and durations in
// milliseconds; wire types mirror that shape exactly.

type wireSubmission struct {
	QuestionID    string `json:"questionId"`
	Answer        string `json:"answer"`
	AttemptStatus string `json:"attemptStatus"`
	TimeTakenMs   int64  `json:"timeTakenMs"`
	Explanation   string `json:"explanation,omitempty"`
}

type wireMeta struct {
	Submission                   []wireSubmission `json:"submission"`
	VideoType                    string           `json:"videoType"`
	LastCorrectCheckpointMs      int64            `json:"lastCorrectCheckpointMs"`
	CorrectlyAnsweredQuestionIds []string         `json:"correctlyAnsweredQuestionIds"`
	SubmittedAt                  string           `json:"submittedAt"`
}

type wireProgress struct {
	VideoID           string   `json:"videoId"`
	CourseID          string   `json:"courseId"`
	ChapterID         string   `json:"chapterId"`
	CurrentDurationMs int64    `json:"currentDurationMs"`
	TotalDurationMs   int64    `json:"totalDurationMs"`
	IsCompleted       string   `json:"isCompleted"`
	Meta              wireMeta `json:"meta"`
}

// Syncer pushes and fetches progress records.
type Syncer struct {
	api *api.Client
	log zerolog.Logger
	now func() time.Time
}

// NewSyncer creates a Syncer backed by the given API client.
func NewSyncer(client *api.Client, log zerolog.Logger) *Syncer {
	return &Syncer{api: client, log: log, now: time.Now}
}

// Push sends the record upstream. The first successful push creates the
// server record with POST; subsequent pushes update it with PATCH. Errors
// are logged and dropped so callers never block playback on the network.
func (s *Syncer) Push(ctx context.Context, rec *Record) {
	body := s.encode(rec)
	var err error
	if rec.pushed {
		err = s.api.Patch(ctx, "/video/progress/"+rec.VideoID, body, nil)
	} else {
		err = s.api.Post(ctx, "/video/progress", body, nil)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("video", rec.VideoID).Msg("progress push dropped")
		return
	}
	rec.pushed = true
}

// Fetch retrieves the server copy of a video's progress and seeds a Record
// from it. A missing record is not an error; the returned Record is fresh.
func (s *Syncer) Fetch(ctx context.Context, videoID string) (*Record, error) {
	var wire wireProgress
	err := s.api.Get(ctx, "/video/progress/"+videoID, &wire)
	if err != nil {
		if se, ok := err.(*api.StatusError); ok && se.Status == 404 {
			return nil, nil
		}
		return nil, err
	}
	rec := &Record{
		VideoID:    wire.VideoID,
		CourseID:   wire.CourseID,
		ChapterID:  wire.ChapterID,
		Position:   time.Duration(wire.CurrentDurationMs) * time.Millisecond,
		Duration:   time.Duration(wire.TotalDurationMs) * time.Millisecond,
		Completed:  wire.IsCompleted == "true",
		Checkpoint: time.Duration(wire.Meta.LastCorrectCheckpointMs) * time.Millisecond,
		byID:       map[string]int{},
		pushed:     true,
	}
	rec.SeedCorrect(wire.Meta.CorrectlyAnsweredQuestionIds)
	return rec, nil
}

func (s *Syncer) encode(rec *Record) wireProgress {
	completed := "false"
	if rec.Completed {
		completed = "true"
	}
	subs := make([]wireSubmission, 0, len(rec.attempts))
	for _, a := range rec.attempts {
		subs = append(subs, encodeSubmission(a))
	}
	correct := rec.CorrectQuestionIDs()
	if correct == nil {
		correct = []string{}
	}
	return wireProgress{
		VideoID:           rec.VideoID,
		CourseID:          rec.CourseID,
		ChapterID:         rec.ChapterID,
		CurrentDurationMs: rec.Position.Milliseconds(),
		TotalDurationMs:   rec.Duration.Milliseconds(),
		IsCompleted:       completed,
		Meta: wireMeta{
			Submission:                   subs,
			VideoType:                    string(rec.VideoType),
			LastCorrectCheckpointMs:      rec.Checkpoint.Milliseconds(),
			CorrectlyAnsweredQuestionIds: correct,
			SubmittedAt:                  s.now().UTC().Format(time.RFC3339),
		},
	}
}

func encodeSubmission(a quiz.Attempt) wireSubmission {
	status := "0"
	if a.IsCorrect {
		status = "1"
	}
	return wireSubmission{
		QuestionID:    a.QuestionID,
		Answer:        encodeAnswer(a.Answer),
		AttemptStatus: status,
		TimeTakenMs:   a.TimeToAnswer.Milliseconds(),
		Explanation:   a.Answer.Explanation,
	}
}

// encodeAnswer flattens an answer to the service's string form: selected
// option indices joined by commas, or the free text verbatim.
func encodeAnswer(ans quiz.Answer) string {
	if ans.Text != "" {
		return ans.Text
	}
	parts := make([]string, 0, len(ans.Selected))
	for _, i := range ans.Selected {
		parts = append(parts, strconv.Itoa(i))
	}
	return strings.Join(parts, ",")
}
