package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/praagya/vidya/internal/api"
	"github.com/praagya/vidya/internal/quiz"
)

// Service fetches catalog content from the learning service.
type Service struct {
	api *api.Client
	log zerolog.Logger
}

// NewService creates a catalog Service.
func NewService(client *api.Client, log zerolog.Logger) *Service {
	return &Service{api: client, log: log}
}

// Courses lists the learner's enrolled courses without chapter detail.
func (s *Service) Courses(ctx context.Context) ([]Course, error) {
	var out struct {
		Courses []Course `json:"courses"`
	}
	if err := s.api.Get(ctx, "/courses", &out); err != nil {
		return nil, fmt.Errorf("fetch courses: %w", err)
	}
	return out.Courses, nil
}

// Course fetches one course with its chapters and content items. Video
// entries are stamped with their course and chapter ids so downstream
// progress records carry full context.
func (s *Service) Course(ctx context.Context, courseID string) (*Course, error) {
	var course Course
	if err := s.api.Get(ctx, "/courses/"+courseID, &course); err != nil {
		return nil, fmt.Errorf("fetch course %s: %w", courseID, err)
	}
	for ci := range course.Chapters {
		ch := &course.Chapters[ci]
		for vi := range ch.Videos {
			ch.Videos[vi].CourseID = course.ID
			ch.Videos[vi].ChapterID = ch.ID
		}
	}
	return &course, nil
}

// Video fetches a single video's metadata.
func (s *Service) Video(ctx context.Context, videoID string) (*Video, error) {
	var video Video
	if err := s.api.Get(ctx, "/videos/"+videoID, &video); err != nil {
		return nil, fmt.Errorf("fetch video %s: %w", videoID, err)
	}
	return &video, nil
}

// Questions fetches and validates the interactive question set for a video.
// A video without questions returns an empty slice.
func (s *Service) Questions(ctx context.Context, videoID string) ([]quiz.Question, error) {
	var raw json.RawMessage
	if err := s.api.Get(ctx, "/videos/"+videoID+"/questions", &raw); err != nil {
		if se, ok := err.(*api.StatusError); ok && se.Status == 404 {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch questions for %s: %w", videoID, err)
	}
	qs, err := quiz.Decode(raw)
	if err != nil {
		s.log.Warn().Err(err).Str("video", videoID).Msg("question set rejected")
		return nil, err
	}
	return qs, nil
}
