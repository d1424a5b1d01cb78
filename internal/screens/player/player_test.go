package player

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"

	"github.com/praagya/vidya/internal/analytics"
	"github.com/praagya/vidya/internal/catalog"
	"github.com/praagya/vidya/internal/engine"
	"github.com/praagya/vidya/internal/playback"
	"github.com/praagya/vidya/internal/progress"
	"github.com/praagya/vidya/internal/quiz"
)

func testVideo() catalog.Video {
	return catalog.Video{
		ID:        "v1",
		CourseID:  "c1",
		ChapterID: "ch1",
		Title:     "Intro",
		MediaURL:  "https://cdn.example.com/v1.m3u8",
		Type:      catalog.VideoInteractive,
	}
}

func testQuestions() []quiz.Question {
	return []quiz.Question{{
		ID:          "q1",
		Kind:        quiz.KindSingleChoice,
		Prompt:      "What is shown?",
		TriggerTime: 3 * time.Second,
		Options:     []string{"a line", "a slope"},
		Correct:     []int{1},
	}}
}

func mountedPlayer(t *testing.T, factory engine.Factory, questions []quiz.Question) (*PlayerScreen, *analytics.MemorySink) {
	t.Helper()
	sink := &analytics.MemorySink{}
	p := New(Deps{
		Sink:    sink,
		Factory: factory,
		Log:     zerolog.Nop(),
	}, testVideo())

	p.Update(contentReadyMsg{
		Questions: questions,
		Record:    progress.NewRecord(testVideo()),
	})
	if p.loading || p.errMsg != "" {
		t.Fatalf("mount failed: loading=%v err=%q", p.loading, p.errMsg)
	}
	return p, sink
}

// tickN delivers n one-second ticks starting at base.
func tickN(p *PlayerScreen, base time.Time, n int) {
	for i := 0; i <= n; i++ {
		p.Update(playTickMsg(base.Add(time.Duration(i) * time.Second)))
	}
}

func keyPress(s string) tea.KeyPressMsg {
	switch s {
	case "space":
		return tea.KeyPressMsg{Code: ' ', Text: " "}
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	}
	return tea.KeyPressMsg{Code: rune(s[0]), Text: s}
}

func simFactory(dur time.Duration) engine.Factory {
	return engine.NewSimFactory(nil, engine.SimConfig{Duration: dur, ReadyAfter: 1})
}

func TestPlayer_QuestionInterruptsAndAnswerResumes(t *testing.T) {
	p, sink := mountedPlayer(t, simFactory(60*time.Second), testQuestions())
	base := time.Now()

	tickN(p, base, 6)
	if !p.inQuestion() {
		t.Fatalf("question did not trigger; phase=%v pos=%v", p.sess.Phase(), p.sess.Position())
	}
	if p.adapter.State().Playing {
		t.Error("playback not paused for question")
	}
	if got := len(sink.Named(analytics.EventQuestionShown)); got != 1 {
		t.Errorf("question-shown events = %d, want 1", got)
	}

	// choose the correct option and submit
	p.Update(keyPress("j"))
	p.Update(keyPress("space"))
	p.Update(keyPress("enter"))

	if p.sess.Phase() != playback.PhasePlaying {
		t.Fatalf("phase after submit = %v, want playing", p.sess.Phase())
	}
	attempts := p.sess.Attempts()
	if len(attempts) != 1 || !attempts[0].IsCorrect {
		t.Errorf("attempts = %+v, want one correct", attempts)
	}
	if !p.adapter.State().Playing {
		t.Error("playback did not resume after submit")
	}
}

func TestPlayer_QuestionOverlayShowsSubmitButton(t *testing.T) {
	questions := testQuestions()
	questions = append(questions, quiz.Question{
		ID:          "q2",
		Kind:        quiz.KindSingleChoice,
		Prompt:      "And now?",
		TriggerTime: 4 * time.Second,
		Options:     []string{"x", "y"},
		Correct:     []int{0},
	})
	p, _ := mountedPlayer(t, simFactory(60*time.Second), questions)

	tickN(p, time.Now(), 6)
	if !p.inQuestion() {
		t.Fatal("batch did not fire")
	}

	view := p.View(80, 40)
	if !strings.Contains(view, "Next") || !strings.Contains(view, "Submit") {
		t.Errorf("question overlay missing its button row:\n%s", view)
	}

	// Advance to the last batch item; the buttons stay on screen.
	p.Update(keyPress("space"))
	p.Update(keyPress("enter"))
	if batch := p.sess.Active(); batch == nil || !batch.OnLast() {
		t.Fatal("did not advance to the last question")
	}
	if view := p.View(80, 40); !strings.Contains(view, "Submit") {
		t.Error("submit affordance missing on the last question")
	}
}

func TestPlayer_ResumesGatedVideoFromSavedPosition(t *testing.T) {
	sink := &analytics.MemorySink{}
	p := New(Deps{
		Sink:    sink,
		Factory: simFactory(120 * time.Second),
		Log:     zerolog.Nop(),
	}, testVideo())

	// An interactive video blocks user seeks until completion; the saved
	// position must still be restored on mount.
	rec := progress.NewRecord(testVideo())
	rec.Position = 42 * time.Second
	rec.Checkpoint = 40 * time.Second
	p.Update(contentReadyMsg{Questions: testQuestions(), Record: rec})
	if p.loading || p.errMsg != "" {
		t.Fatalf("mount failed: loading=%v err=%q", p.loading, p.errMsg)
	}

	base := time.Now()
	tickN(p, base, 8)

	if pos := p.adapter.State().Position; pos < 42*time.Second {
		t.Fatalf("position = %v, want playback resumed at or past 42s", pos)
	}
	if pos := p.sess.Position(); pos < 42*time.Second {
		t.Fatalf("session position = %v, want at or past 42s", pos)
	}
	if p.inQuestion() {
		t.Error("trigger before the resume point fired on resume")
	}
}

func TestPlayer_RunsToEndAndReplays(t *testing.T) {
	p, sink := mountedPlayer(t, simFactory(10*time.Second), nil)
	base := time.Now()

	tickN(p, base, 15)
	if !p.sess.Ended() {
		t.Fatalf("video did not end; pos=%v", p.sess.Position())
	}
	if !p.sess.Completed() {
		t.Error("completion not recorded")
	}
	if got := len(sink.Named(analytics.EventEnded)); got != 1 {
		t.Errorf("ended events = %d, want 1", got)
	}

	p.Update(keyPress("r"))
	if p.sess.Ended() {
		t.Error("replay did not reset ended state")
	}
	if p.sess.Position() != 0 {
		t.Errorf("position after replay = %v, want 0", p.sess.Position())
	}
}

func TestPlayer_FallsBackWhenPrimarySourceFails(t *testing.T) {
	factory := engine.NewSimFactory(map[string]engine.SimConfig{
		"https://cdn.example.com/v1.m3u8": {Duration: 60 * time.Second, FailCode: "demuxer"},
	}, engine.SimConfig{Duration: 60 * time.Second, ReadyAfter: 1})

	p, sink := mountedPlayer(t, factory, nil)
	base := time.Now()

	tickN(p, base, 8)
	if p.ctrl.Index() != 1 {
		t.Fatalf("fallback index = %d, want 1", p.ctrl.Index())
	}
	if p.ctrl.Terminal() != nil {
		t.Fatal("controller went terminal with a working fallback")
	}
	if got := len(sink.Named(analytics.EventSourceFallback)); got != 1 {
		t.Errorf("fallback events = %d, want 1", got)
	}
	if p.sess.Position() == 0 {
		t.Error("fallback source never progressed")
	}
}

func TestPlayer_SeekBlockedOnInteractiveVideo(t *testing.T) {
	p, sink := mountedPlayer(t, simFactory(60*time.Second), nil)
	base := time.Now()

	tickN(p, base, 2)
	before := p.sess.Position()
	p.Update(keyPress("right"))
	if p.sess.Position() > before+seekStep {
		t.Error("seek went through on a gated video")
	}
	if got := len(sink.Named(analytics.EventSeekBlocked)); got != 1 {
		t.Errorf("seek-blocked events = %d, want 1", got)
	}
}

func TestPlayer_PauseQueuesSync(t *testing.T) {
	p, _ := mountedPlayer(t, simFactory(60*time.Second), nil)
	base := time.Now()

	tickN(p, base, 3)
	p.Update(keyPress("space"))
	if !p.syncPending {
		t.Fatal("pause did not queue a sync")
	}

	p.Update(playTickMsg(base.Add(4 * time.Second)))
	if p.syncPending {
		t.Error("tick did not flush the queued sync")
	}
	if p.rec.Position == 0 {
		t.Error("record position not snapshotted on flush")
	}
}
