package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/praagya/vidya/internal/screen"
)

type stubScreen struct {
	name   string
	closed bool
}

func (s *stubScreen) Init() tea.Cmd { return nil }

func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }

func (s *stubScreen) View(width, height int) string { return s.name }

func (s *stubScreen) Title() string { return s.name }

func (s *stubScreen) CloseScreen() { s.closed = true }

func TestRouter_PushPop(t *testing.T) {
	home := &stubScreen{name: "home"}
	r := New(home)

	if r.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", r.Depth())
	}
	if r.Active() != home {
		t.Error("Active() is not the initial screen")
	}

	player := &stubScreen{name: "player"}
	r.Push(player)
	if r.Depth() != 2 || r.Active() != player {
		t.Errorf("after Push: depth=%d active=%v", r.Depth(), r.Active())
	}

	r.Pop()
	if r.Depth() != 1 || r.Active() != home {
		t.Errorf("after Pop: depth=%d", r.Depth())
	}
	if !player.closed {
		t.Error("popped screen was not closed")
	}
}

func TestRouter_PopNeverEmptiesStack(t *testing.T) {
	home := &stubScreen{name: "home"}
	r := New(home)

	r.Pop()
	r.Pop()
	if r.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", r.Depth())
	}
	if home.closed {
		t.Error("root screen must not be closed by Pop")
	}
}

func TestRouter_NavigationMessages(t *testing.T) {
	home := &stubScreen{name: "home"}
	r := New(home)

	player := &stubScreen{name: "player"}
	r.Update(PushScreenMsg{Screen: player})
	if r.Active() != player {
		t.Error("PushScreenMsg did not push")
	}

	r.Update(PopScreenMsg{})
	if r.Active() != home {
		t.Error("PopScreenMsg did not pop")
	}
}

func TestRouter_ViewRendersActive(t *testing.T) {
	r := New(&stubScreen{name: "home"})
	r.Push(&stubScreen{name: "player"})
	if got := r.View(80, 24); got != "player" {
		t.Errorf("View() = %q, want active screen content", got)
	}
}
