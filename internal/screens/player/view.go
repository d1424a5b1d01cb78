package player

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/praagya/vidya/internal/engine"
	"github.com/praagya/vidya/internal/quiz"
	"github.com/praagya/vidya/internal/ui/components"
	"github.com/praagya/vidya/internal/ui/theme"
)

func (p *PlayerScreen) View(width, height int) string {
	switch {
	case p.loading:
		return centered(width, height, theme.Hint.Render("Loading..."))
	case p.errMsg != "":
		return centered(width, height, theme.Incorrect.Render(p.errMsg))
	case p.ctrl != nil && p.ctrl.Terminal() != nil:
		return p.renderExhausted(width, height)
	case p.inQuestion():
		return p.renderQuestion(width, height)
	default:
		return p.renderPlayback(width, height)
	}
}

func (p *PlayerScreen) renderPlayback(width, height int) string {
	st := p.adapter.State()

	var b strings.Builder
	b.WriteString("\n")

	title := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render(p.video.Title)
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(p.renderStage(width, height-10))
	b.WriteString("\n\n")

	bar := components.SeekBar{
		Position:   st.Position,
		Duration:   st.Duration,
		Checkpoint: p.sess.Checkpoint(),
		Width:      width - 8,
	}
	b.WriteString("    " + bar.View())
	b.WriteString("\n\n")

	status := p.statusLine(st)
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render(status))

	return b.String()
}

// renderStage draws the mock video surface: a framed box whose caption
// reflects play state.
func (p *PlayerScreen) renderStage(width, height int) string {
	st := p.adapter.State()
	caption := "⏸  Paused"
	switch {
	case p.sess.Ended():
		caption = "✓ Finished. Press R to replay"
	case st.Buffer == engine.BufferBuffering:
		caption = "… Buffering"
	case st.Buffer == engine.BufferErrored:
		caption = "! Switching source"
	case st.Playing:
		caption = "▶  Playing"
	}

	if height < 5 {
		height = 5
	}
	inner := lipgloss.NewStyle().
		Width(width - 12).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.TextDim).
		Render(caption)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(inner)

	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(box)
}

func (p *PlayerScreen) statusLine(st engine.PlaybackState) string {
	parts := []string{
		fmt.Sprintf("%.2gx", st.Speed),
		fmt.Sprintf("vol %d%%", int(st.Volume*100)),
	}
	if !p.sess.CanSeek() {
		parts = append(parts, "seeking locked until completion")
	}
	return strings.Join(parts, "   ")
}

func (p *PlayerScreen) renderQuestion(width, height int) string {
	batch := p.sess.Active()
	q := batch.Current()
	if q == nil {
		return ""
	}

	var b strings.Builder

	pos := fmt.Sprintf("Question %d of %d", batch.Index+1, len(batch.Questions))
	remaining := batch.Deadline.Sub(p.now)
	if remaining < 0 {
		remaining = 0
	}
	timer := components.FormatClock(remaining)

	header := theme.Subtitle.Width(width - 10).Render(
		pos + "   ⏱ " + timer)
	b.WriteString(header)
	b.WriteString("\n\n")

	b.WriteString(theme.Body.Bold(true).Render(q.Prompt))
	b.WriteString("\n\n")

	switch q.Kind {
	case quiz.KindSingleChoice, quiz.KindMultiChoice:
		b.WriteString(p.picker.View())
	default:
		b.WriteString("Answer: " + p.text.View())
		b.WriteString("\n")
	}

	if q.Kind == quiz.KindMultiChoice {
		b.WriteString("\n" + theme.Hint.Render("Space toggles, several answers may apply"))
	}

	// The highlighted button is what enter does from here.
	next := components.Button{Label: "Next", Active: !batch.OnLast()}
	submit := components.Button{Label: "Submit", Active: batch.OnLast()}
	b.WriteString("\n\n" + next.View() + "  " + submit.View())

	card := theme.Overlay.Width(width - 10).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (p *PlayerScreen) renderExhausted(width, height int) string {
	term := p.ctrl.Terminal()
	msg := theme.Incorrect.Render("Playback failed.") + "\n\n" +
		theme.Body.Render(fmt.Sprintf("All %d sources for this video failed to play.", term.Sources)) + "\n" +
		theme.Hint.Render("Press Esc to go back and try again later.")
	return centered(width, height, msg)
}

func centered(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
