package components

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/praagya/vidya/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // " 100%"
	}

	barWidth := p.Width - labelWidth - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * p.Percent)
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", empty))

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	}

	return result
}

// SeekBar is the playback position bar with time labels and an optional
// checkpoint marker.
type SeekBar struct {
	Position   time.Duration
	Duration   time.Duration
	Checkpoint time.Duration
	Width      int
}

// View renders the seek bar as "mm:ss [====|      ] mm:ss".
func (s SeekBar) View() string {
	left := FormatClock(s.Position)
	right := FormatClock(s.Duration)

	barWidth := s.Width - len(left) - len(right) - 4
	if barWidth < 8 {
		barWidth = 8
	}

	played := 0
	marker := -1
	if s.Duration > 0 {
		played = int(float64(barWidth) * float64(s.Position) / float64(s.Duration))
		if s.Checkpoint > 0 {
			marker = int(float64(barWidth) * float64(s.Checkpoint) / float64(s.Duration))
		}
	}
	if played > barWidth {
		played = barWidth
	}

	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		switch {
		case i == marker:
			bar.WriteString(theme.ProgressCheckpoint.Render(" "))
		case i < played:
			bar.WriteString(theme.ProgressFilled.Render(" "))
		default:
			bar.WriteString(theme.ProgressEmpty.Render(" "))
		}
	}

	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	return dim.Render(left) + "  " + bar.String() + "  " + dim.Render(right)
}

// FormatClock renders a duration as m:ss or h:mm:ss.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
