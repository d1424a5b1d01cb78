package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/praagya/vidya/internal/ui/theme"
)

// MenuItem represents a single item in a navigation menu. Detail is an
// optional right-aligned annotation (duration, completion badge).
type MenuItem struct {
	Label    string
	Detail   string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical navigation menu.
type Menu struct {
	Items    []MenuItem
	Selected int
	Width    int
}

// NewMenu creates a new menu with the given items.
func NewMenu(items []MenuItem) Menu {
	selected := 0
	for i, item := range items {
		if !item.Disabled {
			selected = i
			break
		}
	}
	return Menu{
		Items:    items,
		Selected: selected,
	}
}

// Init returns nil (no initial command).
func (m Menu) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		for i := m.Selected - 1; i >= 0; i-- {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "down", "j":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if !m.Items[i].Disabled {
				m.Selected = i
				break
			}
		}
	case "enter":
		if m.Selected >= 0 && m.Selected < len(m.Items) {
			item := m.Items[m.Selected]
			if item.Action != nil && !item.Disabled {
				return m, item.Action()
			}
		}
	}

	return m, nil
}

// View renders the menu.
func (m Menu) View() string {
	var s strings.Builder
	for i, item := range m.Items {
		line := "    " + item.Label
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == m.Selected {
			line = "  ▸ " + item.Label
			style = theme.Selected
		}
		if item.Disabled {
			style = theme.Locked
		}

		if item.Detail != "" && m.Width > 0 {
			gap := m.Width - lipgloss.Width(line) - lipgloss.Width(item.Detail) - 2
			if gap < 1 {
				gap = 1
			}
			line += strings.Repeat(" ", gap) + item.Detail
		}

		s.WriteString(style.Render(line) + "\n")
	}
	return s.String()
}
