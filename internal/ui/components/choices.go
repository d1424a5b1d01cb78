package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/praagya/vidya/internal/ui/theme"
)

// ChoicePicker selects answer options for a question. In multi mode space
// toggles options and several can be chosen; in single mode choosing an
// option replaces the previous pick.
type ChoicePicker struct {
	Options []string
	Multi   bool

	cursor string
	Focus  int
	Chosen map[int]bool
}

// NewChoicePicker creates a picker over the given options.
func NewChoicePicker(options []string, multi bool) ChoicePicker {
	return ChoicePicker{
		Options: options,
		Multi:   multi,
		Chosen:  map[int]bool{},
	}
}

// SetChosen replaces the current selection, used when navigating back to an
// already-answered question in a batch.
func (c *ChoicePicker) SetChosen(indices []int) {
	c.Chosen = map[int]bool{}
	for _, i := range indices {
		if i >= 0 && i < len(c.Options) {
			c.Chosen[i] = true
		}
	}
}

// Selected returns the chosen option indices in ascending order.
func (c ChoicePicker) Selected() []int {
	var out []int
	for i := range c.Options {
		if c.Chosen[i] {
			out = append(out, i)
		}
	}
	return out
}

// Update handles navigation and toggling.
func (c ChoicePicker) Update(msg tea.Msg) (ChoicePicker, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if c.Focus > 0 {
			c.Focus--
		}
	case "down", "j":
		if c.Focus < len(c.Options)-1 {
			c.Focus++
		}
	case "space", " ":
		c.toggle(c.Focus)
	}

	return c, nil
}

func (c *ChoicePicker) toggle(i int) {
	if c.Multi {
		c.Chosen[i] = !c.Chosen[i]
		if !c.Chosen[i] {
			delete(c.Chosen, i)
		}
		return
	}
	already := c.Chosen[i]
	c.Chosen = map[int]bool{}
	if !already {
		c.Chosen[i] = true
	}
}

// View renders the option list.
func (c ChoicePicker) View() string {
	var s string
	for i, opt := range c.Options {
		mark := "( )"
		if c.Multi {
			mark = "[ ]"
		}
		if c.Chosen[i] {
			if c.Multi {
				mark = "[x]"
			} else {
				mark = "(•)"
			}
		}

		prefix := "  "
		if i == c.Focus {
			prefix = "▸ "
		}

		line := fmt.Sprintf("%s%s %c) %s", prefix, mark, 'A'+i, opt)
		if i == c.Focus {
			s += theme.Selected.Render(line) + "\n"
		} else if c.Chosen[i] {
			s += theme.Body.Render(line) + "\n"
		} else {
			s += theme.Unselected.Render(line) + "\n"
		}
	}
	return s
}
