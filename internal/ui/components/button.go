package components

import "github.com/praagya/vidya/internal/ui/theme"

// Button is the enter-key affordance rendered under a form. Active marks
// the button the enter key currently triggers; the screen owning the form
// handles the key itself.
type Button struct {
	Label  string
	Active bool
}

// View renders the button.
func (b Button) View() string {
	label := " " + b.Label + " "
	if b.Active {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}
