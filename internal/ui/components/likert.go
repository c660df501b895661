package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/persona/internal/questionbank"
	"github.com/abhisek/persona/internal/ui/theme"
)

// Likert is a five-point scale selector. Arrow keys move the cursor, digit
// keys pick an option directly and Enter confirms.
type Likert struct {
	Options  []questionbank.Option
	Selected int
	// Chosen is the confirmed value, zero until a choice is made.
	Chosen int
}

// NewLikert creates a selector over opts with the cursor on the option
// valued preset, or on the middle option.
func NewLikert(opts []questionbank.Option, preset int) Likert {
	l := Likert{Options: opts, Selected: len(opts) / 2}
	for i, o := range opts {
		if o.Value == preset {
			l.Selected = i
		}
	}
	return l
}

// Update handles keyboard navigation and selection.
func (l Likert) Update(msg tea.Msg) (Likert, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(l.Options) == 0 {
		return l, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k", "left", "h":
		if l.Selected > 0 {
			l.Selected--
		}
	case "down", "j", "right", "l":
		if l.Selected < len(l.Options)-1 {
			l.Selected++
		}
	case "enter", "space":
		l.Chosen = l.Options[l.Selected].Value
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			for i, o := range l.Options {
				if o.Value == int(key[0]-'0') {
					l.Selected = i
					l.Chosen = o.Value
				}
			}
		}
	}
	return l, nil
}

// View renders the options, one per line.
func (l Likert) View() string {
	var b strings.Builder
	for i, o := range l.Options {
		prefix := "  "
		style := lipgloss.NewStyle().Foreground(theme.Text)
		if i == l.Selected {
			prefix = "▸ "
			style = theme.Selected
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%d  %s", prefix, o.Value, o.Text)))
		b.WriteString("\n")
	}
	return b.String()
}
