package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/persona/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with the app styling. When Allowed is
// set, single-character keys outside it are dropped.
type TextInput struct {
	Model   textinput.Model
	Allowed string
	errMsg  string
}

// NewTextInput creates a new styled text input.
func NewTextInput(placeholder, allowed string, maxWidth int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()

	if maxWidth > 0 {
		ti.CharLimit = maxWidth
	}

	return TextInput{
		Model:   ti,
		Allowed: allowed,
	}
}

// NewSessionIDInput accepts the characters a session ID can contain.
func NewSessionIDInput() TextInput {
	return NewTextInput("20260101_093000", "0123456789_", 24)
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.Allowed != "" {
		if kmsg, ok := msg.(tea.KeyMsg); ok {
			key := kmsg.String()
			if len(key) == 1 && !strings.Contains(t.Allowed, key) {
				return t, nil
			}
		}
	}
	t.errMsg = ""

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.errMsg != "" {
		view += "  " + lipgloss.NewStyle().Foreground(theme.Error).Render(t.errMsg)
	}
	return view
}

// Value returns the trimmed input value.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// SetError shows msg beside the input until the next edit.
func (t *TextInput) SetError(msg string) {
	t.errMsg = msg
}

// Reset clears the input.
func (t *TextInput) Reset() {
	t.Model.SetValue("")
	t.errMsg = ""
}
