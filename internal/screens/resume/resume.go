// Package resume lists recent unfinished sessions and resumes one, either
// picked from the list or typed in by ID.
package resume

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	orch "github.com/abhisek/persona/internal/assessment"
	"github.com/abhisek/persona/internal/router"
	"github.com/abhisek/persona/internal/screen"
	assessmentscreen "github.com/abhisek/persona/internal/screens/assessment"
	"github.com/abhisek/persona/internal/screens/results"
	"github.com/abhisek/persona/internal/session"
	"github.com/abhisek/persona/internal/ui/components"
	"github.com/abhisek/persona/internal/ui/layout"
	"github.com/abhisek/persona/internal/ui/theme"
)

type listedMsg struct {
	sessions []session.Summary
	err      error
}

type resumedMsg struct {
	err error
}

// ResumeScreen shows resumable sessions.
type ResumeScreen struct {
	orch     *orch.Orchestrator
	sessions []session.Summary
	selected int
	loaded   bool
	typing   bool
	input    components.TextInput
	errMsg   string
}

var _ screen.Screen = (*ResumeScreen)(nil)
var _ screen.KeyHintProvider = (*ResumeScreen)(nil)

// New creates a resume screen.
func New(o *orch.Orchestrator) *ResumeScreen {
	return &ResumeScreen{orch: o, input: components.NewSessionIDInput()}
}

// NewWithID creates a resume screen that immediately resumes id.
func NewWithID(o *orch.Orchestrator, id string) *ResumeScreen {
	s := New(o)
	s.typing = true
	s.input.Model.SetValue(id)
	return s
}

func (s *ResumeScreen) Init() tea.Cmd {
	if s.typing && s.input.Value() != "" {
		return tea.Batch(s.list(), s.resume(s.input.Value()))
	}
	return s.list()
}

func (s *ResumeScreen) list() tea.Cmd {
	return func() tea.Msg {
		list, err := s.orch.Resumable()
		return listedMsg{sessions: list, err: err}
	}
}

func (s *ResumeScreen) resume(id string) tea.Cmd {
	o := s.orch
	return func() tea.Msg {
		return resumedMsg{err: o.Resume(context.Background(), id)}
	}
}

func (s *ResumeScreen) Title() string {
	return "Resume"
}

func (s *ResumeScreen) KeyHints() []layout.KeyHint {
	if s.typing {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Resume"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Resume"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "/", Description: "Enter ID"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ResumeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case listedMsg:
		s.loaded = true
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.sessions = msg.sessions
		return s, nil

	case resumedMsg:
		if msg.err != nil {
			text := msg.err.Error()
			if errors.Is(msg.err, session.ErrSessionNotFound) {
				text = "No session matches that ID."
			}
			if s.typing {
				s.input.SetError(text)
			} else {
				s.errMsg = text
			}
			return s, nil
		}
		if out, ok := s.orch.Result(); ok {
			return s, func() tea.Msg {
				return router.ReplaceScreenMsg{Screen: results.New(out.Document, s.orch)}
			}
		}
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: assessmentscreen.New(s.orch)}
		}

	case tea.KeyMsg:
		if s.typing {
			return s.updateTyping(msg)
		}
		switch msg.String() {
		case "esc":
			return s, router.Pop
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
		case "/":
			s.typing = true
			s.input.Reset()
			return s, s.input.Init()
		case "enter":
			if s.selected < len(s.sessions) {
				s.errMsg = ""
				return s, s.resume(s.sessions[s.selected].ID)
			}
		}
	}
	return s, nil
}

func (s *ResumeScreen) updateTyping(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.typing = false
		s.input.Reset()
		return s, nil
	case "enter":
		id := s.input.Value()
		if id == "" {
			s.input.SetError("Type a session ID.")
			return s, nil
		}
		return s, s.resume(id)
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ResumeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	if s.typing {
		b.WriteString(layout.Centered(width, theme.Subtitle, "Session ID (or a unique part of it)"))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View()))
		return b.String()
	}

	switch {
	case s.errMsg != "" && len(s.sessions) == 0:
		return layout.Message(width, theme.Failure, "Error: "+s.errMsg)
	case !s.loaded:
		return layout.Message(width, theme.Hint, "Looking for sessions...")
	case len(s.sessions) == 0:
		return layout.Message(width, theme.Hint,
			"No unfinished sessions from the last little while.\nPress / to enter a session ID.")
	}

	cardWidth := min(width-4, 64)
	for i, sum := range s.sessions {
		line := fmt.Sprintf("%s  %s  %d/%d answered  %s",
			sum.ID, sum.TestLength, sum.Answered, sum.Total, humanize.Time(sum.LastUpdated))
		style := theme.Unselected
		prefix := "  "
		if i == s.selected {
			style = theme.Selected
			prefix = "▸ "
		}
		row := lipgloss.NewStyle().Width(cardWidth).Render(style.Render(prefix + line))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, row))
		b.WriteString("\n")
	}
	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, theme.Failure, s.errMsg))
	}
	return b.String()
}
