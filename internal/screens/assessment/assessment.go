// Package assessment is the question-by-question test screen.
package assessment

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	orch "github.com/abhisek/persona/internal/assessment"
	"github.com/abhisek/persona/internal/questionbank"
	"github.com/abhisek/persona/internal/router"
	"github.com/abhisek/persona/internal/screen"
	"github.com/abhisek/persona/internal/screens/results"
	"github.com/abhisek/persona/internal/session"
	"github.com/abhisek/persona/internal/ui/components"
	"github.com/abhisek/persona/internal/ui/layout"
	"github.com/abhisek/persona/internal/ui/theme"
)

type finishedMsg struct {
	outcome *orch.Outcome
	err     error
}

// AssessmentScreen presents one question at a time.
type AssessmentScreen struct {
	orch        *orch.Orchestrator
	question    questionbank.Question
	scale       components.Likert
	confirmQuit bool
	finishing   bool
	errMsg      string
}

var _ screen.Screen = (*AssessmentScreen)(nil)
var _ screen.KeyHintProvider = (*AssessmentScreen)(nil)
var _ screen.StatusProvider = (*AssessmentScreen)(nil)

// New creates the screen for the orchestrator's running test.
func New(o *orch.Orchestrator) *AssessmentScreen {
	s := &AssessmentScreen{orch: o}
	s.load()
	return s
}

// load points the screen at the current question.
func (s *AssessmentScreen) load() {
	q, ok := s.orch.Current()
	if !ok {
		return
	}
	s.question = q
	preset, _ := s.orch.Answer(q.ID)
	s.scale = components.NewLikert(q.Options, preset)
}

func (s *AssessmentScreen) Init() tea.Cmd {
	if s.orch.IsComplete() {
		return s.finish()
	}
	return nil
}

func (s *AssessmentScreen) Title() string {
	if cfg := s.orch.Length(); cfg.Name != "" {
		return cfg.Name
	}
	return "Assessment"
}

// Status shows the answered count in the header.
func (s *AssessmentScreen) Status() string {
	p := s.orch.Progress()
	return fmt.Sprintf("%d/%d  %s", p.Answered, p.Total, session.FormatElapsed(p.Elapsed))
}

func (s *AssessmentScreen) KeyHints() []layout.KeyHint {
	if s.confirmQuit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Save and leave"},
			{Key: "N", Description: "Keep going"},
		}
	}
	return []layout.KeyHint{
		{Key: "1-5", Description: "Answer"},
		{Key: "↑↓ Enter", Description: "Choose"},
		{Key: "S", Description: "Skip"},
		{Key: "B", Description: "Back"},
		{Key: "Esc", Description: "Pause"},
	}
}

func (s *AssessmentScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case finishedMsg:
		s.finishing = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		return s, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: results.New(msg.outcome.Document, s.orch)}
		}

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *AssessmentScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.finishing {
		return s, nil
	}
	key := msg.String()

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.orch.Abandon(context.Background())
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	switch key {
	case "esc":
		s.confirmQuit = true
		return s, nil
	case "s", "S":
		return s.answer(s.orch.Skip())
	case "b", "B", "backspace":
		if _, err := s.orch.Back(context.Background()); err != nil {
			s.errMsg = err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.load()
		return s, nil
	}

	s.scale, _ = s.scale.Update(msg)
	if s.scale.Chosen != 0 {
		return s.answer(s.orch.Submit(s.scale.Chosen))
	}
	return s, nil
}

func (s *AssessmentScreen) answer(err error) (screen.Screen, tea.Cmd) {
	if err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.errMsg = ""
	if s.orch.IsComplete() {
		return s, s.finish()
	}
	s.load()
	return s, nil
}

func (s *AssessmentScreen) finish() tea.Cmd {
	s.finishing = true
	o := s.orch
	return func() tea.Msg {
		out, err := o.Finish(context.Background())
		return finishedMsg{outcome: out, err: err}
	}
}

func (s *AssessmentScreen) View(width, height int) string {
	if s.finishing {
		return layout.Message(width, theme.Hint, "Scoring your answers...")
	}
	if s.confirmQuit {
		return layout.Message(width, theme.Body,
			"Leave the test?\n\nYour answers are saved. Resume it from the home screen\nwithin the next half hour, or later by session ID.")
	}

	var b strings.Builder
	p := s.orch.Progress()
	barWidth := min(width-8, 70)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		components.NewProgressBar(fmt.Sprintf("Question %d of %d", min(p.Answered+1, p.Total), p.Total),
			p.Percentage/100, true, barWidth).View()))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Padding(0, 4).
		Render(s.question.Text))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(40).Render(s.scale.View())))

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, theme.Failure, s.errMsg))
	}
	if s.orch.PersistError() != nil {
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, theme.Warning, "Warning: progress could not be saved to disk."))
	}
	return b.String()
}
