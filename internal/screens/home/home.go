// Package home is the start screen: pick a test length, resume a session
// or look at past results.
package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/persona/internal/assessment"
	"github.com/abhisek/persona/internal/questionbank"
	"github.com/abhisek/persona/internal/router"
	"github.com/abhisek/persona/internal/screen"
	assessmentscreen "github.com/abhisek/persona/internal/screens/assessment"
	"github.com/abhisek/persona/internal/screens/history"
	"github.com/abhisek/persona/internal/screens/resume"
	"github.com/abhisek/persona/internal/store"
	"github.com/abhisek/persona/internal/ui/components"
	"github.com/abhisek/persona/internal/ui/layout"
	"github.com/abhisek/persona/internal/ui/theme"
)

type resumableMsg struct {
	count int
	err   error
}

type startedMsg struct {
	err error
}

// HomeScreen is the main menu.
type HomeScreen struct {
	orch      *assessment.Orchestrator
	results   store.ResultRepo
	menu      components.Menu
	resumable int
	errMsg    string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Focuser = (*HomeScreen)(nil)

// New creates the home screen. results may be nil, which hides history.
func New(orch *assessment.Orchestrator, results store.ResultRepo) *HomeScreen {
	s := &HomeScreen{orch: orch, results: results}
	s.menu = components.NewMenu(s.items())
	return s
}

func (s *HomeScreen) items() []components.MenuItem {
	var items []components.MenuItem
	for _, cfg := range questionbank.Lengths() {
		items = append(items, components.MenuItem{
			Label:  cfg.Name,
			Hint:   fmt.Sprintf("%d questions, about %d min", cfg.Total(), cfg.EstimatedMinutes),
			Action: s.start(cfg.Length),
		})
	}

	resumeHint := "enter a session ID"
	if s.resumable > 0 {
		resumeHint = fmt.Sprintf("%d recent", s.resumable)
	}
	items = append(items, components.MenuItem{
		Label: "Resume a session",
		Hint:  resumeHint,
		Action: func() tea.Cmd {
			return router.Push(resume.New(s.orch))
		},
	})
	items = append(items, components.MenuItem{
		Label:    "Past results",
		Disabled: s.results == nil,
		Action: func() tea.Cmd {
			return router.Push(history.New(s.results))
		},
	})
	items = append(items, components.MenuItem{
		Label:  "Quit",
		Action: func() tea.Cmd { return tea.Quit },
	})
	return items
}

func (s *HomeScreen) start(length questionbank.Length) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg {
			return startedMsg{err: s.orch.Start(context.Background(), length)}
		}
	}
}

func (s *HomeScreen) Init() tea.Cmd {
	return s.loadResumable()
}

// Focus refreshes the resumable count when the screen is shown again.
func (s *HomeScreen) Focus() tea.Cmd {
	return s.loadResumable()
}

func (s *HomeScreen) loadResumable() tea.Cmd {
	return func() tea.Msg {
		list, err := s.orch.Resumable()
		return resumableMsg{count: len(list), err: err}
	}
}

func (s *HomeScreen) Title() string {
	return "Home"
}

func (s *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case resumableMsg:
		if msg.err == nil {
			s.resumable = msg.count
			selected := s.menu.Selected
			s.menu = components.NewMenu(s.items())
			s.menu.Selected = selected
		}
		return s, nil

	case startedMsg:
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.errMsg = ""
		return s, router.Push(assessmentscreen.New(s.orch))

	case tea.KeyMsg:
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Title, "Discover your personality type"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, theme.Subtitle,
		"Rate each statement from 1 (strongly disagree) to 5 (strongly agree).\nYour progress is saved after every answer."))
	b.WriteString("\n\n")

	menu := s.menu.View()
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(min(width-4, 64)).Render(menu)))

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, theme.Failure, s.errMsg))
	}
	return b.String()
}
