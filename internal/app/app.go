// Package app wires the screens into the root Bubble Tea model.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/persona/internal/assessment"
	"github.com/abhisek/persona/internal/logger"
	"github.com/abhisek/persona/internal/router"
	"github.com/abhisek/persona/internal/screen"
	"github.com/abhisek/persona/internal/screens/home"
	"github.com/abhisek/persona/internal/screens/resume"
	"github.com/abhisek/persona/internal/store"
	"github.com/abhisek/persona/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Orchestrator *assessment.Orchestrator
	// Results backs the past results screen. Optional.
	Results store.ResultRepo
	// ResumeID opens the app straight into resuming that session.
	ResumeID string
	Log      *logger.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router   *router.Router
	resumeID string
	orch     *assessment.Orchestrator
	log      *logger.Logger
	width    int
	height   int
}

func newAppModel(opts Options) AppModel {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	return AppModel{
		router:   router.New(home.New(opts.Orchestrator, opts.Results)),
		resumeID: opts.ResumeID,
		orch:     opts.Orchestrator,
		log:      opts.Log,
	}
}

func (m AppModel) Init() tea.Cmd {
	cmd := m.router.Active().Init()
	if m.resumeID != "" {
		cmd = tea.Batch(cmd, router.Push(resume.NewWithID(m.orch, m.resumeID)))
	}
	return cmd
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	var title, status string
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}
	header := layout.RenderHeader(title, status, m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
		}
	}
	footerHints = append(footerHints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	footer := layout.RenderFooter(footerHints, m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the Bubble Tea program and blocks until it exits. An
// unfinished session stays on disk for a later resume.
func Run(opts Options) error {
	m := newAppModel(opts)
	p := tea.NewProgram(m)
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		m.log.Error("tui exited", "error", err)
		return err
	}
	return nil
}
