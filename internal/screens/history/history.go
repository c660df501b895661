// Package history lists stored results.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/abhisek/persona/internal/report"
	"github.com/abhisek/persona/internal/router"
	"github.com/abhisek/persona/internal/scoring"
	"github.com/abhisek/persona/internal/screen"
	"github.com/abhisek/persona/internal/screens/results"
	"github.com/abhisek/persona/internal/store"
	"github.com/abhisek/persona/internal/ui/layout"
	"github.com/abhisek/persona/internal/ui/theme"
)

const listLimit = 50

type historyLoadedMsg struct {
	Results []store.ResultRecord
	Err     error
}

// HistoryScreen displays past results.
type HistoryScreen struct {
	repo     store.ResultRepo
	results  []store.ResultRecord
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(repo store.ResultRepo) *HistoryScreen {
	return &HistoryScreen{
		repo:     repo,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		list, err := s.repo.ListResults(context.Background(), listLimit)
		return historyLoadedMsg{Results: list, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "Past Results"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Open"},
		{Key: "Space", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.results = msg.Results
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, router.Pop
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.results)-1 {
				s.selected++
			}
			return s, nil
		case "space", " ":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		case "enter":
			if s.selected >= len(s.results) {
				return s, nil
			}
			doc, err := decode(s.results[s.selected])
			if err != nil {
				s.errMsg = err.Error()
				return s, nil
			}
			return s, router.Push(results.New(doc, nil))
		}
	}
	return s, nil
}

func decode(rec store.ResultRecord) (*report.Document, error) {
	var doc report.Document
	if err := json.Unmarshal(rec.Payload, &doc); err != nil {
		return nil, fmt.Errorf("result %s is unreadable: %w", rec.ID, err)
	}
	if doc.Type == "" {
		return nil, fmt.Errorf("result %s has no stored document", rec.ID)
	}
	return &doc, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" && len(s.results) == 0 {
		return layout.Message(width, theme.Failure, "Error: "+s.errMsg)
	}
	if !s.loaded {
		return layout.Message(width, theme.Hint, "Loading results...")
	}
	if len(s.results) == 0 {
		return layout.Message(width, theme.Hint, "No results yet. Take a test first!")
	}

	var b strings.Builder
	b.WriteString("\n")

	first, last := window(len(s.results), s.selected, max(height-4, 3))
	for i := first; i < last; i++ {
		b.WriteString(s.row(i, width))
	}
	if last < len(s.results) {
		b.WriteString(layout.Centered(width, theme.Hint, fmt.Sprintf("%d more", len(s.results)-last)))
		b.WriteString("\n")
	}

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, theme.Failure, s.errMsg))
	}
	return b.String()
}

// row renders result i, followed by its detail line when expanded.
func (s *HistoryScreen) row(i, width int) string {
	r := s.results[i]
	marker := "  "
	style := lipgloss.NewStyle().Foreground(levelColor(r.ConfidenceLevel))
	if i == s.selected {
		marker = "> "
		style = style.Bold(true)
	}
	line := fmt.Sprintf("%s%s  %s  %.1f%% %s  %s test",
		marker, r.CompletedAt.Format("Jan 02, 2006"), r.Type, r.Confidence, r.ConfidenceLevel, r.TestLength)
	out := lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)) + "\n"
	if !s.expanded[i] {
		return out
	}

	parts := []string{fmt.Sprintf("%d answers", r.TotalResponses), "completed " + humanize.Time(r.CompletedAt)}
	if r.SecondaryType != "" {
		parts = append(parts, "alternative "+r.SecondaryType)
	}
	if r.SessionID != "" {
		parts = append(parts, "session "+r.SessionID)
	}
	detail := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("    " + strings.Join(parts, ", "))
	return out + lipgloss.PlaceHorizontal(width, lipgloss.Center, detail) + "\n"
}

// window returns the half-open range of rows to draw so that selected stays
// visible within rows lines.
func window(n, selected, rows int) (int, int) {
	if n <= rows {
		return 0, n
	}
	first := max(min(selected-rows/2, n-rows), 0)
	return first, first + rows
}

func levelColor(level string) color.Color {
	switch level {
	case scoring.LevelStrong:
		return theme.Success
	case scoring.LevelModerate:
		return theme.Text
	case scoring.LevelLow:
		return theme.Accent
	default:
		return theme.Text
	}
}
