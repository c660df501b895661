// Package results shows a scored result with its type description.
package results

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	orch "github.com/abhisek/persona/internal/assessment"
	"github.com/abhisek/persona/internal/insight"
	"github.com/abhisek/persona/internal/report"
	"github.com/abhisek/persona/internal/router"
	"github.com/abhisek/persona/internal/screen"
	"github.com/abhisek/persona/internal/session"
	"github.com/abhisek/persona/internal/ui/components"
	"github.com/abhisek/persona/internal/ui/layout"
	"github.com/abhisek/persona/internal/ui/theme"
)

type exportedMsg struct {
	path string
	err  error
}

type reflectedMsg struct {
	reflection *insight.Reflection
	err        error
}

// ResultsScreen renders a result document. With an orchestrator attached
// it can also export the result and ask for a reflection; without one it
// is a read-only view of a stored result.
type ResultsScreen struct {
	doc        *report.Document
	orch       *orch.Orchestrator
	offset     int
	status     string
	statusOK   bool
	reflecting bool
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a results screen for doc. o may be nil.
func New(doc *report.Document, o *orch.Orchestrator) *ResultsScreen {
	return &ResultsScreen{doc: doc, orch: o}
}

func (s *ResultsScreen) Init() tea.Cmd { return nil }

func (s *ResultsScreen) Title() string {
	return "Your Results"
}

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Scroll"}}
	if s.orch != nil {
		hints = append(hints,
			layout.KeyHint{Key: "J", Description: "Export JSON"},
			layout.KeyHint{Key: "T", Description: "Export text"},
		)
		if s.orch.CanReflect() && s.doc.Reflection == nil {
			hints = append(hints, layout.KeyHint{Key: "R", Description: "Reflect"})
		}
		return append(hints, layout.KeyHint{Key: "Enter", Description: "Home"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case exportedMsg:
		s.statusOK = msg.err == nil
		if msg.err != nil {
			s.status = "Export failed: " + msg.err.Error()
		} else {
			s.status = "Saved to " + msg.path
		}
		return s, nil

	case reflectedMsg:
		s.reflecting = false
		if msg.err != nil {
			s.status = "Reflection failed: " + msg.err.Error()
		} else {
			doc := *s.doc
			doc.Reflection = msg.reflection
			s.doc = &doc
			s.orch.AttachReflection(msg.reflection)
			s.status = ""
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.offset = max(s.offset-1, 0)
		case "down", "j":
			s.offset++
		case "pgup":
			s.offset = max(s.offset-10, 0)
		case "pgdown":
			s.offset += 10
		case "J":
			return s, s.export(session.FormatJSON)
		case "t", "T":
			return s, s.export(session.FormatText)
		case "r", "R":
			return s, s.reflect()
		case "enter", "esc":
			if s.orch != nil {
				return s, func() tea.Msg { return router.PopToRootMsg{} }
			}
			return s, router.Pop
		}
	}
	return s, nil
}

func (s *ResultsScreen) export(f session.Format) tea.Cmd {
	if s.orch == nil {
		return nil
	}
	o, doc := s.orch, s.doc
	return func() tea.Msg {
		path, err := o.ExportDocument(doc, f)
		return exportedMsg{path: path, err: err}
	}
}

func (s *ResultsScreen) reflect() tea.Cmd {
	if s.orch == nil || !s.orch.CanReflect() || s.reflecting || s.doc.Reflection != nil {
		return nil
	}
	call, err := s.orch.Reflector()
	if err != nil {
		s.statusOK = false
		s.status = "Reflection failed: " + err.Error()
		return nil
	}
	s.reflecting = true
	s.statusOK = false
	s.status = "Asking for a reflection..."
	return func() tea.Msg {
		r, err := call(context.Background())
		return reflectedMsg{reflection: r, err: err}
	}
}

func (s *ResultsScreen) View(width, height int) string {
	lines := strings.Split(s.render(min(width-4, 96)), "\n")
	if s.status != "" {
		height--
	}
	s.offset = min(s.offset, max(len(lines)-height, 0))
	end := min(s.offset+height, len(lines))

	body := lipgloss.PlaceHorizontal(width, lipgloss.Center,
		strings.Join(lines[s.offset:end], "\n"))
	if s.status != "" {
		style := theme.Hint
		if s.statusOK {
			style = theme.Positive
		}
		body += "\n" + layout.Centered(width, style, s.status)
	}
	return body
}

func (s *ResultsScreen) render(width int) string {
	d := s.doc
	var b strings.Builder
	section := func(title string) {
		b.WriteString("\n")
		b.WriteString(theme.Heading.Render(title))
		b.WriteString("\n")
	}
	bullets := func(items []string) {
		for _, it := range items {
			b.WriteString(theme.Body.Render("  • " + it))
			b.WriteString("\n")
		}
	}

	headline := d.Type
	if d.Analysis != nil && d.Analysis.Title != "" {
		headline += "  " + d.Analysis.Title
	}
	b.WriteString(theme.Title.Width(width).Render(headline))
	b.WriteString("\n")
	sub := fmt.Sprintf("Confidence %.1f%% (%s)", d.Confidence, d.ConfidenceLevel)
	if d.SecondaryType != "" {
		sub += "   Alternative: " + d.SecondaryType
	}
	b.WriteString(theme.Subtitle.Width(width).Render(sub))
	b.WriteString("\n\n")

	for _, ds := range d.Dimensions {
		b.WriteString(components.DimensionBar(ds, width))
		b.WriteString("\n")
	}
	if len(d.Borderline) > 0 {
		b.WriteString("\n")
		for _, bd := range d.Borderline {
			b.WriteString(theme.Warning.Render("≈ " + bd.Name + ": " + bd.Scores))
			b.WriteString("\n")
		}
	}
	if d.Quality != nil && !d.Quality.Accepted {
		b.WriteString("\n")
		b.WriteString(theme.Warning.Render("Note: " + d.Quality.Message))
		b.WriteString("\n")
	}

	if a := d.Analysis; a != nil {
		wrap := lipgloss.NewStyle().Width(width).Foreground(theme.Text)
		section("Overview")
		b.WriteString(wrap.Render(a.Overview))
		b.WriteString("\n")
		if len(a.DimensionInsights) > 0 {
			section("What stood out")
			bullets(a.DimensionInsights)
		}
		section("Cognitive functions")
		for _, p := range a.CognitiveStack.Positions() {
			b.WriteString(theme.Body.Render(fmt.Sprintf("  %-10s %s", p[0], p[1])))
			b.WriteString("\n")
		}
		section("Strengths")
		bullets(a.Strengths)
		section("Watch out for")
		bullets(a.Weaknesses)
		section("Careers that fit")
		bullets(a.CareerMatches)
		section("In relationships")
		b.WriteString(wrap.Render(a.RelationshipStyle))
		b.WriteString("\n")
		if a.Family != "" {
			section("Family: " + a.Family)
			b.WriteString(theme.Body.Render("  Related types: " + strings.Join(a.Compatible, ", ")))
			b.WriteString("\n")
		}
		if len(a.FamousExamples) > 0 {
			section("Famous examples")
			b.WriteString(wrap.Render("  " + strings.Join(a.FamousExamples, ", ")))
			b.WriteString("\n")
		}
	}

	if r := d.Reflection; r != nil {
		var rb strings.Builder
		rb.WriteString(theme.Heading.Render(r.Headline))
		rb.WriteString("\n")
		rb.WriteString(r.Summary)
		for _, tip := range r.GrowthTips {
			rb.WriteString("\n• " + tip)
		}
		if r.BorderlineNote != "" {
			rb.WriteString("\n\n" + r.BorderlineNote)
		}
		b.WriteString("\n")
		b.WriteString(theme.Card.Width(width).Render(rb.String()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("%s test, %d questions, completed in %s",
		d.Metadata.TestLength, d.Metadata.TotalQuestions, d.Metadata.CompletionTime)))
	return b.String()
}
