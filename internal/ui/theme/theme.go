// Package theme holds the colours and shared styles of the TUI.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette, muted and calm.
var (
	Primary   = lipgloss.Color("#7C83FD") // Periwinkle
	Secondary = lipgloss.Color("#4FB3BF") // Sea glass
	Accent    = lipgloss.Color("#F2A65A") // Apricot
	Success   = lipgloss.Color("#6BCB77") // Sage
	Error     = lipgloss.Color("#EF6F6C") // Coral
	Text      = lipgloss.Color("#F1F5F9") // Near white
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#111827") // Ink
	BgCard    = lipgloss.Color("#1F2937") // Charcoal
	Border    = lipgloss.Color("#374151") // Graphite

	// Pole colours for the two sides of a dimension bar.
	LeftPole  = lipgloss.Color("#A78BFA") // Lavender
	RightPole = lipgloss.Color("#4FB3BF") // Sea glass
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Heading = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Positive = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	Warning = lipgloss.NewStyle().
		Foreground(Accent).
		Bold(true)

	Failure = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)
