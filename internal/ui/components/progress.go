package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/persona/internal/scoring"
	"github.com/abhisek/persona/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar. percent is a fraction in [0,1].
func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Percent:     percent,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string

	if p.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}

	labelWidth := lipgloss.Width(result)
	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 6 // " 100%"
	}

	barWidth := max(p.Width-labelWidth-percentWidth, 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)
	empty := barWidth - filled

	result += lipgloss.NewStyle().Background(theme.Secondary).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", empty))

	if p.ShowPercent {
		result += lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	}

	return result
}

// DimensionBar draws the split between the two poles of one dimension:
// left label, a bar coloured by pole share, right label.
func DimensionBar(s scoring.DimensionScore, width int) string {
	left := fmt.Sprintf("%s %4.1f%%", s.LeftLabel, s.LeftScore)
	right := fmt.Sprintf("%4.1f%% %s", s.RightScore, s.RightLabel)
	const labelWidth = 20

	barWidth := max(width-2*labelWidth-2, 10)
	leftCells := int(float64(barWidth)*s.LeftScore/100 + 0.5)
	leftCells = min(max(leftCells, 0), barWidth)

	leftStyle := lipgloss.NewStyle().Width(labelWidth).Align(lipgloss.Right)
	rightStyle := lipgloss.NewStyle().Width(labelWidth)
	if s.Preference == s.Dimension.Left().Code {
		leftStyle = leftStyle.Foreground(theme.LeftPole).Bold(true)
		rightStyle = rightStyle.Foreground(theme.TextDim)
	} else {
		leftStyle = leftStyle.Foreground(theme.TextDim)
		rightStyle = rightStyle.Foreground(theme.RightPole).Bold(true)
	}

	bar := lipgloss.NewStyle().Background(theme.LeftPole).Render(strings.Repeat(" ", leftCells)) +
		lipgloss.NewStyle().Background(theme.RightPole).Render(strings.Repeat(" ", barWidth-leftCells))

	line := leftStyle.Render(left) + " " + bar + " " + rightStyle.Render(right)
	if s.IsBorderline {
		line += theme.Warning.Render(" ≈")
	}
	return line
}
