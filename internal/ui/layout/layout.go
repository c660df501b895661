// Package layout draws the frame around every screen: a header bar, the
// screen body and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/persona/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24
)

// barPadding is the border plus inner margin of the header and footer.
const barPadding = 4

// KeyHint represents a key binding hint shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

func (h KeyHint) render() string {
	return lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key) +
		" " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(h.Description)
}

func bar(width int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(content)
}

// IsTooSmall returns true if the terminal is below minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Height(height).
		Render(fmt.Sprintf("Terminal too small!\n\nPlease resize to at\nleast %d x %d\n\nCurrent: %d x %d",
			MinWidth, MinHeight, width, height))
}

// RenderHeader draws the app name on the left, title in the middle and
// status, which may be empty, on the right.
func RenderHeader(title, status string, width int) string {
	name := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  Persona")
	right := lipgloss.NewStyle().Foreground(theme.Accent).Render(status)
	inner := max(width-barPadding, 0)

	room := max(inner-2*max(lipgloss.Width(name), lipgloss.Width(right))-2, 1)
	center := lipgloss.NewStyle().Foreground(theme.Text).MaxWidth(room).Render(title)

	nameW, centerW, rightW := lipgloss.Width(name), lipgloss.Width(center), lipgloss.Width(right)
	leftGap := max((inner-centerW)/2-nameW, 1)
	rightGap := max(inner-nameW-leftGap-centerW-rightW, 1)

	return bar(width, name+strings.Repeat(" ", leftGap)+center+strings.Repeat(" ", rightGap)+right)
}

// RenderFooter lays out hints left to right. Hints that do not fit are
// dropped, except the last one, which is usually the quit key.
func RenderFooter(hints []KeyHint, width int) string {
	const sep = "   "
	inner := max(width-barPadding, 0) - 2

	var tail string
	if len(hints) > 0 {
		tail = hints[len(hints)-1].render()
		hints = hints[:len(hints)-1]
	}

	used := lipgloss.Width(tail)
	var parts []string
	for _, h := range hints {
		part := h.render()
		if used+lipgloss.Width(sep)+lipgloss.Width(part) > inner {
			break
		}
		used += lipgloss.Width(sep) + lipgloss.Width(part)
		parts = append(parts, part)
	}
	if tail != "" {
		parts = append(parts, tail)
	}
	return bar(width, "  "+strings.Join(parts, sep))
}

// Centered renders text centred across width in style.
func Centered(width int, style lipgloss.Style, text string) string {
	return style.Width(width).Align(lipgloss.Center).Render(text)
}

// Message renders a centred status line a little below the top, used for
// loading and error states.
func Message(width int, style lipgloss.Style, text string) string {
	return Centered(width, style, "\n\n"+text)
}

// RenderFrame stacks header, content and footer, padding the content to
// fill the space between them.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(body).MaxHeight(body).Render(content),
		footer,
	)
}
