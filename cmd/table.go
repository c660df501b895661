package cmd

import (
	"fmt"
	"io"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/persona/internal/ui/theme"
)

// printTable writes rows under headers as a bordered table. Columns listed
// in right are right-aligned. A non-empty footer row is set off in bold.
func printTable(w io.Writer, headers []string, rows [][]string, right map[int]bool, footer []string) {
	all := rows
	if len(footer) > 0 {
		all = append(append([][]string(nil), rows...), footer)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(headers...).
		Rows(all...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if right[col] {
				s = s.Align(lipgloss.Right)
			}
			if row == table.HeaderRow || (len(footer) > 0 && row == len(all)-1) {
				s = s.Bold(true)
			}
			return s
		})
	fmt.Fprintln(w, t.String())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
