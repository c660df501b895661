package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/persona/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List completed results",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		d, err := buildDeps(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		results, err := d.store.ResultRepo().ListResults(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No results yet.")
			return nil
		}

		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{
				truncate(r.ID, 8),
				r.CompletedAt.Local().Format("2006-01-02 15:04"),
				r.Type,
				fmt.Sprintf("%.1f%% %s", r.Confidence, levelInitial(r.ConfidenceLevel)),
				r.TestLength,
				r.SessionID,
			})
		}
		printTable(cmd.OutOrStdout(),
			[]string{"ID", "Completed", "Type", "Confidence", "Length", "Session"},
			rows, map[int]bool{3: true}, nil)
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		d, err := buildDeps(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		rec, err := d.store.ResultRepo().GetResult(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if rec == nil {
			return fmt.Errorf("result %s not found", args[0])
		}
		if asJSON {
			fmt.Println(string(rec.Payload))
			return nil
		}

		var doc report.Document
		if err := json.Unmarshal(rec.Payload, &doc); err != nil {
			return fmt.Errorf("decode result %s: %w", rec.ID, err)
		}
		fmt.Print(doc.Text(time.Now()))
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how often each type has come up",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		counts, err := d.store.ResultRepo().TypeCounts(cmd.Context())
		if err != nil {
			return err
		}
		if len(counts) == 0 {
			fmt.Println("No results yet.")
			return nil
		}

		codes := make([]string, 0, len(counts))
		total := 0
		for code, n := range counts {
			codes = append(codes, code)
			total += n
		}
		sort.Slice(codes, func(i, j int) bool {
			if counts[codes[i]] != counts[codes[j]] {
				return counts[codes[i]] > counts[codes[j]]
			}
			return codes[i] < codes[j]
		})

		rows := make([][]string, 0, len(codes))
		for _, code := range codes {
			title := ""
			if desc, err := d.types.Describe(code); err == nil {
				title = desc.Title
			}
			rows = append(rows, []string{
				code, title, strconv.Itoa(counts[code]),
				fmt.Sprintf("%.1f%%", float64(counts[code])/float64(total)*100),
			})
		}
		printTable(cmd.OutOrStdout(),
			[]string{"Type", "Title", "Count", "Share"},
			rows, map[int]bool{2: true, 3: true},
			[]string{"", "TOTAL", strconv.Itoa(total), ""})
		return nil
	},
}

func levelInitial(level string) string {
	if level == "" {
		return ""
	}
	return "(" + level[:1] + ")"
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of results to show")
	historyShowCmd.Flags().Bool("json", false, "Print the stored JSON document")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyStatsCmd)
}
