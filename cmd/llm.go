package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/persona/internal/llm"
	"github.com/abhisek/persona/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the LLM calls made for result reflections",
}

// withEvents opens the store and hands its event repository to fn.
func withEvents(cmd *cobra.Command, fn func(ctx context.Context, repo store.EventRepo) error) error {
	d, err := buildDeps(cmd.Context(), cmd, false)
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(cmd.Context(), d.store.EventRepo())
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		return withEvents(cmd, func(ctx context.Context, repo store.EventRepo) error {
			events, err := repo.QueryLLMEvents(ctx, store.QueryOpts{Limit: limit})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}

			var rows [][]string
			for _, e := range events {
				if purpose != "" && e.Purpose != purpose {
					continue
				}
				status := "ok"
				if !e.Success {
					status = "failed"
				}
				rows = append(rows, []string{
					strconv.Itoa(e.ID),
					e.Timestamp.Local().Format(timeLayout),
					e.Purpose,
					truncate(e.Model, 28),
					strconv.Itoa(e.InputTokens),
					strconv.Itoa(e.OutputTokens),
					strconv.FormatInt(e.LatencyMs, 10),
					status,
				})
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No LLM events found.")
				return nil
			}
			printTable(out,
				[]string{"ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "Status"},
				rows, map[int]bool{0: true, 4: true, 5: true, 6: true}, nil)
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		return withEvents(cmd, func(ctx context.Context, repo store.EventRepo) error {
			e, err := repo.GetLLMEvent(ctx, id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("event %d not found", id)
			}

			out := cmd.OutOrStdout()
			fields := [][2]string{
				{"ID", strconv.Itoa(e.ID)},
				{"Time", e.Timestamp.Local().Format(timeLayout)},
				{"Provider", e.Provider},
				{"Model", e.Model},
				{"Purpose", e.Purpose},
				{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
				{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
				{"Success", strconv.FormatBool(e.Success)},
			}
			if e.ErrorMessage != "" {
				fields = append(fields, [2]string{"Error", e.ErrorMessage})
			}
			for _, f := range fields {
				fmt.Fprintf(out, "%-10s %s\n", f[0]+":", f[1])
			}
			printBody(out, "REQUEST", e.RequestBody)
			printBody(out, "RESPONSE", e.ResponseBody)
			return nil
		})
	},
}

func printBody(w io.Writer, label, body string) {
	rule := strings.Repeat("─", 60)
	if body == "" {
		body = "(not captured)"
	}
	fmt.Fprintf(w, "\n%s\n%s\n%s\n%s\n", rule, label, rule, body)
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEvents(cmd, func(ctx context.Context, repo store.EventRepo) error {
			byPurpose, err := repo.LLMUsageByPurpose(ctx)
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(byPurpose) == 0 {
				fmt.Fprintln(out, "No LLM usage recorded yet.")
				return nil
			}

			var calls, in, outTok int
			rows := make([][]string, 0, len(byPurpose))
			for _, st := range byPurpose {
				rows = append(rows, []string{
					st.Purpose,
					strconv.Itoa(st.Calls),
					strconv.Itoa(st.InputTokens),
					strconv.Itoa(st.OutputTokens),
					strconv.Itoa(st.InputTokens + st.OutputTokens),
					strconv.FormatInt(st.AvgLatencyMs, 10),
				})
				calls += st.Calls
				in += st.InputTokens
				outTok += st.OutputTokens
			}
			fmt.Fprintln(out, "Usage by purpose")
			printTable(out,
				[]string{"Purpose", "Calls", "Input", "Output", "Total", "Avg ms"},
				rows, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true},
				[]string{"TOTAL", strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(outTok), strconv.Itoa(in + outTok), ""})

			byModel, err := repo.LLMUsageByModel(ctx)
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			if len(byModel) == 0 {
				return nil
			}
			printCosts(out, byModel)
			return nil
		})
	},
}

func printCosts(w io.Writer, usage []store.LLMUsage) {
	var total float64
	var unpriced []string
	rows := make([][]string, 0, len(usage))
	for _, mu := range usage {
		cost := "?"
		if p := llm.LookupCost(mu.Model); p != nil {
			c := p.Cost(mu.InputTokens, mu.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, mu.Model)
		}
		rows = append(rows, []string{
			truncate(mu.Model, 32),
			strconv.Itoa(mu.Calls),
			strconv.Itoa(mu.InputTokens),
			strconv.Itoa(mu.OutputTokens),
			cost,
		})
	}

	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintln(w, "\nEstimated cost (USD)")
	printTable(w,
		[]string{"Model", "Calls", "Input", "Output", "Cost"},
		rows, map[int]bool{1: true, 2: true, 3: true, 4: true},
		[]string{label, "", "", "", formatCost(total)})
	if len(unpriced) > 0 {
		fmt.Fprintf(w, "\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
	}
}

var llmStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which LLM provider reflections would use",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		lc := cfg.LLM
		source := "PERSONA_LLM_PROVIDER"
		if lc.Provider == "" {
			found, ok := llm.DiscoverConfig(lc)
			if !ok {
				fmt.Fprintln(out, "No LLM provider configured; reflections are disabled.")
				fmt.Fprintln(out, "Set PERSONA_LLM_PROVIDER or one of GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY.")
				return nil
			}
			lc, source = found, "discovered API key"
		}
		if err := lc.Validate(); err != nil {
			return err
		}

		fmt.Fprintf(out, "Provider:  %s (%s)\n", lc.Provider, source)
		fmt.Fprintf(out, "Model:     %s\n", lc.Model())
		fmt.Fprintf(out, "Timeout:   %s\n", lc.Timeout)
		fmt.Fprintf(out, "Retries:   %d attempts, %s to %s backoff\n",
			lc.Retry.MaxAttempts, lc.Retry.InitialWait, lc.Retry.MaxWait)
		return nil
	},
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. reflection)")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd, llmStatusCmd)
}
