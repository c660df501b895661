package cmd

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/abhisek/persona/internal/session"
	"github.com/abhisek/persona/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List saved sessions",
	Long: `List sessions that can still be resumed. With --all, every readable
session file is listed, including completed and expired ones.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		d, err := buildDeps(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		var list []session.Summary
		if all {
			list, err = d.sessions.List()
		} else {
			list, err = d.sessions.Resumable()
		}
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}

		if len(list) == 0 {
			if all {
				fmt.Println("No sessions found.")
			} else {
				fmt.Printf("No sessions updated in the last %s. Use --all to see older ones.\n",
					d.cfg.ResumeWindow)
			}
			return nil
		}

		rows := make([][]string, 0, len(list))
		for _, s := range list {
			status := "active"
			if s.Completed {
				status = "completed"
			}
			rows = append(rows, []string{
				s.ID, s.TestLength, fmt.Sprintf("%d/%d", s.Answered, s.Total), status, humanize.Time(s.LastUpdated),
			})
		}
		printTable(cmd.OutOrStdout(),
			[]string{"ID", "Length", "Progress", "Status", "Updated"},
			rows, map[int]bool{2: true}, nil)
		return nil
	},
}

var sessionsEventsCmd = &cobra.Command{
	Use:   "events [id]",
	Short: "Show the lifecycle event log, optionally for one session",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		var id string
		if len(args) == 1 {
			id = args[0]
		}

		d, err := buildDeps(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		events, err := d.store.EventRepo().QuerySessionEvents(cmd.Context(), id, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No session events found.")
			return nil
		}

		rows := make([][]string, 0, len(events))
		for _, e := range events {
			rows = append(rows, []string{
				e.Timestamp.Local().Format(timeLayout),
				e.SessionID, e.Action, strconv.Itoa(e.Answered), e.Detail,
			})
		}
		printTable(cmd.OutOrStdout(),
			[]string{"Time", "Session", "Action", "Answered", "Detail"},
			rows, map[int]bool{3: true}, nil)
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired and unreadable session files",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		rep, err := d.orch.Cleanup(cmd.Context())
		if err != nil {
			return fmt.Errorf("cleanup: %w", err)
		}
		if rep.Removed() == 0 {
			fmt.Println("Nothing to clean up.")
			return nil
		}
		fmt.Printf("Removed %d expired and %d corrupt session files (retention %s).\n",
			len(rep.Expired), len(rep.Corrupt), d.cfg.Retention)
		if len(rep.Temp) > 0 {
			fmt.Printf("Removed %d leftover temp files.\n", len(rep.Temp))
		}
		return nil
	},
}

func init() {
	sessionsCmd.Flags().BoolP("all", "a", false, "Include completed and expired sessions")
	sessionsEventsCmd.Flags().IntP("limit", "n", 50, "Number of events to show")
	sessionsCmd.AddCommand(sessionsEventsCmd)
}
