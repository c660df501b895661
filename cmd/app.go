package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/persona/internal/app"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <id>",
	Short: "Open the TUI on a saved session",
	Long: `Resume a saved session by its ID or any unique part of it, for example
the time portion. A completed session opens on its results.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, args[0])
	},
}

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command, resumeID string) error {
	d, err := buildDeps(cmd.Context(), cmd, true)
	if err != nil {
		return err
	}
	defer d.Close()

	if rep, err := d.orch.Cleanup(cmd.Context()); err != nil {
		d.log.Warn("session cleanup", "error", err)
	} else if rep.Removed() > 0 {
		d.log.Info("removed old sessions", "expired", len(rep.Expired), "corrupt", len(rep.Corrupt), "temp", len(rep.Temp))
	}

	d.log.Info("starting tui", "session_dir", d.cfg.SessionDir, "resume", resumeID)
	return app.Run(app.Options{
		Orchestrator: d.orch,
		Results:      d.store.ResultRepo(),
		ResumeID:     resumeID,
		Log:          d.log,
	})
}
