package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/persona/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "persona",
	Short: "Personality type assessment in the terminal",
	Long: `Persona asks a set of Likert-scale statements across four dimensions,
scores them into one of sixteen personality types and explains the result.
Progress is saved after every answer so a test can be resumed later.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "")
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("home", "", "Data directory (overrides PERSONA_HOME)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PERSONA_DB)")
	rootCmd.PersistentFlags().String("sessions", "", "Session directory (overrides PERSONA_SESSION_DIR)")

	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the environment and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var ov config.Overrides
	ov.Home, _ = cmd.Flags().GetString("home")
	ov.DBPath, _ = cmd.Flags().GetString("db")
	ov.SessionDir, _ = cmd.Flags().GetString("sessions")
	return config.Load(ov)
}
