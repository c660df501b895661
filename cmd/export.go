package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/persona/internal/session"
)

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a saved session to the export directory",
	Long: `Export writes a completed session as a results document and an
unfinished one as a session snapshot. The session is not resumed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("format")
		format, err := session.ParseFormat(raw)
		if err != nil {
			return err
		}

		d, err := buildDeps(cmd.Context(), cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		path, err := d.orch.ExportSession(args[0], format)
		if err != nil {
			return fmt.Errorf("export %s: %w", args[0], err)
		}
		fmt.Println("Exported to", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", "json", "Output format: json or text")
}
