package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/persona/internal/questionbank"
	"github.com/abhisek/persona/internal/typedesc"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the program and bundled data versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		questions, err := questionbank.Default()
		if err != nil {
			return err
		}
		types, err := typedesc.Default()
		if err != nil {
			return err
		}
		fmt.Println("persona", version)
		fmt.Printf("  questions  %s (%d items)\n", questions.Version(), questions.Len())
		fmt.Printf("  types      %s\n", types.Version())
		return nil
	},
}
