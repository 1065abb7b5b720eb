// Package cli implements the surebetctl operator commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "surebetctl",
		Short: "Surebet operator tool",
		Long: `surebetctl runs one-shot surebet detection over local feed files, imports feed files
into PostgreSQL and checks configs.

Examples:
  surebetctl detect --feed sts=data/sts.csv --feed fortuna=data/fortuna.csv
  surebetctl detect --config configs/example.yaml --format json
  surebetctl config validate configs/example.yaml
  surebetctl feed import --feed sts=data/sts.csv`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewDetectCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewFeedCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
