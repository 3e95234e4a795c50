// Package cli provides the command-line interface for the opdoc tools.
package cli

import (
	"github.com/spf13/cobra"
)

// version is the semantic version of the CLI. It can be overridden at
// build time via -ldflags "-X github.com/opdoc-labs/opdoc/internal/cli.version=...".
var version = "dev"

// Execute creates and runs the root command.
func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "opdoc",
		Short: "Operation documentation tools for Go HTTP handlers",
		Long: `opdoc extracts summaries and descriptions from the doc comments of
annotated HTTP handler functions and makes them available to API tooling:
as generated registration code, as an assembled OpenAPI document, or by
enriching an existing OpenAPI document in place.`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newOpenAPICommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}
