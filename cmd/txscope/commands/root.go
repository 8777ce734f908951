package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	return newRootCommand(version, commit, buildDate).ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	var configDir string

	rootCmd := &cobra.Command{
		Use:   "txscope",
		Short: "Scoped transactional connection manager tooling",
		Long: `txscope resolves the configured data source and drives connections through the
open/begin/commit/rollback/close protocol of the scoped connection manager.

The configuration is read from property.yaml (property-<env>.yaml when ENVIRONMENT is
DEV, STAGE or PROD) in the --config directory, environment variables override it.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "", "directory holding the property files")

	rootCmd.AddCommand(newCheckCommand(&configDir))
	rootCmd.AddCommand(newServeCommand(&configDir))
	rootCmd.AddCommand(newVersionCommand(fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate)))

	return rootCmd
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "txscope "+version)
		},
	}
}
