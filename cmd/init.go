package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the vault directory tree",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
		// Bootstrap already ensured the tree; this command exists so a first
		// run has an explicit entry point.
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		logging.Info(ctx, "vault initialized", slog.String("root", app.Paths.Root))
		fmt.Fprintf(cmd.OutOrStdout(), "Vault initialized at %s\n", app.Paths.Root)
		return nil
	}),
}

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the vault root directory",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
		fmt.Fprintln(cmd.OutOrStdout(), app.Paths.Root)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(pathCmd)
}
