package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
)

var purgeCmd = &cobra.Command{
	Use:     "purge ID",
	Aliases: []string{"rm"},
	Short:   "Delete an issue and every event it owns",
	Args:    cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		id, err := parseIssueID(args[0])
		if err != nil {
			return err
		}
		removed, err := app.Vault.Purge(ctx, id)
		if err != nil {
			return errs.Wrap(err, "purge issue")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Purged issue #%d and %d event(s)\n", id, removed)
		return nil
	}),
}

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Delete orphaned and unreadable event files",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		removed, err := app.Vault.GC(ctx)
		if err != nil {
			return errs.Wrap(err, "garbage collect")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d event file(s)\n", removed)
		return nil
	}),
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete event files older than a number of days",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		days, _ := cmd.Flags().GetInt("days")
		if days <= 0 {
			return fmt.Errorf("--days must be positive, got %d", days)
		}
		removed, err := app.Vault.Prune(ctx, days)
		if err != nil {
			return errs.Wrap(err, "prune events")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d event file(s) older than %d day(s)\n", removed, days)
		return nil
	}),
}

var killCmd = &cobra.Command{
	Use:   "kill",
	Short: "Wipe the vault: every issue and every event",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to wipe the vault without --yes")
		}
		removed, err := app.Vault.Wipe(ctx)
		if err != nil {
			return errs.Wrap(err, "wipe vault")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Vault wiped: %d event file(s) removed\n", removed)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(gcCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(killCmd)

	pruneCmd.Flags().Int("days", 90, "Delete event files older than this many days")
	killCmd.Flags().Bool("yes", false, "Confirm the wipe")
}
