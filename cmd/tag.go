package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
)

var tagCmd = &cobra.Command{
	Use:   "tag ID TAG",
	Short: "Add a tag to an issue",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		id, err := parseIssueID(args[0])
		if err != nil {
			return err
		}
		if err := app.Vault.AddIssueTag(ctx, id, args[1]); err != nil {
			return errs.Wrap(err, "tag issue")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Issue #%d tagged %s\n", id, args[1])
		return nil
	}),
}

var untagCmd = &cobra.Command{
	Use:   "untag ID TAG",
	Short: "Remove a tag from an issue",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		id, err := parseIssueID(args[0])
		if err != nil {
			return err
		}
		if err := app.Vault.RemoveIssueTag(ctx, id, args[1]); err != nil {
			return errs.Wrap(err, "untag issue")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Issue #%d untagged %s\n", id, args[1])
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(untagCmd)
}
