package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve ID",
	Short: "Mark an issue resolved",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		id, err := parseIssueID(args[0])
		if err != nil {
			return err
		}
		if err := app.Vault.Resolve(ctx, id); err != nil {
			return errs.Wrap(err, "resolve issue")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Issue #%d resolved\n", id)
		return nil
	}),
}

var reopenCmd = &cobra.Command{
	Use:   "reopen ID",
	Short: "Reopen a resolved or ignored issue",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		id, err := parseIssueID(args[0])
		if err != nil {
			return err
		}
		if err := app.Vault.Reopen(ctx, id); err != nil {
			return errs.Wrap(err, "reopen issue")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Issue #%d reopened\n", id)
		return nil
	}),
}

var setStatusCmd = &cobra.Command{
	Use:     "set-status ID STATUS",
	Aliases: []string{"st"},
	Short:   "Set an issue's status (open|resolved|ignored)",
	Args:    cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		id, err := parseIssueID(args[0])
		if err != nil {
			return err
		}
		if err := app.Vault.SetStatus(ctx, id, args[1]); err != nil {
			return errs.Wrap(err, "set status")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Issue #%d status set to %s\n", id, args[1])
		return nil
	}),
}

var setTitleCmd = &cobra.Command{
	Use:     "set-title ID TITLE",
	Aliases: []string{"title"},
	Short:   "Set an issue's title",
	Args:    cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		id, err := parseIssueID(args[0])
		if err != nil {
			return err
		}
		if err := app.Vault.SetTitle(ctx, id, args[1]); err != nil {
			return errs.Wrap(err, "set title")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Issue #%d title updated\n", id)
		return nil
	}),
}

var setSeverityCmd = &cobra.Command{
	Use:   "set-severity ID SEVERITY",
	Short: "Set an issue's severity (low|medium|high|critical)",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		id, err := parseIssueID(args[0])
		if err != nil {
			return err
		}
		if err := app.Vault.SetSeverity(ctx, id, args[1]); err != nil {
			return errs.Wrap(err, "set severity")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Issue #%d severity set to %s\n", id, args[1])
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(reopenCmd)
	rootCmd.AddCommand(setStatusCmd)
	rootCmd.AddCommand(setTitleCmd)
	rootCmd.AddCommand(setSeverityCmd)
}
