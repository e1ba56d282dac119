package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
)

var noteCmd = &cobra.Command{
	Use:   "note MESSAGE",
	Short: "Record a freestanding note event, not tied to any issue",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		tags, _ := cmd.Flags().GetStringArray("tag")
		id, err := app.Vault.AddNote(ctx, args[0], tags)
		if err != nil {
			return errs.Wrap(err, "add note")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded note %s\n", id)
		return nil
	}),
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "File a freestanding report with a title and body",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		title, _ := cmd.Flags().GetString("title")
		body, _ := cmd.Flags().GetString("body")
		tags, _ := cmd.Flags().GetStringArray("tag")
		if title == "" {
			return fmt.Errorf("--title is required")
		}

		id, err := app.Vault.AddReport(ctx, title, body, tags)
		if err != nil {
			return errs.Wrap(err, "add report")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded report %s\n", id)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(reportCmd)

	noteCmd.Flags().StringArrayP("tag", "t", nil, "Tag to attach (repeatable)")
	reportCmd.Flags().String("title", "", "Report title")
	reportCmd.Flags().String("body", "", "Report body")
	reportCmd.Flags().StringArrayP("tag", "t", nil, "Tag to attach (repeatable)")
}
