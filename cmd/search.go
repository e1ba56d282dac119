package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
	vaultuc "crashvault/internal/usecase/vault"
)

var searchCmd = &cobra.Command{
	Use:   "search [TEXT]",
	Short: "Search events by level, tags, and message text",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		level, _ := cmd.Flags().GetString("level")
		tags, _ := cmd.Flags().GetStringArray("tag")
		text := ""
		if len(args) == 1 {
			text = args[0]
		}

		events, err := app.Vault.SearchEvents(ctx, vaultuc.SearchEventsInput{
			Level: level,
			Tags:  tags,
			Text:  text,
		})
		if err != nil {
			return errs.Wrap(err, "search events")
		}

		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matching events.")
			return nil
		}
		for _, ev := range events {
			line := fmt.Sprintf("[%s] %s #%d %s", ev.Level, ev.Timestamp, ev.IssueID, ev.Message)
			if len(ev.Tags) > 0 {
				line += " (" + strings.Join(ev.Tags, ", ") + ")"
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d event(s)\n", len(events))
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().String("level", "", "Filter by level")
	searchCmd.Flags().StringArray("tag", nil, "Require tag (repeatable)")
}
