package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
	vaultuc "crashvault/internal/usecase/vault"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Page through events, newest first",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		input := vaultuc.ListEventsInput{}
		if cmd.Flags().Changed("issue") {
			id, _ := cmd.Flags().GetInt("issue")
			input.IssueID = &id
		}
		input.Limit, _ = cmd.Flags().GetInt("limit")
		input.Offset, _ = cmd.Flags().GetInt("offset")

		page, err := app.Vault.ListEvents(ctx, input)
		if err != nil {
			return errs.Wrap(err, "list events")
		}

		for _, ev := range page.Events {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s] #%d %s\n", ev.Timestamp, ev.Level, ev.IssueID, ev.Message)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Showing %d of %d event(s)\n", len(page.Events), page.Total)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().Int("issue", 0, "Only events of this issue id")
	eventsCmd.Flags().Int("limit", 50, "Page size")
	eventsCmd.Flags().Int("offset", 0, "Page offset")
}
