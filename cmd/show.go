package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
)

var showCmd = &cobra.Command{
	Use:     "show ID",
	Aliases: []string{"sh"},
	Short:   "Show one issue and its events",
	Args:    cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, err := parseIssueID(args[0])
		if err != nil {
			return err
		}

		detail, err := app.Vault.GetIssue(ctx, id)
		if err != nil {
			return errs.Wrap(err, "show issue")
		}

		out := cmd.OutOrStdout()
		i := detail.Issue
		fmt.Fprintf(out, "Issue #%d: %s\n", i.ID, i.Title)
		fmt.Fprintf(out, "  fingerprint: %s\n", i.Fingerprint)
		fmt.Fprintf(out, "  status:      %s\n", i.Status)
		if i.Severity != "" {
			fmt.Fprintf(out, "  severity:    %s\n", i.Severity)
		}
		fmt.Fprintf(out, "  created:     %s\n", i.CreatedAt)
		if i.ResolvedAt != nil {
			fmt.Fprintf(out, "  resolved:    %s\n", *i.ResolvedAt)
		}
		if len(i.Tags) > 0 {
			fmt.Fprintf(out, "  tags:        %s\n", strings.Join(i.Tags, ", "))
		}

		fmt.Fprintf(out, "\nEvents (%d):\n", len(detail.Events))
		for _, ev := range detail.Events {
			fmt.Fprintf(out, "  [%s] %s %s\n", ev.Level, ev.Timestamp, ev.Message)
			if ev.Stacktrace != "" {
				for _, line := range strings.Split(ev.Stacktrace, "\n") {
					fmt.Fprintf(out, "      %s\n", line)
				}
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(showCmd)
}
