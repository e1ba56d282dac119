package cmd

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show issue and event counts",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		stats, err := app.Vault.Stats(ctx)
		if err != nil {
			return errs.Wrap(err, "collect stats")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Issues by status:")
		for _, k := range sortedKeys(stats.IssuesByStatus) {
			fmt.Fprintf(out, "  %-10s %d\n", k, stats.IssuesByStatus[k])
		}
		fmt.Fprintln(out, "Events by level:")
		for _, k := range sortedKeys(stats.EventsByLevel) {
			fmt.Fprintf(out, "  %-10s %d\n", k, stats.EventsByLevel[k])
		}
		return nil
	}),
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
