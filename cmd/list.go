package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
	vaultuc "crashvault/internal/usecase/vault"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List issues",
	Args:    cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		status, _ := cmd.Flags().GetString("status")
		sortKey, _ := cmd.Flags().GetString("sort")
		desc, _ := cmd.Flags().GetBool("desc")

		issues, err := app.Vault.ListIssues(ctx, vaultuc.ListIssuesInput{
			Status:     status,
			SortKey:    sortKey,
			Descending: desc,
		})
		if err != nil {
			return errs.Wrap(err, "list issues")
		}

		if len(issues) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No issues.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tSEVERITY\tFINGERPRINT\tCREATED\tTITLE")
		for _, i := range issues {
			sev := string(i.Severity)
			if sev == "" {
				sev = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", i.ID, i.Status, sev, i.Fingerprint, i.CreatedAt, i.Title)
		}
		return w.Flush()
	}),
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().String("status", "", "Filter by status (open|resolved|ignored)")
	listCmd.Flags().String("sort", "id", "Sort key (id|title|status|created_at)")
	listCmd.Flags().Bool("desc", false, "Sort descending")
}
