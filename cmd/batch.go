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

var batchCmd = &cobra.Command{
	Use:   "batch ID...",
	Short: "Apply one change to several issues at once",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		ids := make([]int, 0, len(args))
		for _, a := range args {
			id, err := parseIssueID(a)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		resolve, _ := cmd.Flags().GetBool("resolve")
		reopen, _ := cmd.Flags().GetBool("reopen")
		ignore, _ := cmd.Flags().GetBool("ignore")
		status, _ := cmd.Flags().GetString("status")
		severity, _ := cmd.Flags().GetString("severity")
		tags, _ := cmd.Flags().GetStringArray("tag")
		untags, _ := cmd.Flags().GetStringArray("untag")

		res, err := app.Vault.Batch(ctx, vaultuc.BatchInput{
			IssueIDs: ids,
			Resolve:  resolve,
			Reopen:   reopen,
			Ignore:   ignore,
			Status:   status,
			Severity: severity,
			Tags:     tags,
			Untags:   untags,
		})
		if err != nil {
			return errs.Wrap(err, "batch update")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d issue(s)\n", res.Updated)
		for _, id := range res.NotFound {
			fmt.Fprintf(cmd.OutOrStdout(), "Issue #%d not found\n", id)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().Bool("resolve", false, "Mark issues resolved")
	batchCmd.Flags().Bool("reopen", false, "Reopen issues")
	batchCmd.Flags().Bool("ignore", false, "Mark issues ignored")
	batchCmd.Flags().String("status", "", "Set status (overrides the boolean flags)")
	batchCmd.Flags().String("severity", "", "Set severity")
	batchCmd.Flags().StringArray("tag", nil, "Add tag (repeatable)")
	batchCmd.Flags().StringArray("untag", nil, "Remove tag (repeatable)")
}
