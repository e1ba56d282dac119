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

var addCmd = &cobra.Command{
	Use:   "add MESSAGE",
	Short: "Record a crash event, deduplicated into an issue by message fingerprint",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		stack, _ := cmd.Flags().GetString("stack")
		level, _ := cmd.Flags().GetString("level")
		tags, _ := cmd.Flags().GetStringArray("tag")
		rawCtx, _ := cmd.Flags().GetStringArray("context")

		contextKV, err := parseKeyValues(rawCtx)
		if err != nil {
			return err
		}

		res, err := app.Vault.AddEvent(ctx, vaultuc.AddEventInput{
			Message:    args[0],
			Stacktrace: stack,
			Level:      level,
			Tags:       tags,
			Context:    contextKV,
		})
		if err != nil {
			return errs.Wrap(err, "add event")
		}

		if res.CreatedIssue {
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded event %s for new issue #%d\n", res.EventID, res.IssueID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded event %s for issue #%d\n", res.EventID, res.IssueID)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringP("stack", "s", "", "Stack trace text")
	addCmd.Flags().StringP("level", "l", "error", "Event level (debug|info|warning|error|critical)")
	addCmd.Flags().StringArrayP("tag", "t", nil, "Tag to attach (repeatable)")
	addCmd.Flags().StringArrayP("context", "c", nil, "Context entry key=value (repeatable)")
}

func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("context entry %q must be key=value", p)
		}
		out[k] = v
	}
	return out, nil
}
