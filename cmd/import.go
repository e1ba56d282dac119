package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
	vaultuc "crashvault/internal/usecase/vault"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a JSON export into the vault",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		mode, _ := cmd.Flags().GetString("mode")
		var replace bool
		switch mode {
		case "merge":
		case "replace":
			replace = true
		default:
			return fmt.Errorf("unknown import mode %q (want merge or replace)", mode)
		}

		f, err := os.Open(args[0])
		if err != nil {
			return errs.Wrap(err, "open import file")
		}
		defer f.Close()

		res, err := app.Vault.Import(ctx, f, vaultuc.ImportInput{Replace: replace})
		if err != nil {
			return errs.Wrap(err, "import vault")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d issue(s) (%d merged), %d event(s)\n",
			res.IssuesAdded, res.IssuesMerged, res.EventsAdded)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("mode", "merge", "Import mode (merge|replace)")
}
