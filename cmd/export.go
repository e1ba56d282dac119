package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the vault as JSON or CSV",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")

		switch format {
		case "json", "csv":
		default:
			return fmt.Errorf("unknown export format %q (want json or csv)", format)
		}
		if format == "csv" && output == "" {
			return fmt.Errorf("csv export requires --output, refusing to write csv to stdout")
		}

		w := cmd.OutOrStdout()
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return errs.Wrap(err, "create export file")
			}
			defer f.Close()
			w = f
		}

		var err error
		if format == "csv" {
			err = app.Vault.ExportCSV(ctx, w)
		} else {
			err = app.Vault.Export(ctx, w)
		}
		if err != nil {
			return errs.Wrap(err, "export vault")
		}
		if output != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported vault to %s\n", output)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	exportCmd.Flags().StringP("format", "f", "json", "Export format (json|csv)")
}
