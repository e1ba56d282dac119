package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
)

var attachCmd = &cobra.Command{
	Use:   "attach FILE",
	Short: "Copy a file into the vault's attachments directory",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = filepath.Base(args[0])
		}

		src, err := os.Open(args[0])
		if err != nil {
			return errs.Wrap(err, "open attachment source")
		}
		defer src.Close()

		dstPath := filepath.Join(app.Paths.AttachDir(), name)
		dst, err := os.Create(dstPath)
		if err != nil {
			return errs.Wrap(err, "create attachment")
		}
		defer dst.Close()

		n, err := io.Copy(dst, src)
		if err != nil {
			return errs.Wrap(err, "copy attachment")
		}
		if err := dst.Close(); err != nil {
			return errs.Wrap(err, "close attachment")
		}

		logging.Info(ctx, "attachment stored",
			slog.String("name", name), slog.Int64("bytes", n))
		fmt.Fprintf(cmd.OutOrStdout(), "Attached %s (%d bytes)\n", dstPath, n)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(attachCmd)

	attachCmd.Flags().String("name", "", "Store under this name instead of the source basename")
}
