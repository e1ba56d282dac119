package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
)

var (
	cfgFile   string
	vaultRoot string
)

var rootCmd = &cobra.Command{
	Use:          "crashvault",
	Short:        "Local-first crash and error event vault",
	Long:         "CrashVault records crash events into a plain-file vault, deduplicates them into issues by message fingerprint, and fans new events out to webhooks.",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	logger := slog.New(slog.NewTextHandler(rootCmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	ctx = logging.WithLogger(ctx, logger)
	ctx = logging.WithAttrs(ctx, slog.String("app", "crashvault"))

	rootCmd.SetContext(ctx)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error(ctx, "command execution failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrap(err, "execute root command")
	}

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file path (optional)")
	rootCmd.PersistentFlags().StringVar(&vaultRoot, "vault", "", "Vault root directory (default ~/.crashvault, or CRASHVAULT_VAULT_ROOT)")
}
