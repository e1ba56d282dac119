package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
)

// exitCodeError carries a wrapped command's exit code out through Execute so
// main can propagate it.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.code)
}

// ExitCode extracts the process exit code to use for err, defaulting to 1.
func ExitCode(err error) int {
	var ec *exitCodeError
	if errors.As(err, &ec) {
		return ec.code
	}
	return 1
}

var wrapCmd = &cobra.Command{
	Use:   "wrap -- COMMAND [ARG...]",
	Short: "Run a command and record an event if it fails",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		level, _ := cmd.Flags().GetString("level")
		tags, _ := cmd.Flags().GetStringArray("tag")

		child := exec.CommandContext(ctx, args[0], args[1:]...)
		child.Stdin = os.Stdin
		child.Stdout = cmd.OutOrStdout()
		var stderr strings.Builder
		child.Stderr = io.MultiWriter(cmd.ErrOrStderr(), &stderr)

		runErr := child.Run()
		if runErr == nil {
			return nil
		}

		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return errs.Wrap(runErr, "start wrapped command")
		}
		code := exitErr.ExitCode()

		id, err := app.Vault.RecordCommandFailure(ctx, strings.Join(args, " "), code, stderr.String(), level, tags)
		if err != nil {
			return errs.Wrap(err, "record command failure")
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Recorded failure event %s (exit %d)\n", id, code)
		return &exitCodeError{code: code}
	}),
}

func init() {
	rootCmd.AddCommand(wrapCmd)

	wrapCmd.Flags().StringP("level", "l", "error", "Event level for the failure")
	wrapCmd.Flags().StringArrayP("tag", "t", nil, "Tag to attach (repeatable)")
}
