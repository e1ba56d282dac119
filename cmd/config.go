package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write the vault's config.json",
}

var configGetCmd = &cobra.Command{
	Use:   "get [KEY]",
	Short: "Print one config value, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if len(args) == 0 {
			keys, cfg, err := app.Vault.ConfigAll(ctx)
			if err != nil {
				return errs.Wrap(err, "read config")
			}
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", k, renderConfigValue(cfg[k]))
			}
			return nil
		}

		v, ok, err := app.Vault.ConfigGet(ctx, args[0])
		if err != nil {
			return errs.Wrap(err, "read config")
		}
		if !ok {
			return fmt.Errorf("config key %q not set", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderConfigValue(v))
		return nil
	}),
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a config value (VALUE is parsed as JSON when it is valid JSON)",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if err := app.Vault.ConfigSet(ctx, args[0], args[1]); err != nil {
			return errs.Wrap(err, "write config")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
		return nil
	}),
}

func renderConfigValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
