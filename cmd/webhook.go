package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
	"crashvault/internal/webhook"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Manage outbound webhook integrations",
}

var webhookAddCmd = &cobra.Command{
	Use:   "add TYPE",
	Short: "Register a webhook (slack|discord|teams|http|github)",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		url, _ := cmd.Flags().GetString("url")
		name, _ := cmd.Flags().GetString("name")
		secret, _ := cmd.Flags().GetString("secret")
		events, _ := cmd.Flags().GetStringSlice("events")

		hook, err := app.Hooks.Add(ctx, webhook.AddInput{
			Type:   args[0],
			URL:    url,
			Name:   name,
			Secret: secret,
			Events: events,
		})
		if err != nil {
			return errs.Wrap(err, "add webhook")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s webhook %s\n", hook.Type, hook.ID)
		return nil
	}),
}

var webhookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered webhooks",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		hooks, err := app.Hooks.List(ctx)
		if err != nil {
			return errs.Wrap(err, "list webhooks")
		}
		if len(hooks) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No webhooks.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tENABLED\tEVENTS\tNAME\tURL")
		for _, h := range hooks {
			events := "all"
			if len(h.Events) > 0 {
				events = joinLevels(h.Events)
			}
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\t%s\n", h.ID, h.Type, h.Enabled, events, h.Name, h.URL)
		}
		return w.Flush()
	}),
}

var webhookShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one webhook's configuration",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		h, err := app.Hooks.Get(ctx, args[0])
		if err != nil {
			return errs.Wrap(err, "show webhook")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Webhook %s\n", h.ID)
		fmt.Fprintf(out, "  type:    %s\n", h.Type)
		fmt.Fprintf(out, "  url:     %s\n", h.URL)
		if h.Name != "" {
			fmt.Fprintf(out, "  name:    %s\n", h.Name)
		}
		if h.Secret != "" {
			fmt.Fprintln(out, "  secret:  (set)")
		}
		events := "all"
		if len(h.Events) > 0 {
			events = joinLevels(h.Events)
		}
		fmt.Fprintf(out, "  events:  %s\n", events)
		fmt.Fprintf(out, "  enabled: %t\n", h.Enabled)
		return nil
	}),
}

var webhookRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Delete a webhook",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		removed, err := app.Hooks.Remove(ctx, args[0])
		if err != nil {
			return errs.Wrap(err, "remove webhook")
		}
		if !removed {
			return fmt.Errorf("webhook %q not found", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed webhook %s\n", args[0])
		return nil
	}),
}

var webhookEnableCmd = &cobra.Command{
	Use:   "enable ID",
	Short: "Enable a webhook",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(toggleWebhook(true)),
}

var webhookDisableCmd = &cobra.Command{
	Use:   "disable ID",
	Short: "Disable a webhook without deleting it",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(toggleWebhook(false)),
}

func toggleWebhook(enabled bool) func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
	return func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		found, err := app.Hooks.Toggle(ctx, args[0], enabled)
		if err != nil {
			return errs.Wrap(err, "toggle webhook")
		}
		if !found {
			return fmt.Errorf("webhook %q not found", args[0])
		}
		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Webhook %s %s\n", args[0], state)
		return nil
	}
}

var webhookTestCmd = &cobra.Command{
	Use:   "test ID",
	Short: "Send a sample event through a webhook",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		ok, err := app.Hooks.Test(ctx, args[0])
		if err != nil {
			return errs.Wrap(err, "test webhook")
		}
		if !ok {
			return fmt.Errorf("webhook %s test delivery failed", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Webhook %s test delivery succeeded\n", args[0])
		return nil
	}),
}

func joinLevels[T ~string](levels []T) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = string(l)
	}
	return strings.Join(parts, ",")
}

func init() {
	rootCmd.AddCommand(webhookCmd)
	webhookCmd.AddCommand(webhookAddCmd)
	webhookCmd.AddCommand(webhookListCmd)
	webhookCmd.AddCommand(webhookShowCmd)
	webhookCmd.AddCommand(webhookRemoveCmd)
	webhookCmd.AddCommand(webhookEnableCmd)
	webhookCmd.AddCommand(webhookDisableCmd)
	webhookCmd.AddCommand(webhookTestCmd)

	webhookAddCmd.Flags().String("url", "", "Delivery URL (or repo reference for github)")
	webhookAddCmd.Flags().String("name", "", "Display name")
	webhookAddCmd.Flags().String("secret", "", "HMAC secret, or API token for github")
	webhookAddCmd.Flags().StringSlice("events", nil, "Level filter, comma separated (empty means all levels)")
}
