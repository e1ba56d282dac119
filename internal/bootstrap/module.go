package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"

	"crashvault/internal/bootstrap/config"
	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
	"crashvault/internal/infrastructure/storage"
	"crashvault/internal/ports"
	vaultuc "crashvault/internal/usecase/vault"
	"crashvault/internal/webhook"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(providePaths),
	fx.Provide(provideLogger),
	fx.Provide(
		fx.Annotate(
			storage.NewIssueStore,
			fx.As(new(ports.IssueStore)),
		),
	),
	fx.Provide(
		fx.Annotate(
			storage.NewEventStore,
			fx.As(new(ports.EventStore)),
		),
	),
	fx.Provide(
		fx.Annotate(
			storage.NewWebhookStore,
			fx.As(new(ports.WebhookStore)),
		),
	),
	fx.Provide(
		fx.Annotate(
			storage.NewConfigStore,
			fx.As(new(ports.ConfigStore)),
		),
	),
	fx.Provide(webhook.NewRegistry),
	fx.Provide(provideDispatcher),
	fx.Provide(func(d *webhook.Dispatcher) ports.Notifier { return d }),
	fx.Provide(vaultuc.NewService),
	fx.Provide(provideApp),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
	VaultRoot  string `name:"vaultRoot"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	cfg, err := config.Load(ctx, p.ConfigFile)
	if err != nil {
		return config.Config{}, err
	}
	if p.VaultRoot != "" {
		cfg.Vault.Root = p.VaultRoot
	}
	return cfg, nil
}

func providePaths(cfg config.Config) (storage.Paths, error) {
	paths := storage.NewPaths(cfg.Vault.Root)
	if err := paths.EnsureDirs(); err != nil {
		return storage.Paths{}, errs.Wrap(err, "ensure vault directories")
	}
	return paths, nil
}

func provideLogger(cfg config.Config, paths storage.Paths) *slog.Logger {
	return logging.NewVaultLogger(paths.LogsDir(), cfg.Log.SlogLevel())
}

func provideDispatcher(store ports.WebhookStore, registry *webhook.Registry, cfg config.Config) *webhook.Dispatcher {
	timeout := time.Duration(cfg.Webhook.TimeoutSeconds) * time.Second
	return webhook.NewDispatcher(store, registry, timeout)
}

func provideApp(cfg config.Config, paths storage.Paths, logger *slog.Logger, svc *vaultuc.Service, hooks *webhook.Dispatcher) *App {
	return &App{
		Config: cfg,
		Paths:  paths,
		Logger: logger,
		Vault:  svc,
		Hooks:  hooks,
	}
}
