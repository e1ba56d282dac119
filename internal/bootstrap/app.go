package bootstrap

import (
	"log/slog"

	"crashvault/internal/bootstrap/config"
	"crashvault/internal/infrastructure/storage"
	vaultuc "crashvault/internal/usecase/vault"
	"crashvault/internal/webhook"
)

// App bundles the wired application graph for command handlers.
type App struct {
	Config config.Config
	Paths  storage.Paths
	Logger *slog.Logger

	Vault *vaultuc.Service
	Hooks *webhook.Dispatcher
}
