package webhook

import (
	"fmt"
	"net/http"

	"crashvault/internal/domain/vault"
)

// Registry maps provider type names to constructors. Providers are listed
// explicitly here; nothing registers itself as an import side effect, so
// construction order can never matter.
type Registry struct {
	constructors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{constructors: map[string]Constructor{
		vault.ProviderSlack:   newSlackProvider,
		vault.ProviderDiscord: newDiscordProvider,
		vault.ProviderTeams:   newTeamsProvider,
		vault.ProviderHTTP:    newHTTPProvider,
		vault.ProviderGitHub:  newGitHubProvider,
	}}
}

// Register adds or replaces a constructor; used by tests to inject fakes.
func (r *Registry) Register(providerType string, build Constructor) {
	r.constructors[providerType] = build
}

// Build instantiates the provider for a persisted config.
func (r *Registry) Build(cfg vault.Webhook, client *http.Client) (Provider, error) {
	build, ok := r.constructors[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", vault.ErrInvalidProviderType, cfg.Type)
	}
	return build(cfg, client), nil
}
