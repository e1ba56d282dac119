package webhook

import (
	"context"
	"net/http"

	"crashvault/internal/domain/vault"
)

// Provider is the shared capability contract of one outbound integration.
// Send returns an error on any delivery problem; the dispatcher converts it to
// a logged failure and never lets it escape. ShouldSend applies the config's
// level filter and may be narrowed per provider.
type Provider interface {
	Send(ctx context.Context, ev vault.Event) error
	ShouldSend(ev vault.Event) bool
}

// Constructor builds a provider for one persisted webhook config.
type Constructor func(cfg vault.Webhook, client *http.Client) Provider

// base carries the config and the generic filter rule:
// enabled AND (allow-list empty OR level in allow-list).
type base struct {
	cfg vault.Webhook
}

func (b base) ShouldSend(ev vault.Event) bool {
	return b.cfg.Enabled && b.cfg.Accepts(ev.Level)
}
