package webhook

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/domain/vault"
	"crashvault/internal/errs"
	"crashvault/internal/ports"
)

// Dispatcher loads the persisted webhook registry on every dispatch, filters
// configs against the event, and invokes each matching provider sequentially.
// One provider failing neither aborts delivery to the rest nor reaches the
// ingestion caller: all outcomes end as log lines.
type Dispatcher struct {
	store    ports.WebhookStore
	registry *Registry
	client   *http.Client
}

func NewDispatcher(store ports.WebhookStore, registry *Registry, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		store:    store,
		registry: registry,
		client:   &http.Client{Timeout: timeout},
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, ev vault.Event) {
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "webhook.dispatcher"),
		slog.String("event_id", ev.EventID),
	)

	hooks, err := d.store.LoadAll(ctx)
	if err != nil {
		logging.Warn(logCtx, "webhook registry unreadable, skipping dispatch", slog.Any("err", errs.Loggable(err)))
		return
	}

	for _, cfg := range hooks {
		provider, err := d.registry.Build(cfg, d.client)
		if err != nil {
			logging.Warn(logCtx, "unknown webhook type", slog.String("webhook_id", cfg.ID), slog.String("type", cfg.Type))
			continue
		}
		if !provider.ShouldSend(ev) {
			continue
		}
		if err := provider.Send(ctx, ev); err != nil {
			logging.Error(logCtx, "webhook delivery failed",
				slog.String("webhook_id", cfg.ID),
				slog.String("type", cfg.Type),
				slog.Any("err", errs.Loggable(err)),
			)
			continue
		}
		logging.Info(logCtx, "webhook delivered", slog.String("webhook_id", cfg.ID), slog.String("type", cfg.Type))
	}
}

type AddInput struct {
	Type   string
	URL    string
	Name   string
	Secret string
	Events []string
}

// Add validates the type and level filter against their closed sets and
// persists a new enabled webhook.
func (d *Dispatcher) Add(ctx context.Context, input AddInput) (vault.Webhook, error) {
	providerType, err := vault.ParseProviderType(input.Type)
	if err != nil {
		return vault.Webhook{}, err
	}
	events, err := vault.ParseLevels(input.Events)
	if err != nil {
		return vault.Webhook{}, err
	}
	if strings.TrimSpace(input.URL) == "" {
		return vault.Webhook{}, errors.New("url is required")
	}

	hooks, err := d.store.LoadAll(ctx)
	if err != nil {
		return vault.Webhook{}, errs.Wrap(err, "load webhooks")
	}

	hook := vault.Webhook{
		ID:      uuid.NewString()[:8],
		Type:    providerType,
		URL:     strings.TrimSpace(input.URL),
		Name:    strings.TrimSpace(input.Name),
		Secret:  input.Secret,
		Events:  events,
		Enabled: true,
	}
	hooks = append(hooks, hook)

	if err := d.store.SaveAll(ctx, hooks); err != nil {
		return vault.Webhook{}, errs.Wrap(err, "save webhooks")
	}
	return hook, nil
}

func (d *Dispatcher) List(ctx context.Context) ([]vault.Webhook, error) {
	return d.store.LoadAll(ctx)
}

func (d *Dispatcher) Get(ctx context.Context, id string) (vault.Webhook, error) {
	hooks, err := d.store.LoadAll(ctx)
	if err != nil {
		return vault.Webhook{}, errs.Wrap(err, "load webhooks")
	}
	for _, h := range hooks {
		if h.ID == id {
			return h, nil
		}
	}
	return vault.Webhook{}, vault.ErrWebhookNotFound
}

func (d *Dispatcher) Remove(ctx context.Context, id string) (bool, error) {
	hooks, err := d.store.LoadAll(ctx)
	if err != nil {
		return false, errs.Wrap(err, "load webhooks")
	}

	kept := hooks[:0]
	removed := false
	for _, h := range hooks {
		if h.ID == id {
			removed = true
			continue
		}
		kept = append(kept, h)
	}
	if !removed {
		return false, nil
	}
	if err := d.store.SaveAll(ctx, kept); err != nil {
		return false, errs.Wrap(err, "save webhooks")
	}
	return true, nil
}

// Toggle flips the enabled flag without deleting the config.
func (d *Dispatcher) Toggle(ctx context.Context, id string, enabled bool) (bool, error) {
	hooks, err := d.store.LoadAll(ctx)
	if err != nil {
		return false, errs.Wrap(err, "load webhooks")
	}

	for idx := range hooks {
		if hooks[idx].ID != id {
			continue
		}
		hooks[idx].Enabled = enabled
		if err := d.store.SaveAll(ctx, hooks); err != nil {
			return false, errs.Wrap(err, "save webhooks")
		}
		return true, nil
	}
	return false, nil
}

// Test synthesizes a representative sample event and calls the provider's send
// directly, bypassing the level filter, surfacing the boolean outcome.
func (d *Dispatcher) Test(ctx context.Context, id string) (bool, error) {
	cfg, err := d.Get(ctx, id)
	if err != nil {
		return false, err
	}
	provider, err := d.registry.Build(cfg, d.client)
	if err != nil {
		return false, err
	}

	host, _ := os.Hostname()
	sample := vault.Event{
		EventID:   uuid.NewString(),
		IssueID:   0,
		Message:   "Test webhook from CrashVault",
		Timestamp: vault.FormatTime(time.Now()),
		Level:     vault.LevelError,
		Tags:      []string{"test"},
		Context:   vault.Context{"source": "webhook test"},
		Host:      host,
		PID:       os.Getpid(),
	}

	if err := provider.Send(ctx, sample); err != nil {
		logging.Warn(ctx, "webhook test failed",
			slog.String("webhook_id", cfg.ID),
			slog.Any("err", errs.Loggable(err)),
		)
		return false, nil
	}
	return true, nil
}
