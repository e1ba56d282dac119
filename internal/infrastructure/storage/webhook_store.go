package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"crashvault/internal/domain/vault"
	"crashvault/internal/errs"
)

// WebhookStore persists the outbound integration registry as one JSON file,
// independent of issues and events.
type WebhookStore struct {
	paths Paths
}

func NewWebhookStore(paths Paths) *WebhookStore {
	return &WebhookStore{paths: paths}
}

func (s *WebhookStore) LoadAll(ctx context.Context) ([]vault.Webhook, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	data, err := os.ReadFile(s.paths.WebhooksFile())
	if errors.Is(err, os.ErrNotExist) {
		return []vault.Webhook{}, nil
	}
	if err != nil {
		return nil, errs.Wrap(err, "read webhooks file")
	}

	var hooks []vault.Webhook
	if err := json.Unmarshal(data, &hooks); err != nil {
		return nil, errs.Wrap(err, "parse webhooks file")
	}
	if hooks == nil {
		hooks = []vault.Webhook{}
	}
	return hooks, nil
}

func (s *WebhookStore) SaveAll(ctx context.Context, hooks []vault.Webhook) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if hooks == nil {
		hooks = []vault.Webhook{}
	}
	return writeJSONAtomic(s.paths.WebhooksFile(), hooks)
}
