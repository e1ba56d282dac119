package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"crashvault/internal/errs"
)

// ConfigStore is the vault's free-form key-value JSON document. Unreadable or
// missing content falls back to the seed document rather than failing.
type ConfigStore struct {
	paths Paths
}

func NewConfigStore(paths Paths) *ConfigStore {
	return &ConfigStore{paths: paths}
}

func (s *ConfigStore) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	seed := map[string]any{"version": float64(1)}

	data, err := os.ReadFile(s.paths.ConfigFile())
	if errors.Is(err, os.ErrNotExist) {
		return seed, nil
	}
	if err != nil {
		return nil, errs.Wrap(err, "read config file")
	}

	var cfg map[string]any
	if err := json.Unmarshal(data, &cfg); err != nil || cfg == nil {
		return seed, nil
	}
	return cfg, nil
}

func (s *ConfigStore) Save(ctx context.Context, cfg map[string]any) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if cfg == nil {
		cfg = map[string]any{"version": 1}
	}
	return writeJSONAtomic(s.paths.ConfigFile(), cfg)
}
