package vault

import (
	"context"
	"encoding/json"
	"sort"

	"crashvault/internal/errs"
)

// ConfigGet returns the value stored under key in the vault's config.json,
// with ok reporting whether the key exists.
func (s *Service) ConfigGet(ctx context.Context, key string) (any, bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	cfg, err := s.config.Load(ctx)
	if err != nil {
		return nil, false, errs.Wrap(err, "load config")
	}
	v, ok := cfg[key]
	return v, ok, nil
}

// ConfigAll returns every config key in sorted order with its value.
func (s *Service) ConfigAll(ctx context.Context) ([]string, map[string]any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	cfg, err := s.config.Load(ctx)
	if err != nil {
		return nil, nil, errs.Wrap(err, "load config")
	}
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, cfg, nil
}

// ConfigSet stores raw under key. The raw string is decoded as JSON when it
// parses (numbers, booleans, objects keep their type) and stored verbatim
// otherwise.
func (s *Service) ConfigSet(ctx context.Context, key, raw string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg, err := s.config.Load(ctx)
	if err != nil {
		return errs.Wrap(err, "load config")
	}
	cfg[key] = parseConfigValue(raw)
	return errs.Wrap(s.config.Save(ctx, cfg), "save config")
}

func parseConfigValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}
