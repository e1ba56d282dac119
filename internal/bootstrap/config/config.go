package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"crashvault/internal/bootstrap/logging"
	"crashvault/internal/errs"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Vault   VaultConfig   `mapstructure:"vault"`
	Log     LogConfig     `mapstructure:"log"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
}

type VaultConfig struct {
	Root string `mapstructure:"root"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type WebhookConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CRASHVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errs.Wrap(err, "read config")
		}
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if cfg.Vault.Root == "" {
		return Config{}, errors.New("vault.root is required")
	}
	if cfg.Webhook.TimeoutSeconds <= 0 {
		cfg.Webhook.TimeoutSeconds = 10
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "crashvault")
	v.SetDefault("vault.root", defaultVaultRoot())
	v.SetDefault("log.level", "info")
	v.SetDefault("webhook.timeout_seconds", 10)
}

func defaultVaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".crashvault"
	}
	return filepath.Join(home, ".crashvault")
}
