package storage

import (
	"os"
	"path/filepath"

	"crashvault/internal/errs"
)

// Paths locates every file the vault owns under one root directory. The root
// is injected from configuration at process start; nothing in the storage
// layer reads the environment.
type Paths struct {
	Root string
}

func NewPaths(root string) Paths {
	return Paths{Root: root}
}

func (p Paths) IssuesFile() string   { return filepath.Join(p.Root, "issues.json") }
func (p Paths) EventsDir() string    { return filepath.Join(p.Root, "events") }
func (p Paths) WebhooksFile() string { return filepath.Join(p.Root, "webhooks.json") }
func (p Paths) ConfigFile() string   { return filepath.Join(p.Root, "config.json") }
func (p Paths) LogsDir() string      { return filepath.Join(p.Root, "logs") }
func (p Paths) AttachDir() string    { return filepath.Join(p.Root, "attachments") }

// EnsureDirs creates the vault tree and seeds the issues and config documents
// on first use.
func (p Paths) EnsureDirs() error {
	for _, dir := range []string{p.Root, p.EventsDir(), p.LogsDir(), p.AttachDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Wrapf(err, "create vault directory %q", dir)
		}
	}

	if _, err := os.Stat(p.IssuesFile()); os.IsNotExist(err) {
		if err := os.WriteFile(p.IssuesFile(), []byte("[]"), 0o644); err != nil {
			return errs.Wrap(err, "seed issues file")
		}
	}
	if _, err := os.Stat(p.ConfigFile()); os.IsNotExist(err) {
		if err := writeJSONAtomic(p.ConfigFile(), map[string]any{"version": 1}); err != nil {
			return errs.Wrap(err, "seed config file")
		}
	}
	return nil
}
