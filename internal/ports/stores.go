package ports

import (
	"context"
	"time"

	"crashvault/internal/domain/vault"
)

// IssueStore holds the full issue list as one document. There is no partial
// update: every mutation reads the list, changes it in memory, and writes the
// whole list back. Concurrent writers clobber each other (last write wins);
// acceptable for a single-operator local vault.
type IssueStore interface {
	LoadAll(ctx context.Context) ([]vault.Issue, error)
	SaveAll(ctx context.Context, issues []vault.Issue) error
}

// EventStore persists one file per event under a day-sharded tree. Writes are
// atomic (temp then rename); reads tolerate unparseable files by skipping
// them. Every query is an O(total events) scan, a stated scalability ceiling
// of the local single-user design.
type EventStore interface {
	Write(ctx context.Context, ev vault.Event) error
	ReadAll(ctx context.Context) ([]vault.Event, error)

	// Remove deletes events matching the predicate and returns the count.
	// Unreadable files are left alone.
	Remove(ctx context.Context, match func(vault.Event) bool) (int, error)

	// Vacuum deletes unreadable event files and events whose issue id is
	// neither a live issue nor a freestanding sentinel. Returns the count.
	Vacuum(ctx context.Context, liveIssueIDs map[int]bool) (int, error)

	// PruneOlderThan deletes event files whose modification time is before
	// the cutoff and returns the count.
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	// RemoveAll deletes every event file and returns the count.
	RemoveAll(ctx context.Context) (int, error)
}

// WebhookStore persists the outbound integration registry, independent of
// issues and events.
type WebhookStore interface {
	LoadAll(ctx context.Context) ([]vault.Webhook, error)
	SaveAll(ctx context.Context, hooks []vault.Webhook) error
}

// ConfigStore is the vault's free-form key-value document (config.json).
type ConfigStore interface {
	Load(ctx context.Context) (map[string]any, error)
	Save(ctx context.Context, cfg map[string]any) error
}
