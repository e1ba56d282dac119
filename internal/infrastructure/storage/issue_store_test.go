package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"crashvault/internal/domain/vault"
)

func TestIssueStoreMissingFileMeansEmpty(t *testing.T) {
	store := NewIssueStore(NewPaths(t.TempDir()))

	issues, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("LoadAll() = %v, want empty", issues)
	}
}

func TestIssueStoreRoundTrip(t *testing.T) {
	store := NewIssueStore(NewPaths(t.TempDir()))
	ctx := context.Background()

	in := []vault.Issue{
		vault.NewIssue(1, "disk full", time.Now()),
		vault.NewIssue(2, "database connection lost", time.Now()),
	}
	if err := store.SaveAll(ctx, in); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}

	out, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(out) != 2 || out[0].Fingerprint != in[0].Fingerprint || out[1].ID != 2 {
		t.Fatalf("LoadAll() = %v", out)
	}
}

func TestIssueStoreCorruptFile(t *testing.T) {
	paths := NewPaths(t.TempDir())
	store := NewIssueStore(paths)

	if err := os.WriteFile(paths.IssuesFile(), []byte(`{"not": "a list"`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := store.LoadAll(context.Background())
	if !errors.Is(err, vault.ErrCorruptVault) {
		t.Fatalf("LoadAll() error = %v, want ErrCorruptVault", err)
	}
}

func TestIssueStoreSaveIsAtomicSwap(t *testing.T) {
	paths := NewPaths(t.TempDir())
	store := NewIssueStore(paths)
	ctx := context.Background()

	if err := store.SaveAll(ctx, []vault.Issue{vault.NewIssue(1, "boom", time.Now())}); err != nil {
		t.Fatalf("SaveAll() error = %v", err)
	}
	if _, err := os.Stat(paths.IssuesFile() + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file survived the rename: %v", err)
	}

	// A pre-existing stale temp file never shadows the real document.
	if err := os.WriteFile(paths.IssuesFile()+".tmp", []byte("junk"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	issues, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("LoadAll() = %v, want single issue", issues)
	}
}
