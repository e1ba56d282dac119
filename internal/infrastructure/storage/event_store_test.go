package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"crashvault/internal/domain/vault"
)

func newTestEventStore(t *testing.T) (*EventStore, Paths) {
	t.Helper()
	paths := NewPaths(t.TempDir())
	if err := paths.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() error = %v", err)
	}
	return NewEventStore(paths), paths
}

func testEvent(id string, issueID int, ts time.Time) vault.Event {
	return vault.Event{
		EventID:   id,
		IssueID:   issueID,
		Message:   "boom",
		Timestamp: vault.FormatTime(ts),
		Level:     vault.LevelError,
	}
}

func TestEventStoreWriteShardsByDay(t *testing.T) {
	store, paths := newTestEventStore(t)
	ctx := context.Background()

	ts := time.Date(2026, 2, 3, 10, 30, 0, 0, time.UTC)
	if err := store.Write(ctx, testEvent("ev-1", 1, ts)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := filepath.Join(paths.EventsDir(), "2026", "02", "03", "ev-1.json")
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected event file at %s: %v", want, err)
	}
}

func TestEventStoreWriteLeavesNoTempFile(t *testing.T) {
	store, paths := newTestEventStore(t)
	ctx := context.Background()

	ts := time.Date(2026, 2, 3, 10, 30, 0, 0, time.UTC)
	if err := store.Write(ctx, testEvent("ev-1", 1, ts)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	day := filepath.Join(paths.EventsDir(), "2026", "02", "03")
	entries, err := os.ReadDir(day)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("temp file %s left behind after write", e.Name())
		}
	}
}

func TestEventStoreReadAllSkipsCorruptFiles(t *testing.T) {
	store, paths := newTestEventStore(t)
	ctx := context.Background()
	ts := time.Now()

	if err := store.Write(ctx, testEvent("ev-1", 1, ts)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// A crashed writer leaves garbage; scans must not fail on it.
	day := filepath.Dir(mustEventPath(t, paths, ts, "ev-1"))
	if err := os.WriteFile(filepath.Join(day, "garbage.json"), []byte("{truncat"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	events, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(events) != 1 || events[0].EventID != "ev-1" {
		t.Fatalf("ReadAll() = %v, want just ev-1", events)
	}
}

func TestEventStoreLeftoverTempNeverRead(t *testing.T) {
	store, paths := newTestEventStore(t)
	ctx := context.Background()
	ts := time.Now()

	if err := store.Write(ctx, testEvent("ev-1", 1, ts)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	day := filepath.Dir(mustEventPath(t, paths, ts, "ev-1"))
	if err := os.WriteFile(filepath.Join(day, "ev-2.json.tmp"), []byte("{"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	events, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("ReadAll() = %d events, want 1; .tmp files must be invisible", len(events))
	}
}

func TestEventStoreVacuum(t *testing.T) {
	store, paths := newTestEventStore(t)
	ctx := context.Background()
	ts := time.Now()

	for _, ev := range []vault.Event{
		testEvent("owned", 1, ts),
		testEvent("orphan", 9, ts),
		testEvent("note", vault.IssueIDNone, ts),
		testEvent("rept", vault.IssueIDReport, ts),
	} {
		if err := store.Write(ctx, ev); err != nil {
			t.Fatalf("Write(%s) error = %v", ev.EventID, err)
		}
	}
	day := filepath.Dir(mustEventPath(t, paths, ts, "owned"))
	if err := os.WriteFile(filepath.Join(day, "broken.json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	removed, err := store.Vacuum(ctx, map[int]bool{1: true})
	if err != nil {
		t.Fatalf("Vacuum() error = %v", err)
	}
	if removed != 2 {
		t.Fatalf("Vacuum() removed = %d, want 2 (orphan + broken)", removed)
	}

	events, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	ids := map[string]bool{}
	for _, ev := range events {
		ids[ev.EventID] = true
	}
	// Freestanding notes and reports survive garbage collection.
	for _, want := range []string{"owned", "note", "rept"} {
		if !ids[want] {
			t.Fatalf("Vacuum() deleted %s; survivors = %v", want, ids)
		}
	}
}

func TestEventStorePruneOlderThan(t *testing.T) {
	store, paths := newTestEventStore(t)
	ctx := context.Background()
	ts := time.Now()

	if err := store.Write(ctx, testEvent("old", 1, ts)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := store.Write(ctx, testEvent("new", 1, ts)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	oldPath := mustEventPath(t, paths, ts, "old")
	aged := time.Now().Add(-91 * 24 * time.Hour)
	if err := os.Chtimes(oldPath, aged, aged); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	removed, err := store.PruneOlderThan(ctx, time.Now().Add(-90*24*time.Hour))
	if err != nil {
		t.Fatalf("PruneOlderThan() error = %v", err)
	}
	if removed != 1 {
		t.Fatalf("PruneOlderThan() removed = %d, want 1", removed)
	}

	events, err := store.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(events) != 1 || events[0].EventID != "new" {
		t.Fatalf("survivors = %v, want just new", events)
	}
}

func TestEventStoreRemoveByIssue(t *testing.T) {
	store, _ := newTestEventStore(t)
	ctx := context.Background()
	ts := time.Now()

	for i, id := range []string{"a", "b", "c", "other"} {
		issueID := 1
		if i == 3 {
			issueID = 2
		}
		if err := store.Write(ctx, testEvent(id, issueID, ts)); err != nil {
			t.Fatalf("Write(%s) error = %v", id, err)
		}
	}

	removed, err := store.Remove(ctx, func(ev vault.Event) bool { return ev.IssueID == 1 })
	if err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if removed != 3 {
		t.Fatalf("Remove() = %d, want 3", removed)
	}
}

func mustEventPath(t *testing.T, paths Paths, ts time.Time, id string) string {
	t.Helper()
	u := ts.UTC()
	return filepath.Join(paths.EventsDir(), u.Format("2006"), u.Format("01"), u.Format("02"), id+".json")
}
