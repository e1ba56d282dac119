package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"crashvault/internal/domain/vault"
	"crashvault/internal/errs"
)

// EventStore persists one JSON file per event under events/YYYY/MM/DD, sharded
// by the event's UTC timestamp. Files are write-once: created atomically,
// never rewritten, only deleted by purge, prune, gc, or a full wipe.
type EventStore struct {
	paths Paths
}

func NewEventStore(paths Paths) *EventStore {
	return &EventStore{paths: paths}
}

// pathFor computes events/<yyyy>/<mm>/<dd>/<event_id>.json from the event's
// timestamp, zero-padded month and day.
func (s *EventStore) pathFor(ev vault.Event) (string, error) {
	ts := ev.Time()
	if ts.IsZero() {
		return "", fmt.Errorf("unparseable event timestamp %q", ev.Timestamp)
	}
	ts = ts.UTC()
	dir := filepath.Join(s.paths.EventsDir(), ts.Format("2006"), ts.Format("01"), ts.Format("02"))
	return filepath.Join(dir, ev.EventID+".json"), nil
}

func (s *EventStore) Write(ctx context.Context, ev vault.Event) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	path, err := s.pathFor(ev)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(err, "create event shard directory")
	}
	return writeJSONAtomic(path, ev)
}

// walk visits every .json event file under the tree. Unparseable files are
// reported with a nil event so callers choose between skipping and deleting;
// partial writes from crashed processes must never fail a scan.
func (s *EventStore) walk(visit func(path string, ev *vault.Event, info fs.FileInfo) error) error {
	root := s.paths.EventsDir()
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var ev vault.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return visit(path, nil, info)
		}
		return visit(path, &ev, info)
	})
}

func (s *EventStore) ReadAll(ctx context.Context) ([]vault.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	events := make([]vault.Event, 0, 64)
	err := s.walk(func(_ string, ev *vault.Event, _ fs.FileInfo) error {
		if ev != nil {
			events = append(events, *ev)
		}
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(err, "scan event tree")
	}
	return events, nil
}

func (s *EventStore) Remove(ctx context.Context, match func(vault.Event) bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, errs.Wrap(err, "check context")
	}

	removed := 0
	err := s.walk(func(path string, ev *vault.Event, _ fs.FileInfo) error {
		if ev == nil || !match(*ev) {
			return nil
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, errs.Wrap(err, "scan event tree")
	}
	return removed, nil
}

func (s *EventStore) Vacuum(ctx context.Context, liveIssueIDs map[int]bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, errs.Wrap(err, "check context")
	}

	removed := 0
	err := s.walk(func(path string, ev *vault.Event, _ fs.FileInfo) error {
		orphaned := ev == nil || (!ev.Freestanding() && !liveIssueIDs[ev.IssueID])
		if !orphaned {
			return nil
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, errs.Wrap(err, "scan event tree")
	}
	return removed, nil
}

func (s *EventStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, errs.Wrap(err, "check context")
	}

	removed := 0
	err := s.walk(func(path string, _ *vault.Event, info fs.FileInfo) error {
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, errs.Wrap(err, "scan event tree")
	}
	return removed, nil
}

func (s *EventStore) RemoveAll(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, errs.Wrap(err, "check context")
	}

	removed := 0
	err := s.walk(func(path string, _ *vault.Event, _ fs.FileInfo) error {
		if err := os.Remove(path); err == nil {
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, errs.Wrap(err, "scan event tree")
	}
	return removed, nil
}
