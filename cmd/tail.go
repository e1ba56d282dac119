package cmd

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"crashvault/internal/bootstrap"
	"crashvault/internal/bootstrap/logging"
	domainvault "crashvault/internal/domain/vault"
	"crashvault/internal/errs"
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow new events as they are written to the vault",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, app *bootstrap.App) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		rawLevel, _ := cmd.Flags().GetString("level")
		tags, _ := cmd.Flags().GetStringArray("tag")
		text, _ := cmd.Flags().GetString("text")
		interval, _ := cmd.Flags().GetDuration("interval")

		var level domainvault.Level
		if rawLevel != "" {
			var err error
			if level, err = domainvault.ParseLevel(rawLevel); err != nil {
				return err
			}
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return errs.Wrap(err, "create watcher")
		}
		defer watcher.Close()

		eventsDir := app.Paths.EventsDir()
		watchTree := func() error {
			return filepath.WalkDir(eventsDir, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return nil
				}
				if d.IsDir() {
					// Re-adding an already watched directory is a no-op.
					return watcher.Add(path)
				}
				return nil
			})
		}
		if err := watchTree(); err != nil {
			return errs.Wrap(err, "watch events tree")
		}

		logging.Info(ctx, "tailing vault events", slog.String("dir", eventsDir))
		fmt.Fprintf(cmd.OutOrStdout(), "Tailing %s (Ctrl-C to stop)\n", eventsDir)

		// Day-shard directories appear while we watch; the ticker re-walks
		// the tree to pick up any created between watcher events.
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := watchTree(); err != nil {
					logging.Warn(ctx, "rescan events tree failed", slog.Any("err", errs.Loggable(err)))
				}
			case fsEvent, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !fsEvent.Has(fsnotify.Create) && !fsEvent.Has(fsnotify.Rename) {
					continue
				}
				if info, err := os.Stat(fsEvent.Name); err == nil && info.IsDir() {
					_ = watcher.Add(fsEvent.Name)
					continue
				}
				if !strings.HasSuffix(fsEvent.Name, ".json") {
					continue
				}
				ev, ok := readTailedEvent(fsEvent.Name)
				if !ok {
					continue
				}
				if !tailMatches(ev, level, tags, text) {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s] #%d %s\n", ev.Timestamp, ev.Level, ev.IssueID, ev.Message)
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logging.Warn(ctx, "watcher error", slog.Any("err", errs.Loggable(watchErr)))
			}
		}
	}),
}

func readTailedEvent(path string) (domainvault.Event, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domainvault.Event{}, false
	}
	var ev domainvault.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return domainvault.Event{}, false
	}
	return ev, true
}

func tailMatches(ev domainvault.Event, level domainvault.Level, tags []string, text string) bool {
	if level != "" && ev.Level != level {
		return false
	}
	for _, want := range tags {
		found := false
		for _, have := range ev.Tags {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if text != "" && !strings.Contains(strings.ToLower(ev.Message), strings.ToLower(text)) {
		return false
	}
	return true
}

func init() {
	rootCmd.AddCommand(tailCmd)

	tailCmd.Flags().String("level", "", "Only events at this level")
	tailCmd.Flags().StringArray("tag", nil, "Require tag (repeatable)")
	tailCmd.Flags().String("text", "", "Require message substring")
	tailCmd.Flags().Duration("interval", 2*time.Second, "Directory rescan interval")
}
