package vault

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	domainvault "crashvault/internal/domain/vault"
	"crashvault/internal/errs"
)

const exportVersion = 1

// ExportPayload is the portable vault dump: the issue list plus every event,
// wrapped with a format version and export timestamp.
type ExportPayload struct {
	Version    int                 `json:"version"`
	ExportedAt string              `json:"exported_at"`
	Issues     []domainvault.Issue `json:"issues"`
	Events     []domainvault.Event `json:"events"`
}

// Export serializes the whole vault as indented JSON to w.
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	payload, err := s.exportPayload(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return errs.Wrap(err, "encode export")
	}
	return nil
}

// ExportCSV writes a two-section CSV dump: an issue table followed by an
// event table, each introduced by a comment line.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	payload, err := s.exportPayload(ctx)
	if err != nil {
		return err
	}

	counts := make(map[int]int, len(payload.Issues))
	for _, ev := range payload.Events {
		counts[ev.IssueID]++
	}

	cw := csv.NewWriter(w)
	if _, err := fmt.Fprintln(w, "# Issues"); err != nil {
		return errs.Wrap(err, "write csv")
	}
	if err := cw.Write([]string{"id", "title", "status", "created_at", "resolved_at", "event_count", "tags"}); err != nil {
		return errs.Wrap(err, "write csv")
	}
	for _, is := range payload.Issues {
		resolvedAt := ""
		if is.ResolvedAt != nil {
			resolvedAt = *is.ResolvedAt
		}
		rec := []string{
			strconv.Itoa(is.ID),
			is.Title,
			string(is.Status),
			is.CreatedAt,
			resolvedAt,
			strconv.Itoa(counts[is.ID]),
			strings.Join(is.Tags, ", "),
		}
		if err := cw.Write(rec); err != nil {
			return errs.Wrap(err, "write csv")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errs.Wrap(err, "write csv")
	}

	if _, err := fmt.Fprintln(w, "\n# Events"); err != nil {
		return errs.Wrap(err, "write csv")
	}
	if err := cw.Write([]string{"event_id", "issue_id", "message", "level", "timestamp", "source", "tags", "context"}); err != nil {
		return errs.Wrap(err, "write csv")
	}
	for _, ev := range payload.Events {
		contextJSON := "{}"
		if len(ev.Context) > 0 {
			raw, err := json.Marshal(ev.Context)
			if err != nil {
				return errs.Wrap(err, "write csv")
			}
			contextJSON = string(raw)
		}
		rec := []string{
			ev.EventID,
			strconv.Itoa(ev.IssueID),
			ev.Message,
			string(ev.Level),
			ev.Timestamp,
			ev.Host,
			strings.Join(ev.Tags, ", "),
			contextJSON,
		}
		if err := cw.Write(rec); err != nil {
			return errs.Wrap(err, "write csv")
		}
	}
	cw.Flush()
	return errs.Wrap(cw.Error(), "write csv")
}

func (s *Service) exportPayload(ctx context.Context) (ExportPayload, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return ExportPayload{}, err
	}

	issues, err := s.issues.LoadAll(ctx)
	if err != nil {
		return ExportPayload{}, errs.Wrap(err, "load issues")
	}
	events, err := s.events.ReadAll(ctx)
	if err != nil {
		return ExportPayload{}, errs.Wrap(err, "load events")
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].ID < issues[j].ID })
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp < events[j].Timestamp })
	if issues == nil {
		issues = []domainvault.Issue{}
	}
	if events == nil {
		events = []domainvault.Event{}
	}
	return ExportPayload{
		Version:    exportVersion,
		ExportedAt: domainvault.FormatTime(s.now()),
		Issues:     issues,
		Events:     events,
	}, nil
}

// ImportInput controls how an Import merges into the current vault.
type ImportInput struct {
	// Replace wipes the vault before importing instead of merging.
	Replace bool
}

// ImportResult reports what an import changed.
type ImportResult struct {
	IssuesAdded  int
	IssuesMerged int
	EventsAdded  int
}

// Import reads an export payload from r and folds it into the vault. In merge
// mode issues are matched by fingerprint: known fingerprints keep their local
// id and adopt the imported status, severity, title, and tags; unknown ones
// are appended under fresh ids. Imported events are rewritten onto the local
// issue ids and stored under fresh event ids so repeated imports of the same
// payload do not collide with files already on disk; their timestamps are
// preserved so the history keeps its original day shards. An event whose
// issue id exists in neither the payload nor this vault is adopted under an
// issue keyed by the fingerprint of its message, created on the spot if
// needed, so the next gc does not sweep it as an orphan.
func (s *Service) Import(ctx context.Context, r io.Reader, in ImportInput) (ImportResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return ImportResult{}, err
	}

	var payload ExportPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return ImportResult{}, errs.Wrap(err, "decode import")
	}
	if payload.Version != exportVersion {
		return ImportResult{}, fmt.Errorf("unsupported export version %d", payload.Version)
	}

	if in.Replace {
		if _, err := s.Wipe(ctx); err != nil {
			return ImportResult{}, errs.Wrap(err, "wipe vault")
		}
	}

	issues, err := s.issues.LoadAll(ctx)
	if err != nil {
		return ImportResult{}, errs.Wrap(err, "load issues")
	}

	var res ImportResult
	idMap := make(map[int]int, len(payload.Issues)) // imported id -> local id
	for _, imp := range payload.Issues {
		importedID := imp.ID
		if idx := domainvault.FindByFingerprint(issues, imp.Fingerprint); idx >= 0 {
			local := &issues[idx]
			local.Status = imp.Status
			local.Severity = imp.Severity
			local.Title = domainvault.Truncate(imp.Title, domainvault.TitleMaxLen)
			local.ResolvedAt = imp.ResolvedAt
			for _, tag := range imp.Tags {
				local.AddTag(tag)
			}
			idMap[importedID] = local.ID
			res.IssuesMerged++
			continue
		}
		imp.ID = domainvault.NextIssueID(issues)
		issues = append(issues, imp)
		idMap[importedID] = imp.ID
		res.IssuesAdded++
	}

	if err := s.issues.SaveAll(ctx, issues); err != nil {
		return ImportResult{}, errs.Wrap(err, "save issues")
	}

	for _, ev := range payload.Events {
		if local, ok := idMap[ev.IssueID]; ok {
			ev.IssueID = local
		} else if !ev.Freestanding() && domainvault.FindByID(issues, ev.IssueID) < 0 {
			fp := domainvault.Fingerprint(ev.Message)
			idx := domainvault.FindByFingerprint(issues, fp)
			if idx < 0 {
				issues = append(issues, domainvault.NewIssue(domainvault.NextIssueID(issues), ev.Message, s.now()))
				idx = len(issues) - 1
				if err := s.issues.SaveAll(ctx, issues); err != nil {
					return res, errs.Wrap(err, "save issues")
				}
				res.IssuesAdded++
			}
			ev.IssueID = issues[idx].ID
		}
		ev.EventID = uuid.NewString()
		if err := s.events.Write(ctx, ev); err != nil {
			return res, errs.Wrap(err, "write event")
		}
		res.EventsAdded++
	}
	return res, nil
}
