package vault

import (
	"bytes"
	"context"
	"errors"
	"testing"

	domainvault "crashvault/internal/domain/vault"
	"crashvault/internal/infrastructure/storage"
)

type recordingNotifier struct {
	events []domainvault.Event
}

func (n *recordingNotifier) Dispatch(_ context.Context, ev domainvault.Event) {
	n.events = append(n.events, ev)
}

func newTestService(t *testing.T) (*Service, *recordingNotifier) {
	t.Helper()
	paths := storage.NewPaths(t.TempDir())
	if err := paths.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() error = %v", err)
	}
	notifier := &recordingNotifier{}
	svc := NewService(
		storage.NewIssueStore(paths),
		storage.NewEventStore(paths),
		storage.NewConfigStore(paths),
		notifier,
	)
	return svc, notifier
}

func TestAddEventCreatesIssueOnFirstSight(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()

	res, err := svc.AddEvent(ctx, AddEventInput{Message: "NullPointerException in handler"})
	if err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}
	if !res.CreatedIssue || res.IssueID != 1 {
		t.Fatalf("AddEvent() = %+v, want new issue #1", res)
	}

	detail, err := svc.GetIssue(ctx, 1)
	if err != nil {
		t.Fatalf("GetIssue() error = %v", err)
	}
	if detail.Issue.Fingerprint != "e622fab6" {
		t.Fatalf("issue fingerprint = %q, want e622fab6", detail.Issue.Fingerprint)
	}
	if len(notifier.events) != 1 {
		t.Fatalf("notifier saw %d events, want 1", len(notifier.events))
	}
}

func TestAddEventDeduplicatesByFingerprint(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.AddEvent(ctx, AddEventInput{Message: "boom", Level: "critical"})
	if err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}
	second, err := svc.AddEvent(ctx, AddEventInput{Message: "boom"})
	if err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}

	if second.CreatedIssue {
		t.Fatal("second ingest of the same message created a new issue")
	}
	if first.IssueID != second.IssueID {
		t.Fatalf("issue ids differ: %d vs %d", first.IssueID, second.IssueID)
	}

	detail, err := svc.GetIssue(ctx, first.IssueID)
	if err != nil {
		t.Fatalf("GetIssue() error = %v", err)
	}
	if len(detail.Events) != 2 {
		t.Fatalf("issue has %d events, want 2", len(detail.Events))
	}
}

func TestAddEventRejectsUnknownLevel(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.AddEvent(context.Background(), AddEventInput{Message: "x", Level: "fatal"}); !errors.Is(err, domainvault.ErrInvalidLevel) {
		t.Fatalf("AddEvent() error = %v, want ErrInvalidLevel", err)
	}
}

func TestIssueIDsNeverReusedAfterPurge(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddEvent(ctx, AddEventInput{Message: "a"}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}
	if _, err := svc.AddEvent(ctx, AddEventInput{Message: "b"}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}

	if _, err := svc.Purge(ctx, 1); err != nil {
		t.Fatalf("Purge() error = %v", err)
	}

	res, err := svc.AddEvent(ctx, AddEventInput{Message: "c"})
	if err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}
	if res.IssueID != 3 {
		t.Fatalf("new issue id = %d, want 3 (no reuse of purged ids)", res.IssueID)
	}
}

func TestPurgeCascadesToEvents(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for range [3]struct{}{} {
		if _, err := svc.AddEvent(ctx, AddEventInput{Message: "disk full"}); err != nil {
			t.Fatalf("AddEvent() error = %v", err)
		}
	}
	if _, err := svc.AddEvent(ctx, AddEventInput{Message: "unrelated"}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}

	removed, err := svc.Purge(ctx, 1)
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if removed != 3 {
		t.Fatalf("Purge() removed = %d, want 3", removed)
	}

	if _, err := svc.GetIssue(ctx, 1); !errors.Is(err, domainvault.ErrIssueNotFound) {
		t.Fatalf("GetIssue() error = %v, want ErrIssueNotFound", err)
	}
	if _, err := svc.Purge(ctx, 1); !errors.Is(err, domainvault.ErrIssueNotFound) {
		t.Fatalf("second Purge() error = %v, want ErrIssueNotFound", err)
	}
}

func TestGCKeepsNotesAndReports(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddNote(ctx, "remember to rotate certs", nil); err != nil {
		t.Fatalf("AddNote() error = %v", err)
	}
	if _, err := svc.AddReport(ctx, "weekly summary", "all quiet", nil); err != nil {
		t.Fatalf("AddReport() error = %v", err)
	}
	if _, err := svc.AddEvent(ctx, AddEventInput{Message: "boom"}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}

	removed, err := svc.GC(ctx)
	if err != nil {
		t.Fatalf("GC() error = %v", err)
	}
	if removed != 0 {
		t.Fatalf("GC() removed = %d, want 0", removed)
	}

	page, err := svc.ListEvents(ctx, ListEventsInput{})
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("ListEvents() total = %d, want 3", page.Total)
	}
}

func TestFreestandingEventsTagging(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddNote(ctx, "a note", []string{"ops"}); err != nil {
		t.Fatalf("AddNote() error = %v", err)
	}
	if _, err := svc.AddReport(ctx, "incident 12", "details here", nil); err != nil {
		t.Fatalf("AddReport() error = %v", err)
	}
	if _, err := svc.RecordCommandFailure(ctx, "make deploy", 2, "permission denied", "", nil); err != nil {
		t.Fatalf("RecordCommandFailure() error = %v", err)
	}

	events, err := svc.SearchEvents(ctx, SearchEventsInput{Tags: []string{"note"}})
	if err != nil {
		t.Fatalf("SearchEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].IssueID != domainvault.IssueIDNone {
		t.Fatalf("note search = %v", events)
	}

	events, err = svc.SearchEvents(ctx, SearchEventsInput{Tags: []string{"report"}})
	if err != nil {
		t.Fatalf("SearchEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].IssueID != domainvault.IssueIDReport || events[0].Stacktrace != "details here" {
		t.Fatalf("report search = %v", events)
	}

	events, err = svc.SearchEvents(ctx, SearchEventsInput{Tags: []string{"wrap"}})
	if err != nil {
		t.Fatalf("SearchEvents() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("wrap search = %v", events)
	}
	if events[0].Context["returncode"] != "2" {
		t.Fatalf("wrap context = %v, want returncode 2", events[0].Context)
	}
	if events[0].Message != "Command failed: make deploy (exit 2)" {
		t.Fatalf("wrap message = %q", events[0].Message)
	}
}

func TestBatchStatusAndTags(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, m := range []string{"a", "b", "c"} {
		if _, err := svc.AddEvent(ctx, AddEventInput{Message: m}); err != nil {
			t.Fatalf("AddEvent() error = %v", err)
		}
	}

	res, err := svc.Batch(ctx, BatchInput{
		IssueIDs: []int{1, 2, 99},
		Resolve:  true,
		Tags:     []string{"triaged"},
	})
	if err != nil {
		t.Fatalf("Batch() error = %v", err)
	}
	if res.Updated != 2 {
		t.Fatalf("Batch() updated = %d, want 2", res.Updated)
	}
	if len(res.NotFound) != 1 || res.NotFound[0] != 99 {
		t.Fatalf("Batch() not found = %v, want [99]", res.NotFound)
	}

	issues, err := svc.ListIssues(ctx, ListIssuesInput{Status: "resolved"})
	if err != nil {
		t.Fatalf("ListIssues() error = %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("resolved issues = %d, want 2", len(issues))
	}
	for _, i := range issues {
		if len(i.Tags) != 1 || i.Tags[0] != "triaged" {
			t.Fatalf("issue #%d tags = %v", i.ID, i.Tags)
		}
	}
}

func TestStatsSeedsStatusKeys(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddEvent(ctx, AddEventInput{Message: "boom", Level: "critical"}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.IssuesByStatus["open"] != 1 {
		t.Fatalf("open count = %d, want 1", stats.IssuesByStatus["open"])
	}
	if _, ok := stats.IssuesByStatus["resolved"]; !ok {
		t.Fatal("resolved key missing from stats")
	}
	if stats.EventsByLevel["critical"] != 1 {
		t.Fatalf("critical count = %d, want 1", stats.EventsByLevel["critical"])
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddEvent(ctx, AddEventInput{Message: "boom"}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}
	if _, err := svc.AddEvent(ctx, AddEventInput{Message: "boom"}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}
	if err := svc.Resolve(ctx, 1); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	var dump bytes.Buffer
	if err := svc.Export(ctx, &dump); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	// Restore into a fresh vault via replace mode.
	other, _ := newTestService(t)
	res, err := other.Import(ctx, bytes.NewReader(dump.Bytes()), ImportInput{Replace: true})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.IssuesAdded != 1 || res.EventsAdded != 2 {
		t.Fatalf("Import() = %+v, want 1 issue / 2 events", res)
	}

	detail, err := other.GetIssue(ctx, 1)
	if err != nil {
		t.Fatalf("GetIssue() error = %v", err)
	}
	if detail.Issue.Fingerprint != domainvault.Fingerprint("boom") {
		t.Fatalf("fingerprint = %q", detail.Issue.Fingerprint)
	}
	if detail.Issue.Status != domainvault.StatusResolved {
		t.Fatalf("status = %q, want resolved", detail.Issue.Status)
	}
	if len(detail.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(detail.Events))
	}
}

func TestImportMergeMatchesByFingerprint(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddEvent(ctx, AddEventInput{Message: "boom"}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}

	var dump bytes.Buffer
	if err := svc.Export(ctx, &dump); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	res, err := svc.Import(ctx, bytes.NewReader(dump.Bytes()), ImportInput{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.IssuesAdded != 0 || res.IssuesMerged != 1 {
		t.Fatalf("Import() = %+v, want pure merge", res)
	}

	issues, err := svc.ListIssues(ctx, ListIssuesInput{})
	if err != nil {
		t.Fatalf("ListIssues() error = %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("merge created a duplicate issue: %v", issues)
	}
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	svc, _ := newTestService(t)
	payload := []byte(`{"version": 2, "exported_at": "", "issues": [], "events": []}`)
	if _, err := svc.Import(context.Background(), bytes.NewReader(payload), ImportInput{}); err == nil {
		t.Fatal("Import() accepted unknown version")
	}
}

func TestExportCSVHasTwoSections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddEvent(ctx, AddEventInput{Message: "boom"}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}
	if _, err := svc.AddEvent(ctx, AddEventInput{Message: "boom"}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}

	var out bytes.Buffer
	if err := svc.ExportCSV(ctx, &out); err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	text := out.String()
	if !bytes.Contains(out.Bytes(), []byte("# Issues")) || !bytes.Contains(out.Bytes(), []byte("# Events")) {
		t.Fatalf("csv missing section markers:\n%s", text)
	}
	if !bytes.Contains(out.Bytes(), []byte("id,title,status,created_at,resolved_at,event_count,tags\n")) {
		t.Fatalf("csv missing issue header:\n%s", text)
	}
	if !bytes.Contains(out.Bytes(), []byte("event_id,issue_id,message,level,timestamp,source,tags,context\n")) {
		t.Fatalf("csv missing event header:\n%s", text)
	}
	// Event count column reflects the real per-issue tally.
	if !bytes.Contains(out.Bytes(), []byte(",2,")) {
		t.Fatalf("csv missing event count 2:\n%s", text)
	}
}

func TestImportAdoptsEventWithUnknownIssue(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	payload := []byte(`{"version": 1, "exported_at": "", "issues": [], "events": [` +
		`{"event_id": "ev-orig", "issue_id": 42, "message": "orphan boom", "level": "error", "timestamp": "2026-01-02T03:04:05.000000Z"}]}`)
	res, err := svc.Import(ctx, bytes.NewReader(payload), ImportInput{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.IssuesAdded != 1 || res.EventsAdded != 1 {
		t.Fatalf("Import() = %+v, want 1 issue / 1 event", res)
	}

	issues, err := svc.ListIssues(ctx, ListIssuesInput{})
	if err != nil {
		t.Fatalf("ListIssues() error = %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(issues))
	}
	if issues[0].Fingerprint != domainvault.Fingerprint("orphan boom") {
		t.Fatalf("fingerprint = %q", issues[0].Fingerprint)
	}

	detail, err := svc.GetIssue(ctx, issues[0].ID)
	if err != nil {
		t.Fatalf("GetIssue() error = %v", err)
	}
	if len(detail.Events) != 1 {
		t.Fatalf("adopted events = %d, want 1", len(detail.Events))
	}
	if got := detail.Events[0]; got.Timestamp != "2026-01-02T03:04:05.000000Z" || got.EventID == "ev-orig" {
		t.Fatalf("imported event = %+v, want preserved timestamp under a fresh id", got)
	}

	// A second import of the same payload lands on the adopted issue.
	if _, err := svc.Import(ctx, bytes.NewReader(payload), ImportInput{}); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	issues, err = svc.ListIssues(ctx, ListIssuesInput{})
	if err != nil {
		t.Fatalf("ListIssues() error = %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("re-import duplicated the adopted issue: %v", issues)
	}

	// The adopted events must survive garbage collection.
	removed, err := svc.GC(ctx)
	if err != nil {
		t.Fatalf("GC() error = %v", err)
	}
	if removed != 0 {
		t.Fatalf("GC() removed = %d, want 0", removed)
	}
}

func TestWipe(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddEvent(ctx, AddEventInput{Message: "boom"}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}
	if _, err := svc.AddNote(ctx, "note", nil); err != nil {
		t.Fatalf("AddNote() error = %v", err)
	}

	removed, err := svc.Wipe(ctx)
	if err != nil {
		t.Fatalf("Wipe() error = %v", err)
	}
	if removed != 2 {
		t.Fatalf("Wipe() removed = %d, want 2", removed)
	}

	issues, err := svc.ListIssues(ctx, ListIssuesInput{})
	if err != nil {
		t.Fatalf("ListIssues() error = %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("issues after wipe = %v", issues)
	}
}

func TestSetTitleTruncates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddEvent(ctx, AddEventInput{Message: "boom"}); err != nil {
		t.Fatalf("AddEvent() error = %v", err)
	}

	long := make([]byte, 0, 300)
	for i := 0; i < 300; i++ {
		long = append(long, 'x')
	}
	if err := svc.SetTitle(ctx, 1, string(long)); err != nil {
		t.Fatalf("SetTitle() error = %v", err)
	}

	detail, err := svc.GetIssue(ctx, 1)
	if err != nil {
		t.Fatalf("GetIssue() error = %v", err)
	}
	if len(detail.Issue.Title) != domainvault.TitleMaxLen {
		t.Fatalf("title length = %d, want %d", len(detail.Issue.Title), domainvault.TitleMaxLen)
	}
}

func TestConfigSetParsesJSONValues(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.ConfigSet(ctx, "retention_days", "30"); err != nil {
		t.Fatalf("ConfigSet() error = %v", err)
	}
	if err := svc.ConfigSet(ctx, "owner", "alex"); err != nil {
		t.Fatalf("ConfigSet() error = %v", err)
	}

	v, ok, err := svc.ConfigGet(ctx, "retention_days")
	if err != nil || !ok {
		t.Fatalf("ConfigGet() = %v, %t, %v", v, ok, err)
	}
	if n, isNum := v.(float64); !isNum || n != 30 {
		t.Fatalf("retention_days = %#v, want json number 30", v)
	}

	v, ok, err = svc.ConfigGet(ctx, "owner")
	if err != nil || !ok {
		t.Fatalf("ConfigGet() = %v, %t, %v", v, ok, err)
	}
	if s, isStr := v.(string); !isStr || s != "alex" {
		t.Fatalf("owner = %#v, want string alex", v)
	}
}
