package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"crashvault/internal/bootstrap/logging"
	domainvault "crashvault/internal/domain/vault"
	"crashvault/internal/errs"
)

type AddEventInput struct {
	Message    string
	Stacktrace string
	Level      string
	Tags       []string
	Context    map[string]string
}

type AddEventResult struct {
	EventID      string
	IssueID      int
	CreatedIssue bool
}

// AddEvent is the ingestion pipeline: fingerprint the message, find or create
// the owning issue, persist the event atomically, then fan out to webhooks.
// The two stores are independently self-consistent; an event-write failure
// after issue creation leaves the new issue in place on purpose. Webhook
// outcomes are logged and can never fail ingestion.
func (s *Service) AddEvent(ctx context.Context, input AddEventInput) (AddEventResult, error) {
	if ctx == nil {
		return AddEventResult{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return AddEventResult{}, errs.Wrap(err, "check context")
	}

	message := input.Message
	if strings.TrimSpace(message) == "" {
		return AddEventResult{}, errors.New("message is required")
	}

	level := domainvault.LevelError
	if input.Level != "" {
		var err error
		level, err = domainvault.ParseLevel(input.Level)
		if err != nil {
			return AddEventResult{}, err
		}
	}

	issues, err := s.issues.LoadAll(ctx)
	if err != nil {
		return AddEventResult{}, errs.Wrap(err, "load issues")
	}

	fp := domainvault.Fingerprint(message)
	created := false
	idx := domainvault.FindByFingerprint(issues, fp)
	if idx < 0 {
		issue := domainvault.NewIssue(domainvault.NextIssueID(issues), message, s.now())
		issues = append(issues, issue)
		if err := s.issues.SaveAll(ctx, issues); err != nil {
			return AddEventResult{}, errs.Wrap(err, "save issues")
		}
		idx = len(issues) - 1
		created = true
	}
	issueID := issues[idx].ID

	ev := domainvault.Event{
		EventID:    uuid.NewString(),
		IssueID:    issueID,
		Message:    message,
		Stacktrace: input.Stacktrace,
		Timestamp:  domainvault.FormatTime(s.now()),
		Level:      level,
		Tags:       normalizeTags(input.Tags),
		Context:    normalizeContext(input.Context),
		Host:       s.host,
		PID:        s.pid,
	}

	if err := s.events.Write(ctx, ev); err != nil {
		return AddEventResult{}, errs.Wrap(err, "write event")
	}

	logging.Info(ctx, "event recorded",
		slog.Int("issue_id", issueID),
		slog.String("event_id", ev.EventID),
		slog.String("level", string(level)),
	)

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, ev)
	}

	return AddEventResult{EventID: ev.EventID, IssueID: issueID, CreatedIssue: created}, nil
}

// AddNote records a freestanding note event with no owning issue.
func (s *Service) AddNote(ctx context.Context, message string, tags []string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", errors.New("message is required")
	}
	return s.writeFreestanding(ctx, domainvault.Event{
		IssueID: domainvault.IssueIDNone,
		Message: message,
		Level:   domainvault.LevelInfo,
		Tags:    append(normalizeTags(tags), "note"),
		Context: domainvault.Context{},
	})
}

// AddReport records a structural report entry: the title is the message and
// the body travels in the stacktrace field.
func (s *Service) AddReport(ctx context.Context, title string, body string, tags []string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", errors.New("title is required")
	}
	return s.writeFreestanding(ctx, domainvault.Event{
		IssueID:    domainvault.IssueIDReport,
		Message:    title,
		Stacktrace: body,
		Level:      domainvault.LevelInfo,
		Tags:       append(normalizeTags(tags), "report"),
		Context:    domainvault.Context{},
	})
}

// RecordCommandFailure logs a wrapped subprocess failure as a freestanding
// event.
func (s *Service) RecordCommandFailure(ctx context.Context, command string, exitCode int, stderr string, level string, tags []string) (string, error) {
	lvl := domainvault.LevelError
	if level != "" {
		var err error
		lvl, err = domainvault.ParseLevel(level)
		if err != nil {
			return "", err
		}
	}
	return s.writeFreestanding(ctx, domainvault.Event{
		IssueID:    domainvault.IssueIDNone,
		Message:    fmt.Sprintf("Command failed: %s (exit %d)", command, exitCode),
		Stacktrace: strings.TrimSpace(stderr),
		Level:      lvl,
		Tags:       append(normalizeTags(tags), "wrap"),
		Context:    domainvault.Context{"returncode": fmt.Sprintf("%d", exitCode)},
	})
}

func (s *Service) writeFreestanding(ctx context.Context, ev domainvault.Event) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", errs.Wrap(err, "check context")
	}

	ev.EventID = uuid.NewString()
	ev.Timestamp = domainvault.FormatTime(s.now())
	ev.Host = s.host
	ev.PID = s.pid

	if err := s.events.Write(ctx, ev); err != nil {
		return "", errs.Wrap(err, "write event")
	}
	return ev.EventID, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func normalizeContext(ctx map[string]string) domainvault.Context {
	out := make(domainvault.Context, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
