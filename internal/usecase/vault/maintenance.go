package vault

import (
	"context"
	"time"

	domainvault "crashvault/internal/domain/vault"
	"crashvault/internal/errs"
)

// Purge deletes one issue and cascades to every event it owns, returning the
// number of event files removed.
func (s *Service) Purge(ctx context.Context, issueID int) (int, error) {
	issues, err := s.issues.LoadAll(ctx)
	if err != nil {
		return 0, errs.Wrap(err, "load issues")
	}
	idx := domainvault.FindByID(issues, issueID)
	if idx < 0 {
		return 0, domainvault.ErrIssueNotFound
	}

	issues = append(issues[:idx], issues[idx+1:]...)
	if err := s.issues.SaveAll(ctx, issues); err != nil {
		return 0, errs.Wrap(err, "save issues")
	}

	removed, err := s.events.Remove(ctx, func(ev domainvault.Event) bool {
		return ev.IssueID == issueID
	})
	if err != nil {
		return removed, errs.Wrap(err, "remove events")
	}
	return removed, nil
}

// GC removes unreadable event files and events orphaned by issue deletion.
// Freestanding notes and reports (sentinel issue ids) are never collected.
func (s *Service) GC(ctx context.Context) (int, error) {
	issues, err := s.issues.LoadAll(ctx)
	if err != nil {
		return 0, errs.Wrap(err, "load issues")
	}
	live := make(map[int]bool, len(issues))
	for _, i := range issues {
		live[i.ID] = true
	}
	return s.events.Vacuum(ctx, live)
}

// Prune removes event files whose modification time is older than the given
// number of days.
func (s *Service) Prune(ctx context.Context, days int) (int, error) {
	cutoff := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	return s.events.PruneOlderThan(ctx, cutoff)
}

// Wipe deletes every issue and every event.
func (s *Service) Wipe(ctx context.Context) (int, error) {
	if err := s.issues.SaveAll(ctx, nil); err != nil {
		return 0, errs.Wrap(err, "reset issues")
	}
	return s.events.RemoveAll(ctx)
}
