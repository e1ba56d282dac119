package vault

import (
	"context"

	domainvault "crashvault/internal/domain/vault"
	"crashvault/internal/errs"
)

// mutateIssue loads the full list, applies fn to the matching issue, and
// writes the whole list back. Whole-file last-write-wins; see the store
// contract.
func (s *Service) mutateIssue(ctx context.Context, issueID int, fn func(*domainvault.Issue)) error {
	issues, err := s.issues.LoadAll(ctx)
	if err != nil {
		return errs.Wrap(err, "load issues")
	}
	idx := domainvault.FindByID(issues, issueID)
	if idx < 0 {
		return domainvault.ErrIssueNotFound
	}
	fn(&issues[idx])
	return errs.Wrap(s.issues.SaveAll(ctx, issues), "save issues")
}

// SetStatus validates and applies a status change. Resolving stamps
// resolved_at; reopening clears it; ignoring leaves it untouched.
func (s *Service) SetStatus(ctx context.Context, issueID int, rawStatus string) error {
	status, err := domainvault.ParseStatus(rawStatus)
	if err != nil {
		return err
	}
	return s.mutateIssue(ctx, issueID, func(i *domainvault.Issue) {
		s.applyStatus(i, status)
	})
}

func (s *Service) applyStatus(i *domainvault.Issue, status domainvault.Status) {
	switch status {
	case domainvault.StatusResolved:
		i.Resolve(s.now())
	case domainvault.StatusOpen:
		i.Reopen()
	default:
		i.Status = status
	}
}

func (s *Service) Resolve(ctx context.Context, issueID int) error {
	return s.SetStatus(ctx, issueID, string(domainvault.StatusResolved))
}

func (s *Service) Reopen(ctx context.Context, issueID int) error {
	return s.SetStatus(ctx, issueID, string(domainvault.StatusOpen))
}

func (s *Service) SetTitle(ctx context.Context, issueID int, title string) error {
	return s.mutateIssue(ctx, issueID, func(i *domainvault.Issue) {
		i.Title = domainvault.Truncate(title, domainvault.TitleMaxLen)
	})
}

func (s *Service) SetSeverity(ctx context.Context, issueID int, rawSeverity string) error {
	severity, err := domainvault.ParseSeverity(rawSeverity)
	if err != nil {
		return err
	}
	return s.mutateIssue(ctx, issueID, func(i *domainvault.Issue) {
		i.Severity = severity
	})
}

func (s *Service) AddIssueTag(ctx context.Context, issueID int, tag string) error {
	return s.mutateIssue(ctx, issueID, func(i *domainvault.Issue) {
		i.AddTag(tag)
	})
}

func (s *Service) RemoveIssueTag(ctx context.Context, issueID int, tag string) error {
	return s.mutateIssue(ctx, issueID, func(i *domainvault.Issue) {
		i.RemoveTag(tag)
	})
}

type BatchInput struct {
	IssueIDs []int
	Resolve  bool
	Reopen   bool
	Ignore   bool
	Status   string
	Severity string
	Tags     []string
	Untags   []string
}

type BatchResult struct {
	Updated  int
	NotFound []int
}

// Batch applies one set of edits to many issues in a single read-modify-write
// pass. An explicit --status overrides the resolve/reopen/ignore flags.
func (s *Service) Batch(ctx context.Context, input BatchInput) (BatchResult, error) {
	var status domainvault.Status
	if input.Status != "" {
		var err error
		status, err = domainvault.ParseStatus(input.Status)
		if err != nil {
			return BatchResult{}, err
		}
	}
	var severity domainvault.Severity
	if input.Severity != "" {
		var err error
		severity, err = domainvault.ParseSeverity(input.Severity)
		if err != nil {
			return BatchResult{}, err
		}
	}

	issues, err := s.issues.LoadAll(ctx)
	if err != nil {
		return BatchResult{}, errs.Wrap(err, "load issues")
	}

	var result BatchResult
	for _, id := range input.IssueIDs {
		idx := domainvault.FindByID(issues, id)
		if idx < 0 {
			result.NotFound = append(result.NotFound, id)
			continue
		}
		issue := &issues[idx]

		if input.Resolve {
			issue.Resolve(s.now())
		}
		if input.Reopen {
			issue.Reopen()
		}
		if input.Ignore {
			issue.Status = domainvault.StatusIgnored
		}
		if status != "" {
			s.applyStatus(issue, status)
		}
		if severity != "" {
			issue.Severity = severity
		}
		for _, tag := range input.Tags {
			issue.AddTag(tag)
		}
		for _, tag := range input.Untags {
			issue.RemoveTag(tag)
		}
		result.Updated++
	}

	if result.Updated > 0 {
		if err := s.issues.SaveAll(ctx, issues); err != nil {
			return BatchResult{}, errs.Wrap(err, "save issues")
		}
	}
	return result, nil
}
