package vault

import (
	"context"
	"sort"
	"strings"

	domainvault "crashvault/internal/domain/vault"
	"crashvault/internal/errs"
)

type ListIssuesInput struct {
	Status     string
	SortKey    string
	Descending bool
}

func (s *Service) ListIssues(ctx context.Context, input ListIssuesInput) ([]domainvault.Issue, error) {
	issues, err := s.issues.LoadAll(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "load issues")
	}

	if input.Status != "" {
		status, err := domainvault.ParseStatus(input.Status)
		if err != nil {
			return nil, err
		}
		filtered := issues[:0]
		for _, i := range issues {
			if i.Status == status {
				filtered = append(filtered, i)
			}
		}
		issues = filtered
	}

	sortIssues(issues, input.SortKey, input.Descending)
	return issues, nil
}

func sortIssues(issues []domainvault.Issue, key string, desc bool) {
	less := func(a, b domainvault.Issue) bool { return a.ID < b.ID }
	switch key {
	case "title":
		less = func(a, b domainvault.Issue) bool { return a.Title < b.Title }
	case "status":
		less = func(a, b domainvault.Issue) bool { return a.Status < b.Status }
	case "created_at":
		less = func(a, b domainvault.Issue) bool { return a.CreatedAt < b.CreatedAt }
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if desc {
			return less(issues[j], issues[i])
		}
		return less(issues[i], issues[j])
	})
}

type IssueDetail struct {
	Issue  domainvault.Issue
	Events []domainvault.Event
}

// GetIssue returns the issue and its events, oldest first.
func (s *Service) GetIssue(ctx context.Context, issueID int) (IssueDetail, error) {
	issues, err := s.issues.LoadAll(ctx)
	if err != nil {
		return IssueDetail{}, errs.Wrap(err, "load issues")
	}
	idx := domainvault.FindByID(issues, issueID)
	if idx < 0 {
		return IssueDetail{}, domainvault.ErrIssueNotFound
	}

	all, err := s.events.ReadAll(ctx)
	if err != nil {
		return IssueDetail{}, errs.Wrap(err, "scan events")
	}
	events := make([]domainvault.Event, 0, 8)
	for _, ev := range all {
		if ev.IssueID == issueID {
			events = append(events, ev)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Timestamp < events[j].Timestamp })

	return IssueDetail{Issue: issues[idx], Events: events}, nil
}

type SearchEventsInput struct {
	Level string
	Tags  []string
	Text  string
}

// SearchEvents filters the full event scan; every filter is a linear pass.
func (s *Service) SearchEvents(ctx context.Context, input SearchEventsInput) ([]domainvault.Event, error) {
	var level domainvault.Level
	if input.Level != "" {
		var err error
		level, err = domainvault.ParseLevel(input.Level)
		if err != nil {
			return nil, err
		}
	}

	all, err := s.events.ReadAll(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "scan events")
	}

	matched := make([]domainvault.Event, 0, len(all))
	for _, ev := range all {
		if level != "" && ev.Level != level {
			continue
		}
		if !hasAllTags(ev.Tags, input.Tags) {
			continue
		}
		if input.Text != "" && !strings.Contains(strings.ToLower(ev.Message), strings.ToLower(input.Text)) {
			continue
		}
		matched = append(matched, ev)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Timestamp < matched[j].Timestamp })
	return matched, nil
}

func hasAllTags(have []string, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type ListEventsInput struct {
	IssueID *int
	Limit   int
	Offset  int
}

type EventsPage struct {
	Events []domainvault.Event
	Total  int
}

// ListEvents pages the event scan, newest first.
func (s *Service) ListEvents(ctx context.Context, input ListEventsInput) (EventsPage, error) {
	all, err := s.events.ReadAll(ctx)
	if err != nil {
		return EventsPage{}, errs.Wrap(err, "scan events")
	}

	if input.IssueID != nil {
		filtered := all[:0]
		for _, ev := range all {
			if ev.IssueID == *input.IssueID {
				filtered = append(filtered, ev)
			}
		}
		all = filtered
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Timestamp > all[j].Timestamp })

	total := len(all)
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return EventsPage{Events: all[offset:end], Total: total}, nil
}

type Stats struct {
	IssuesByStatus map[string]int
	EventsByLevel  map[string]int
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	issues, err := s.issues.LoadAll(ctx)
	if err != nil {
		return Stats{}, errs.Wrap(err, "load issues")
	}
	events, err := s.events.ReadAll(ctx)
	if err != nil {
		return Stats{}, errs.Wrap(err, "scan events")
	}

	out := Stats{
		IssuesByStatus: map[string]int{"open": 0, "resolved": 0},
		EventsByLevel:  map[string]int{},
	}
	for _, i := range issues {
		out.IssuesByStatus[string(i.Status)]++
	}
	for _, ev := range events {
		out.EventsByLevel[string(ev.Level)]++
	}
	return out, nil
}
