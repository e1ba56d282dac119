package vault

import (
	"fmt"
	"strings"
	"time"
)

const (
	// TitleMaxLen caps titles on every mutation path.
	TitleMaxLen = 200
	// TitleCreateLen caps titles derived from a message at issue creation.
	TitleCreateLen = 80
)

type Status string

const (
	StatusOpen     Status = "open"
	StatusResolved Status = "resolved"
	StatusIgnored  Status = "ignored"
)

func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusOpen:
		return StatusOpen, nil
	case StatusResolved:
		return StatusResolved, nil
	case StatusIgnored:
		return StatusIgnored, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func ParseSeverity(raw string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(raw))) {
	case SeverityLow:
		return SeverityLow, nil
	case SeverityMedium:
		return SeverityMedium, nil
	case SeverityHigh:
		return SeverityHigh, nil
	case SeverityCritical:
		return SeverityCritical, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, raw)
	}
}

// Issue is one deduplicated group of events sharing a fingerprint.
type Issue struct {
	ID          int      `json:"id"`
	Fingerprint string   `json:"fingerprint"`
	Title       string   `json:"title"`
	Status      Status   `json:"status"`
	Severity    Severity `json:"severity,omitempty"`
	CreatedAt   string   `json:"created_at"`
	ResolvedAt  *string  `json:"resolved_at,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// NewIssue builds an open issue from the message that triggered it.
func NewIssue(id int, message string, now time.Time) Issue {
	return Issue{
		ID:          id,
		Fingerprint: Fingerprint(message),
		Title:       Truncate(message, TitleCreateLen),
		Status:      StatusOpen,
		CreatedAt:   FormatTime(now),
	}
}

// Resolve sets the status and records the resolution time.
func (i *Issue) Resolve(now time.Time) {
	i.Status = StatusResolved
	ts := FormatTime(now)
	i.ResolvedAt = &ts
}

// Reopen clears any earlier resolution.
func (i *Issue) Reopen() {
	i.Status = StatusOpen
	i.ResolvedAt = nil
}

// AddTag appends the tag unless it is already present.
func (i *Issue) AddTag(tag string) {
	for _, t := range i.Tags {
		if t == tag {
			return
		}
	}
	i.Tags = append(i.Tags, tag)
}

// RemoveTag drops the tag, preserving the order of the rest.
func (i *Issue) RemoveTag(tag string) {
	out := i.Tags[:0]
	for _, t := range i.Tags {
		if t != tag {
			out = append(out, t)
		}
	}
	i.Tags = out
}

// NextIssueID assigns max(id)+1 so ids are never reused after a deletion.
// The reference tool numbered new issues count+1 on the ingest path, which can
// collide with a live id once any issue has been purged.
func NextIssueID(issues []Issue) int {
	max := 0
	for _, i := range issues {
		if i.ID > max {
			max = i.ID
		}
	}
	return max + 1
}

// FindByFingerprint returns the index of the owning issue, or -1.
func FindByFingerprint(issues []Issue, fingerprint string) int {
	for idx := range issues {
		if issues[idx].Fingerprint == fingerprint {
			return idx
		}
	}
	return -1
}

// FindByID returns the index of the issue with the given id, or -1.
func FindByID(issues []Issue, id int) int {
	for idx := range issues {
		if issues[idx].ID == id {
			return idx
		}
	}
	return -1
}

// Truncate caps a string at n characters (runes are not split; input is
// operator-supplied text where byte truncation of multibyte runes would be
// visible, so cut on rune boundaries).
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// FormatTime renders a UTC timestamp as ISO-8601 with a Z suffix, microsecond
// precision, matching the on-disk interchange format.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z")
}
