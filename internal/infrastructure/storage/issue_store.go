package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"crashvault/internal/domain/vault"
	"crashvault/internal/errs"
)

// IssueStore keeps the full issue list in one JSON document, rewritten
// wholesale on every mutation.
type IssueStore struct {
	paths Paths
}

func NewIssueStore(paths Paths) *IssueStore {
	return &IssueStore{paths: paths}
}

func (s *IssueStore) LoadAll(ctx context.Context) ([]vault.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	data, err := os.ReadFile(s.paths.IssuesFile())
	if errors.Is(err, os.ErrNotExist) {
		return []vault.Issue{}, nil
	}
	if err != nil {
		return nil, errs.Wrap(err, "read issues file")
	}

	var issues []vault.Issue
	if err := json.Unmarshal(data, &issues); err != nil {
		return nil, fmt.Errorf("%w: %s", vault.ErrCorruptVault, err)
	}
	if issues == nil {
		issues = []vault.Issue{}
	}
	return issues, nil
}

func (s *IssueStore) SaveAll(ctx context.Context, issues []vault.Issue) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if issues == nil {
		issues = []vault.Issue{}
	}
	return writeJSONAtomic(s.paths.IssuesFile(), issues)
}
