package storage

import (
	"encoding/json"
	"os"

	"crashvault/internal/errs"
)

// writeJSONAtomic serializes value as indented JSON to a sibling .tmp file and
// renames it over the final path. A reader can never observe a partially
// written file: it sees either the old content or the fully new one, even if
// the process dies mid-write. A leftover .tmp after a crash is harmless.
func writeJSONAtomic(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errs.Wrap(err, "marshal json")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errs.Wrapf(err, "write temp file %q", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return errs.Wrapf(err, "rename %q over %q", tmp, path)
	}
	return nil
}
