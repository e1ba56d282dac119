package vault

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Level string

const (
	LevelDebug    Level = "debug"
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelCritical Level = "critical"
)

func ParseLevel(raw string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(raw))) {
	case LevelDebug:
		return LevelDebug, nil
	case LevelInfo:
		return LevelInfo, nil
	case LevelWarning:
		return LevelWarning, nil
	case LevelError:
		return LevelError, nil
	case LevelCritical:
		return LevelCritical, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, raw)
	}
}

// ParseLevels parses a level allow-list, rejecting the whole list on the first
// unknown name.
func ParseLevels(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		lvl, err := ParseLevel(r)
		if err != nil {
			return nil, err
		}
		out = append(out, string(lvl))
	}
	return out, nil
}

// Sentinel issue ids for events with no owning issue.
const (
	// IssueIDNone marks freestanding notes, wrap-log, and autolog entries.
	IssueIDNone = 0
	// IssueIDReport marks structural report entries.
	IssueIDReport = -1
)

// Event is a single immutable occurrence record. Once written its file is
// never mutated, only deleted.
type Event struct {
	EventID    string   `json:"event_id"`
	IssueID    int      `json:"issue_id"`
	Message    string   `json:"message"`
	Stacktrace string   `json:"stacktrace"`
	Timestamp  string   `json:"timestamp"`
	Level      Level    `json:"level"`
	Tags       []string `json:"tags"`
	Context    Context  `json:"context"`
	Host       string   `json:"host"`
	PID        int      `json:"pid"`
}

// Time parses the event timestamp; the zero time is returned for a value that
// does not parse.
func (e Event) Time() time.Time {
	t, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Freestanding reports whether the event deliberately has no owning issue.
func (e Event) Freestanding() bool {
	return e.IssueID == IssueIDNone || e.IssueID == IssueIDReport
}

// Context is the event's free-form string-to-string metadata. Stored files may
// carry arbitrary JSON values in this mapping; scalars are coerced to strings
// on read and composite values are dropped rather than trusted.
type Context map[string]string

func (c *Context) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Context, len(raw))
	for key, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			out[key] = s
			continue
		}

		var scalar any
		if err := json.Unmarshal(value, &scalar); err != nil {
			continue
		}
		switch v := scalar.(type) {
		case nil:
			out[key] = ""
		case bool:
			out[key] = strconv.FormatBool(v)
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}

	*c = out
	return nil
}
