package vault

import (
	"encoding/json"
	"testing"
)

func TestParseLevelsRejectsUnknown(t *testing.T) {
	if _, err := ParseLevels([]string{"error", "fatal"}); err == nil {
		t.Fatal("ParseLevels() expected error for unknown level")
	}
	got, err := ParseLevels([]string{"ERROR", " critical "})
	if err != nil {
		t.Fatalf("ParseLevels() error = %v", err)
	}
	if len(got) != 2 || got[0] != "error" || got[1] != "critical" {
		t.Fatalf("ParseLevels() = %v", got)
	}
}

func TestFreestanding(t *testing.T) {
	cases := []struct {
		issueID int
		want    bool
	}{
		{IssueIDNone, true},
		{IssueIDReport, true},
		{1, false},
		{42, false},
	}
	for _, tc := range cases {
		ev := Event{IssueID: tc.issueID}
		if got := ev.Freestanding(); got != tc.want {
			t.Fatalf("Freestanding() issue_id=%d = %t, want %t", tc.issueID, got, tc.want)
		}
	}
}

func TestContextCoercesScalars(t *testing.T) {
	raw := []byte(`{"returncode": 2, "flag": true, "empty": null, "name": "worker", "nested": {"a": 1}, "list": [1,2]}`)
	var c Context
	if err := json.Unmarshal(raw, &c); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := Context{
		"returncode": "2",
		"flag":       "true",
		"empty":      "",
		"name":       "worker",
	}
	if len(c) != len(want) {
		t.Fatalf("Context = %v, want %v", c, want)
	}
	for k, v := range want {
		if c[k] != v {
			t.Fatalf("Context[%q] = %q, want %q", k, c[k], v)
		}
	}
}

func TestWebhookAccepts(t *testing.T) {
	all := Webhook{Enabled: true}
	if !all.Accepts(LevelDebug) || !all.Accepts(LevelCritical) {
		t.Fatal("empty level filter should accept every level")
	}
	filtered := Webhook{Enabled: true, Events: []string{"error", "critical"}}
	if filtered.Accepts(LevelWarning) {
		t.Fatal("Accepts(warning) = true with error/critical filter")
	}
	if !filtered.Accepts(LevelError) {
		t.Fatal("Accepts(error) = false with error/critical filter")
	}
}
