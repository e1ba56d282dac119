package webhook

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"crashvault/internal/domain/vault"
)

// teamsProvider posts a MessageCard to a Microsoft Teams incoming webhook.
type teamsProvider struct {
	base
	client *http.Client
}

func newTeamsProvider(cfg vault.Webhook, client *http.Client) Provider {
	return &teamsProvider{base: base{cfg: cfg}, client: client}
}

func (p *teamsProvider) Send(ctx context.Context, ev vault.Event) error {
	facts := []map[string]string{
		{"name": "Level", "value": fmt.Sprintf("%s %s", emojiFor(ev.Level), levelUpper(ev.Level))},
		{"name": "Issue", "value": fmt.Sprintf("#%d", ev.IssueID)},
	}
	if ev.Host != "" {
		facts = append(facts, map[string]string{"name": "Host", "value": ev.Host})
	}
	if len(ev.Tags) > 0 {
		facts = append(facts, map[string]string{"name": "Tags", "value": strings.Join(ev.Tags, ", ")})
	}

	text := fmt.Sprintf("**CrashVault Alert** - %s - Issue #%d\n\n%s",
		levelUpper(ev.Level), ev.IssueID, truncate(ev.Message, 500))
	if ev.Stacktrace != "" {
		text += fmt.Sprintf("\n\n```\n%s\n```", truncate(ev.Stacktrace, 500))
	}

	payload := map[string]any{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": colorFor(ev.Level),
		"summary":    fmt.Sprintf("CrashVault Alert: %s - Issue #%d", levelUpper(ev.Level), ev.IssueID),
		"text":       text,
		"sections": []map[string]any{{
			"activityTitle":    "CrashVault Alert",
			"activitySubtitle": fmt.Sprintf("Level: %s", levelUpper(ev.Level)),
			"facts":            facts,
			"markdown":         true,
		}},
		"potentialAction": []map[string]any{{
			"@type": "OpenUri",
			"name":  "View in CrashVault",
			"targets": []map[string]string{
				{"os": "default", "uri": fmt.Sprintf("crashvault://issue/%d", ev.IssueID)},
			},
		}},
	}

	return postJSON(ctx, p.client, p.cfg.URL, nil, payload)
}
