package webhook

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"crashvault/internal/domain/vault"
)

// discordProvider posts an embed to a Discord webhook URL.
type discordProvider struct {
	base
	client *http.Client
}

func newDiscordProvider(cfg vault.Webhook, client *http.Client) Provider {
	return &discordProvider{base: base{cfg: cfg}, client: client}
}

func (p *discordProvider) Send(ctx context.Context, ev vault.Event) error {
	description := truncate(ev.Message, 500)
	if ev.Stacktrace != "" {
		description += fmt.Sprintf("\n```\n%s\n```", truncate(ev.Stacktrace, 1000))
	}

	fields := make([]map[string]any, 0, 3)
	fields = append(fields, map[string]any{
		"name": "Issue", "value": fmt.Sprintf("#%d", ev.IssueID), "inline": true,
	})
	if ev.Host != "" {
		fields = append(fields, map[string]any{"name": "Host", "value": ev.Host, "inline": true})
	}
	if len(ev.Tags) > 0 {
		fields = append(fields, map[string]any{"name": "Tags", "value": strings.Join(ev.Tags, ", "), "inline": false})
	}

	payload := map[string]any{
		"content": fmt.Sprintf("%s **CrashVault Alert** — %s", emojiFor(ev.Level), levelUpper(ev.Level)),
		"embeds": []map[string]any{{
			"title":       fmt.Sprintf("[%s] Issue #%d", levelUpper(ev.Level), ev.IssueID),
			"description": description,
			"color":       colorIntFor(ev.Level),
			"fields":      fields,
			"footer":      map[string]any{"text": fmt.Sprintf("Event %s | %s", ev.EventID, ev.Timestamp)},
		}},
	}

	return postJSON(ctx, p.client, p.cfg.URL, nil, payload)
}
