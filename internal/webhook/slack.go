package webhook

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"crashvault/internal/domain/vault"
)

// slackProvider posts a simple markdown text payload to a Slack incoming
// webhook URL.
type slackProvider struct {
	base
	client *http.Client
}

func newSlackProvider(cfg vault.Webhook, client *http.Client) Provider {
	return &slackProvider{base: base{cfg: cfg}, client: client}
}

func (p *slackProvider) Send(ctx context.Context, ev vault.Event) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s *CrashVault Alert* — %s — Issue #%d\n", emojiFor(ev.Level), levelUpper(ev.Level), ev.IssueID)
	b.WriteString(truncate(ev.Message, 500))
	if ev.Stacktrace != "" {
		fmt.Fprintf(&b, "\n```%s```", truncate(ev.Stacktrace, 700))
	}
	if len(ev.Tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s", strings.Join(ev.Tags, ", "))
	}
	if ev.Host != "" {
		fmt.Fprintf(&b, "\nHost: %s", ev.Host)
	}

	return postJSON(ctx, p.client, p.cfg.URL, nil, map[string]any{"text": b.String()})
}
