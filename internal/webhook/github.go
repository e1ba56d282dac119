package webhook

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"crashvault/internal/domain/vault"
	"crashvault/internal/errs"
)

// githubStackLimit keeps issue bodies well under GitHub's 65536-char ceiling.
const githubStackLimit = 15000

var githubLevelLabels = map[vault.Level][]string{
	vault.LevelDebug:    {"priority/low", "crashvault/debug"},
	vault.LevelInfo:     {"priority/low", "crashvault/info"},
	vault.LevelWarning:  {"priority/medium", "crashvault/warning"},
	vault.LevelError:    {"priority/high", "crashvault/error"},
	vault.LevelCritical: {"priority/critical", "crashvault/critical"},
}

// githubProvider files a GitHub issue for each dispatched event. The url
// accepts three shapes: an API URL, a web URL, or owner/repo shorthand; the
// secret is a personal access token sent as a bearer credential.
type githubProvider struct {
	base
	client *http.Client

	// apiBase overrides the public API endpoint; tests point it at a local
	// server.
	apiBase string
}

func newGitHubProvider(cfg vault.Webhook, client *http.Client) Provider {
	return &githubProvider{base: base{cfg: cfg}, client: client}
}

// ShouldSend narrows the generic rule: with no explicit filter only error and
// critical events become tracker issues, since issue-tracker noise is costlier
// than chat noise.
func (p *githubProvider) ShouldSend(ev vault.Event) bool {
	if !p.cfg.Enabled {
		return false
	}
	if len(p.cfg.Events) == 0 {
		return ev.Level == vault.LevelError || ev.Level == vault.LevelCritical
	}
	return p.cfg.Accepts(ev.Level)
}

func (p *githubProvider) Send(ctx context.Context, ev vault.Event) error {
	owner, repo, err := parseGitHubRepo(p.cfg.URL)
	if err != nil {
		return err
	}

	httpClient := p.client
	if p.cfg.Secret != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: p.cfg.Secret}))
	}

	client := github.NewClient(httpClient)
	if p.apiBase != "" {
		client, err = client.WithEnterpriseURLs(p.apiBase, p.apiBase)
		if err != nil {
			return errs.Wrap(err, "configure api base")
		}
	}

	req := buildGitHubIssue(ev)
	_, resp, err := client.Issues.Create(ctx, owner, repo, req)
	if err != nil {
		return errs.Wrapf(err, "create issue in %s/%s", owner, repo)
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("github api returned %d", resp.StatusCode)
	}
	return nil
}

// parseGitHubRepo normalizes the three accepted url shapes into owner and
// repo:
//
//	https://api.github.com/repos/owner/repo
//	https://github.com/owner/repo
//	owner/repo
func parseGitHubRepo(raw string) (owner, repo string, err error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(raw), "/")

	var path string
	switch {
	case strings.Contains(trimmed, "/repos/"):
		path = trimmed[strings.Index(trimmed, "/repos/")+len("/repos/"):]
	case strings.HasPrefix(trimmed, "http://"), strings.HasPrefix(trimmed, "https://"):
		idx := strings.Index(trimmed, "://")
		path = trimmed[idx+len("://"):]
		if slash := strings.Index(path, "/"); slash >= 0 {
			path = path[slash+1:]
		} else {
			path = ""
		}
	default:
		path = trimmed
	}

	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid github repository %q", raw)
	}
	return parts[0], parts[1], nil
}

func buildGitHubIssue(ev vault.Event) *github.IssueRequest {
	var b strings.Builder

	b.WriteString("## 🚨 CrashVault Event Details\n\n")
	b.WriteString("| Field | Value |\n")
	b.WriteString("|-------|-------|\n")
	fmt.Fprintf(&b, "| **Event ID** | `%s` |\n", ev.EventID)
	fmt.Fprintf(&b, "| **Issue ID** | #%d |\n", ev.IssueID)
	fmt.Fprintf(&b, "| **Level** | %s |\n", levelUpper(ev.Level))
	fmt.Fprintf(&b, "| **Timestamp** | %s |\n", orNA(ev.Timestamp))
	fmt.Fprintf(&b, "| **Host** | %s |\n", orNA(ev.Host))
	if len(ev.Tags) > 0 {
		fmt.Fprintf(&b, "| **Tags** | %s |\n", strings.Join(ev.Tags, ", "))
	}

	b.WriteString("\n### 📝 Message\n\n```\n")
	b.WriteString(ev.Message)
	b.WriteString("\n```\n")

	if ev.Stacktrace != "" {
		stack := ev.Stacktrace
		if len(stack) > githubStackLimit {
			stack = stack[:githubStackLimit] + "\n\n... (truncated, full stacktrace available in CrashVault)"
		}
		b.WriteString("\n### 🔧 Stacktrace\n\n```\n")
		b.WriteString(stack)
		b.WriteString("\n```\n")
	}

	if len(ev.Context) > 0 {
		b.WriteString("\n### 📋 Context\n\n")
		for key, value := range ev.Context {
			fmt.Fprintf(&b, "- **%s**: `%s`\n", key, value)
		}
	}

	b.WriteString("\n---\n*This issue was automatically created by CrashVault*")

	title := fmt.Sprintf("%s [%s] #%d: %s", emojiFor(ev.Level), levelUpper(ev.Level), ev.IssueID, vault.Truncate(ev.Message, 60))
	if len(ev.Message) > 60 {
		title += "..."
	}

	labels := githubLabels(ev)
	body := b.String()
	return &github.IssueRequest{
		Title:  github.Ptr(title),
		Body:   github.Ptr(body),
		Labels: &labels,
	}
}

func githubLabels(ev vault.Event) []string {
	labels, ok := githubLevelLabels[ev.Level]
	if !ok {
		labels = []string{"crashvault/unknown"}
	}
	out := append([]string(nil), labels...)

	for _, tag := range ev.Tags {
		safe := sanitizeLabel(tag)
		if safe != "" && len(safe) < 50 {
			out = append(out, "crashvault:"+safe)
		}
	}
	return out
}

// sanitizeLabel keeps only lowercase alphanumerics, hyphens, and underscores.
func sanitizeLabel(tag string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(tag) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
