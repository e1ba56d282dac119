package vault

import (
	"fmt"
	"strings"
)

// The closed set of outbound provider types.
const (
	ProviderSlack   = "slack"
	ProviderDiscord = "discord"
	ProviderTeams   = "teams"
	ProviderHTTP    = "http"
	ProviderGitHub  = "github"
)

var providerTypes = map[string]struct{}{
	ProviderSlack:   {},
	ProviderDiscord: {},
	ProviderTeams:   {},
	ProviderHTTP:    {},
	ProviderGitHub:  {},
}

func ParseProviderType(raw string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := providerTypes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidProviderType, raw)
	}
	return t, nil
}

// Webhook is one persisted outbound integration.
type Webhook struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	URL     string   `json:"url"`
	Name    string   `json:"name,omitempty"`
	Secret  string   `json:"secret,omitempty"`
	Events  []string `json:"events,omitempty"`
	Enabled bool     `json:"enabled"`
}

// Accepts reports whether the event level passes the config's allow-list.
// An empty list means every level.
func (w Webhook) Accepts(level Level) bool {
	if len(w.Events) == 0 {
		return true
	}
	for _, e := range w.Events {
		if strings.EqualFold(e, string(level)) {
			return true
		}
	}
	return false
}
