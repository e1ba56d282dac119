package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"crashvault/internal/domain/vault"
	"crashvault/internal/errs"
)

// httpProvider POSTs the raw event JSON to an arbitrary endpoint. When a
// secret is configured the body is signed with HMAC-SHA256 so the receiver can
// authenticate the sender.
type httpProvider struct {
	base
	client *http.Client
}

func newHTTPProvider(cfg vault.Webhook, client *http.Client) Provider {
	return &httpProvider{base: base{cfg: cfg}, client: client}
}

func (p *httpProvider) Send(ctx context.Context, ev vault.Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return errs.Wrap(err, "marshal event")
	}

	headers := map[string]string{}
	if p.cfg.Secret != "" {
		mac := hmac.New(sha256.New, []byte(p.cfg.Secret))
		mac.Write(body)
		headers["X-CrashVault-Signature"] = "sha256=" + hex.EncodeToString(mac.Sum(nil))
	}

	return postRaw(ctx, p.client, p.cfg.URL, headers, body)
}

// postJSON marshals and delivers a payload, treating any non-2xx response as a
// failure.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errs.Wrap(err, "marshal payload")
	}
	return postRaw(ctx, client, url, headers, body)
}

func postRaw(ctx context.Context, client *http.Client, url string, headers map[string]string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errs.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "CrashVault/1.0")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return errs.Wrap(err, "post webhook")
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
	}
	return nil
}
