package webhook

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"crashvault/internal/domain/vault"
)

type memStore struct {
	hooks []vault.Webhook
	err   error
}

func (m *memStore) LoadAll(context.Context) ([]vault.Webhook, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]vault.Webhook(nil), m.hooks...), nil
}

func (m *memStore) SaveAll(_ context.Context, hooks []vault.Webhook) error {
	if m.err != nil {
		return m.err
	}
	m.hooks = append([]vault.Webhook(nil), hooks...)
	return nil
}

type fakeProvider struct {
	cfg  vault.Webhook
	sent *[]vault.Event
	fail bool
}

func (f *fakeProvider) ShouldSend(ev vault.Event) bool {
	return f.cfg.Enabled && f.cfg.Accepts(ev.Level)
}

func (f *fakeProvider) Send(_ context.Context, ev vault.Event) error {
	if f.fail {
		return errors.New("delivery refused")
	}
	*f.sent = append(*f.sent, ev)
	return nil
}

func newFakeRegistry(sent *[]vault.Event, fail bool) *Registry {
	r := NewRegistry()
	r.Register("fake", func(cfg vault.Webhook, _ *http.Client) Provider {
		return &fakeProvider{cfg: cfg, sent: sent, fail: fail}
	})
	return r
}

func TestDispatchHonorsLevelFilter(t *testing.T) {
	var sent []vault.Event
	store := &memStore{hooks: []vault.Webhook{{
		ID:      "wh1",
		Type:    "fake",
		Enabled: true,
		Events:  []string{"error", "critical"},
	}}}
	d := NewDispatcher(store, newFakeRegistry(&sent, false), time.Second)
	ctx := context.Background()

	d.Dispatch(ctx, vault.Event{EventID: "a", Level: vault.LevelWarning})
	if len(sent) != 0 {
		t.Fatalf("warning event delivered despite error/critical filter")
	}

	d.Dispatch(ctx, vault.Event{EventID: "b", Level: vault.LevelError})
	if len(sent) != 1 || sent[0].EventID != "b" {
		t.Fatalf("error event not delivered: %v", sent)
	}
}

func TestDispatchSkipsDisabledHooks(t *testing.T) {
	var sent []vault.Event
	store := &memStore{hooks: []vault.Webhook{{ID: "wh1", Type: "fake", Enabled: false}}}
	d := NewDispatcher(store, newFakeRegistry(&sent, false), time.Second)

	d.Dispatch(context.Background(), vault.Event{EventID: "a", Level: vault.LevelError})
	if len(sent) != 0 {
		t.Fatal("disabled hook received an event")
	}
}

func TestDispatchIsolatesFailures(t *testing.T) {
	var sent []vault.Event
	r := newFakeRegistry(&sent, false)
	r.Register("failing", func(cfg vault.Webhook, _ *http.Client) Provider {
		return &fakeProvider{cfg: cfg, sent: &sent, fail: true}
	})
	store := &memStore{hooks: []vault.Webhook{
		{ID: "wh1", Type: "failing", Enabled: true},
		{ID: "wh2", Type: "fake", Enabled: true},
	}}
	d := NewDispatcher(store, r, time.Second)

	// The failing provider must not prevent delivery to the next one.
	d.Dispatch(context.Background(), vault.Event{EventID: "a", Level: vault.LevelError})
	if len(sent) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(sent))
	}
}

func TestDispatchIgnoresUnknownTypes(t *testing.T) {
	var sent []vault.Event
	store := &memStore{hooks: []vault.Webhook{
		{ID: "wh1", Type: "pager", Enabled: true},
		{ID: "wh2", Type: "fake", Enabled: true},
	}}
	d := NewDispatcher(store, newFakeRegistry(&sent, false), time.Second)

	d.Dispatch(context.Background(), vault.Event{EventID: "a", Level: vault.LevelError})
	if len(sent) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(sent))
	}
}

func TestAddValidatesTypeAndLevels(t *testing.T) {
	d := NewDispatcher(&memStore{}, NewRegistry(), time.Second)
	ctx := context.Background()

	if _, err := d.Add(ctx, AddInput{Type: "pager", URL: "https://x"}); !errors.Is(err, vault.ErrInvalidProviderType) {
		t.Fatalf("Add() error = %v, want ErrInvalidProviderType", err)
	}
	if _, err := d.Add(ctx, AddInput{Type: "slack", URL: "https://x", Events: []string{"fatal"}}); !errors.Is(err, vault.ErrInvalidLevel) {
		t.Fatalf("Add() error = %v, want ErrInvalidLevel", err)
	}
	if _, err := d.Add(ctx, AddInput{Type: "slack"}); err == nil {
		t.Fatal("Add() accepted an empty url")
	}

	hook, err := d.Add(ctx, AddInput{Type: "slack", URL: "https://hooks.example/x", Events: []string{"error"}})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if !hook.Enabled {
		t.Fatal("new hooks should start enabled")
	}
	if len(hook.ID) != 8 {
		t.Fatalf("hook id = %q, want 8 chars", hook.ID)
	}
}

func TestRemoveAndToggle(t *testing.T) {
	store := &memStore{}
	d := NewDispatcher(store, NewRegistry(), time.Second)
	ctx := context.Background()

	hook, err := d.Add(ctx, AddInput{Type: "http", URL: "https://x"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	found, err := d.Toggle(ctx, hook.ID, false)
	if err != nil || !found {
		t.Fatalf("Toggle() = %t, %v", found, err)
	}
	got, err := d.Get(ctx, hook.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Enabled {
		t.Fatal("Toggle(false) did not persist")
	}

	removed, err := d.Remove(ctx, hook.ID)
	if err != nil || !removed {
		t.Fatalf("Remove() = %t, %v", removed, err)
	}
	if _, err := d.Get(ctx, hook.ID); !errors.Is(err, vault.ErrWebhookNotFound) {
		t.Fatalf("Get() after remove error = %v", err)
	}
	if removed, _ := d.Remove(ctx, hook.ID); removed {
		t.Fatal("second Remove() reported success")
	}
}

func TestTestSendsSampleBypassingFilter(t *testing.T) {
	var sent []vault.Event
	store := &memStore{hooks: []vault.Webhook{{
		ID:      "wh1",
		Type:    "fake",
		Enabled: true,
		Events:  []string{"critical"}, // would exclude the error-level sample
	}}}
	d := NewDispatcher(store, newFakeRegistry(&sent, false), time.Second)

	ok, err := d.Test(context.Background(), "wh1")
	if err != nil {
		t.Fatalf("Test() error = %v", err)
	}
	if !ok {
		t.Fatal("Test() = false")
	}
	if len(sent) != 1 || sent[0].Message != "Test webhook from CrashVault" {
		t.Fatalf("sample = %v", sent)
	}

	failedOK, err := d.Test(context.Background(), "missing")
	if !errors.Is(err, vault.ErrWebhookNotFound) {
		t.Fatalf("Test(missing) = %t, %v", failedOK, err)
	}
}
