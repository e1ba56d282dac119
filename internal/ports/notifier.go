package ports

import (
	"context"

	"crashvault/internal/domain/vault"
)

// Notifier fans a freshly ingested event out to configured integrations.
// Dispatch never returns an error: delivery failures are logged and isolated
// so notification can never fail ingestion.
type Notifier interface {
	Dispatch(ctx context.Context, ev vault.Event)
}
