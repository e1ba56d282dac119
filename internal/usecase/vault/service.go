package vault

import (
	"os"
	"time"

	"crashvault/internal/ports"
)

// Service carries every operator workflow over the vault's stores. All state
// flows through the injected ports; nothing here touches the environment
// after construction.
type Service struct {
	issues   ports.IssueStore
	events   ports.EventStore
	config   ports.ConfigStore
	notifier ports.Notifier

	now  func() time.Time
	host string
	pid  int
}

func NewService(issues ports.IssueStore, events ports.EventStore, config ports.ConfigStore, notifier ports.Notifier) *Service {
	host, _ := os.Hostname()
	return &Service{
		issues:   issues,
		events:   events,
		config:   config,
		notifier: notifier,
		now:      time.Now,
		host:     host,
		pid:      os.Getpid(),
	}
}
