package vault

import "errors"

var (
	ErrIssueNotFound   = errors.New("issue not found")
	ErrEventNotFound   = errors.New("event not found")
	ErrWebhookNotFound = errors.New("webhook not found")

	// ErrCorruptVault marks an unparseable issues document. Event files that
	// fail to parse are skipped during scans instead.
	ErrCorruptVault = errors.New("corrupt vault: issues file is not valid JSON")

	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidSeverity     = errors.New("invalid severity")
	ErrInvalidLevel        = errors.New("invalid level")
	ErrInvalidProviderType = errors.New("invalid webhook type")
)
