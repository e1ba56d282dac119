package vault

import (
	"crypto/sha1"
	"encoding/hex"
)

// Fingerprint derives the dedup key for a message: the first 8 hex characters
// of its SHA-1. Byte-identical messages always land on the same issue; the
// truncation keeps keys short at an accepted (tiny) collision risk.
func Fingerprint(message string) string {
	sum := sha1.Sum([]byte(message))
	return hex.EncodeToString(sum[:])[:8]
}
