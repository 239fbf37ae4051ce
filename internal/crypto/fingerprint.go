package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a short hex fingerprint of key material.
//
// It hashes with SHA-256 and truncates to 6 bytes (12 hex chars), enough to
// correlate log lines without exposing the key.
func Fingerprint(key []byte) string {
	if len(key) == 0 {
		return ""
	}
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:6])
}
