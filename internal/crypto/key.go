package crypto

import (
	"crypto/rand"
	"fmt"
)

const (
	// DefaultKeyBits is the session key size: AES-256.
	DefaultKeyBits = 256
	// IVBits is the CBC initialisation vector size.
	IVBits = 128
)

// GenerateKey returns bits random bits. Zero or negative bits selects
// DefaultKeyBits.
func GenerateKey(bits int) ([]byte, error) {
	if bits <= 0 {
		bits = DefaultKeyBits
	}
	if bits%8 != 0 {
		return nil, fmt.Errorf("crypto: key size %d is not a whole number of bytes", bits)
	}
	b := make([]byte, bits/8)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("crypto: read random: %w", err)
	}
	return b, nil
}
