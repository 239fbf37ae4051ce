package interfaces

import domaintypes "wconnect/internal/domain/types"

// CryptoLib seals and opens relay payloads. Implementations hold no key
// state; the key is passed on every call.
type CryptoLib interface {
	GenerateKey(bits int) ([]byte, error)
	Encrypt(plaintext, key []byte) (domaintypes.EncryptionPayload, error)
	// Decrypt reports ok == false when the payload fails authentication or
	// does not hold JSON.
	Decrypt(payload domaintypes.EncryptionPayload, key []byte) (plaintext []byte, ok bool, err error)
}
