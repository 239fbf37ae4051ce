package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"wconnect/internal/domain"
)

var (
	// ErrMissingKey is returned when no key is available for a payload.
	ErrMissingKey = errors.New("missing key: required for decryption")
	// ErrBadPadding means the decrypted block does not end in valid PKCS#7 padding.
	ErrBadPadding = errors.New("crypto: invalid padding")
)

// AESCBC is the relay payload cipher: AES-CBC with PKCS#7 padding,
// authenticated by HMAC-SHA256 over ciphertext||iv under the same key.
type AESCBC struct{}

// Compile-time assertion that AESCBC implements domain.CryptoLib.
var _ domain.CryptoLib = AESCBC{}

func (AESCBC) GenerateKey(bits int) ([]byte, error) { return GenerateKey(bits) }

func (AESCBC) Encrypt(plaintext, key []byte) (domain.EncryptionPayload, error) {
	return Encrypt(plaintext, key)
}

func (AESCBC) Decrypt(payload domain.EncryptionPayload, key []byte) ([]byte, bool, error) {
	return Decrypt(payload, key)
}

// Encrypt seals plaintext under key with a fresh random IV.
func Encrypt(plaintext, key []byte) (domain.EncryptionPayload, error) {
	iv, err := GenerateKey(IVBits)
	if err != nil {
		return domain.EncryptionPayload{}, err
	}
	return EncryptWithIV(plaintext, key, iv)
}

// EncryptWithIV seals plaintext under key using iv. Callers must never
// reuse an iv with the same key.
func EncryptWithIV(plaintext, key, iv []byte) (domain.EncryptionPayload, error) {
	if len(key) == 0 {
		return domain.EncryptionPayload{}, ErrMissingKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return domain.EncryptionPayload{}, fmt.Errorf("crypto: %w", err)
	}
	if len(iv) != block.BlockSize() {
		return domain.EncryptionPayload{}, fmt.Errorf("crypto: iv must be %d bytes", block.BlockSize())
	}

	padded := pad(plaintext, block.BlockSize())
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	return domain.EncryptionPayload{
		Data: hex.EncodeToString(ct),
		HMAC: hex.EncodeToString(tag(key, ct, iv)),
		IV:   hex.EncodeToString(iv),
	}, nil
}

// Decrypt opens payload under key.
//
// The tag is checked before any cipher work. A tag mismatch, or plaintext
// that is not JSON, yields ok == false with a nil error: the relay is shared
// and payloads sealed under other keys are expected.
func Decrypt(payload domain.EncryptionPayload, key []byte) ([]byte, bool, error) {
	if len(key) == 0 {
		return nil, false, ErrMissingKey
	}
	ct, err := hex.DecodeString(payload.Data)
	if err != nil {
		return nil, false, fmt.Errorf("crypto: decode data: %w", err)
	}
	iv, err := hex.DecodeString(payload.IV)
	if err != nil {
		return nil, false, fmt.Errorf("crypto: decode iv: %w", err)
	}
	got, err := hex.DecodeString(payload.HMAC)
	if err != nil {
		return nil, false, fmt.Errorf("crypto: decode hmac: %w", err)
	}

	if !hmac.Equal(tag(key, ct, iv), got) {
		return nil, false, nil
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, false, fmt.Errorf("crypto: %w", err)
	}
	if len(iv) != block.BlockSize() || len(ct) == 0 || len(ct)%block.BlockSize() != 0 {
		return nil, false, nil
	}
	pt := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(pt, ct)

	pt, err = unpad(pt, block.BlockSize())
	if err != nil {
		return nil, false, err
	}
	if !json.Valid(pt) {
		return nil, false, nil
	}
	return pt, true, nil
}

func tag(key, ct, iv []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(ct)
	mac.Write(iv)
	return mac.Sum(nil)
}

func pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(append(make([]byte, 0, len(b)+n), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, size int) ([]byte, error) {
	if len(b) == 0 || len(b)%size != 0 {
		return nil, ErrBadPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > size || n > len(b) {
		return nil, ErrBadPadding
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, ErrBadPadding
		}
	}
	return b[:len(b)-n], nil
}
