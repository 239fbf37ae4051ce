package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"wconnect/internal/util/memzero"
)

// sealedFormatVersion is the newest sealed record format this package reads.
const sealedFormatVersion = 1

// ErrWrongPassphrase is returned when a sealed record cannot be opened.
var ErrWrongPassphrase = errors.New("store: wrong passphrase or corrupted session record")

// sealed is the on-disk form of a passphrase protected record.
type sealed struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// scryptParams are the key derivation costs for new records.
type scryptParams struct{ N, R, P int }

func defaultScryptParams() scryptParams { return scryptParams{N: 1 << 15, R: 8, P: 1} }

// seal encrypts raw under a key derived from passphrase. The storage key is
// bound as associated data so records cannot be swapped between slots.
func seal(passphrase, slot string, raw []byte, p scryptParams) (json.RawMessage, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt, p.N, p.R, p.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ct := aead.Seal(nonce, nonce, raw, []byte(slot))

	return json.Marshal(sealed{V: sealedFormatVersion, Salt: salt, N: p.N, R: p.R, P: p.P, Cipher: ct})
}

// open reverses seal.
func open(passphrase, slot string, b json.RawMessage) ([]byte, error) {
	var s sealed
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("store: decode sealed record: %w", err)
	}
	if s.V > sealedFormatVersion {
		return nil, fmt.Errorf("store: unsupported sealed record version %d", s.V)
	}
	key, err := scrypt.Key([]byte(passphrase), s.Salt, s.N, s.R, s.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(s.Cipher) < aead.NonceSize() {
		return nil, ErrWrongPassphrase
	}
	nonce, ct := s.Cipher[:aead.NonceSize()], s.Cipher[aead.NonceSize():]
	pt, err := aead.Open(nil, nonce, ct, []byte(slot))
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}
