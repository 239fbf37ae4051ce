package crypto_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wconnect/internal/crypto"
	"wconnect/internal/domain"
)

func mustKey(t *testing.T) []byte {
	t.Helper()
	k, err := crypto.GenerateKey(0)
	require.NoError(t, err)
	require.Len(t, k, 32)
	return k
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := mustKey(t)
	payloads := []string{
		`{}`,
		`{"id":1,"jsonrpc":"2.0","method":"eth_sign","params":["0xabc","0xdead"]}`,
		`{"a":"12345678"}`,
		`[1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17,18,19,20]`,
	}
	for _, p := range payloads {
		env, err := crypto.Encrypt([]byte(p), key)
		require.NoError(t, err)

		got, ok, err := crypto.Decrypt(env, key)
		require.NoError(t, err)
		require.True(t, ok, "payload %q", p)
		assert.Equal(t, p, string(got))
	}
}

func TestDecryptWithOtherKeyYieldsNoResult(t *testing.T) {
	k1, k2 := mustKey(t), mustKey(t)
	env, err := crypto.Encrypt([]byte(`{"hello":"world"}`), k1)
	require.NoError(t, err)

	got, ok, err := crypto.Decrypt(env, k2)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestEncryptNeverReusesIV(t *testing.T) {
	key := mustKey(t)
	p := []byte(`{"same":"payload"}`)
	a, err := crypto.Encrypt(p, key)
	require.NoError(t, err)
	b, err := crypto.Encrypt(p, key)
	require.NoError(t, err)

	assert.NotEqual(t, a.IV, b.IV)
	assert.NotEqual(t, a.Data, b.Data)
	assert.NotEqual(t, a.HMAC, b.HMAC)
	assert.Len(t, a.IV, 32)
	assert.Len(t, a.HMAC, 64)
}

func TestDecryptRejectsTampering(t *testing.T) {
	key := mustKey(t)
	env, err := crypto.Encrypt([]byte(`{"n":1}`), key)
	require.NoError(t, err)

	data, err := hex.DecodeString(env.Data)
	require.NoError(t, err)
	data[0] ^= 0xff
	tampered := env
	tampered.Data = hex.EncodeToString(data)

	_, ok, err := crypto.Decrypt(tampered, key)
	assert.NoError(t, err)
	assert.False(t, ok)

	swapped := env
	swapped.IV = hex.EncodeToString(make([]byte, 16))
	_, ok, err = crypto.Decrypt(swapped, key)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestDecryptMissingKey(t *testing.T) {
	_, _, err := crypto.Decrypt(domain.EncryptionPayload{Data: "00", HMAC: "00", IV: "00"}, nil)
	assert.ErrorIs(t, err, crypto.ErrMissingKey)

	_, err = crypto.Encrypt([]byte(`{}`), nil)
	assert.ErrorIs(t, err, crypto.ErrMissingKey)
}

func TestDecryptMalformedHex(t *testing.T) {
	_, _, err := crypto.Decrypt(domain.EncryptionPayload{Data: "zz", HMAC: "00", IV: "00"}, mustKey(t))
	assert.Error(t, err)
}

func TestEncryptWithIVIsDeterministic(t *testing.T) {
	key := mustKey(t)
	iv, err := crypto.GenerateKey(crypto.IVBits)
	require.NoError(t, err)

	a, err := crypto.EncryptWithIV([]byte(`{"x":1}`), key, iv)
	require.NoError(t, err)
	b, err := crypto.EncryptWithIV([]byte(`{"x":1}`), key, iv)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = crypto.EncryptWithIV([]byte(`{}`), key, iv[:8])
	assert.Error(t, err)
}

func TestAESCBCImplementsCryptoLib(t *testing.T) {
	var lib domain.CryptoLib = crypto.AESCBC{}
	key, err := lib.GenerateKey(256)
	require.NoError(t, err)

	env, err := lib.Encrypt([]byte(`["a"]`), key)
	require.NoError(t, err)
	pt, ok, err := lib.Decrypt(env, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `["a"]`, string(pt))
}

func TestGenerateKeySizes(t *testing.T) {
	k, err := crypto.GenerateKey(128)
	require.NoError(t, err)
	assert.Len(t, k, 16)

	_, err = crypto.GenerateKey(100)
	assert.Error(t, err)
}

func TestFingerprintAndWipe(t *testing.T) {
	key := mustKey(t)
	fp := crypto.Fingerprint(key)
	assert.Len(t, fp, 12)
	assert.Equal(t, fp, crypto.Fingerprint(key))
	assert.Empty(t, crypto.Fingerprint(nil))

	crypto.Wipe(key)
	assert.Equal(t, make([]byte, 32), key)
}

func TestDecryptNonJSONPlaintextYieldsNoResult(t *testing.T) {
	key := mustKey(t)
	env, err := crypto.Encrypt([]byte("not json"), key)
	require.NoError(t, err)

	_, ok, err := crypto.Decrypt(env, key)
	assert.NoError(t, err)
	assert.False(t, ok)
}
