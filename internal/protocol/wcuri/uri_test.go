package wcuri_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wconnect/internal/domain"
	"wconnect/internal/protocol/wcuri"
)

func TestFormatParseRoundTrip(t *testing.T) {
	s := domain.Session{
		HandshakeTopic: "4a5e9a4c-1a7d-4f0b-9d1e-2f6d0c1b8e77",
		Bridge:         "https://bridge.example.org:8443/path?x=1",
		Key:            "00112233445566778899aabbccddeeff00112233445566778899aabbccddeeff",
	}
	raw := wcuri.FromSession(s).String()
	assert.Regexp(t, `^wc:[0-9a-f-]+@1\?bridge=[^&]+&key=[0-9a-f]{64}$`, raw)

	u, err := wcuri.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "wc", u.Protocol)
	assert.Equal(t, 1, u.Version)
	assert.Equal(t, s.HandshakeTopic, u.HandshakeTopic)
	assert.Equal(t, s.Bridge, u.Bridge)
	assert.Equal(t, s.Key, u.Key)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]error{
		"http:abc@1?bridge=x&key=y":            wcuri.ErrInvalidURI,
		"no-scheme":                            wcuri.ErrInvalidURI,
		"wc:abc@one?bridge=x&key=y":            wcuri.ErrInvalidURI,
		"wc:@1?bridge=https%3A%2F%2Fb&key=00":  wcuri.ErrMissingHandshakeTopic,
		"wc:abc@1?key=00":                      wcuri.ErrMissingBridge,
		"wc:abc@1?bridge=https%3A%2F%2Fb":      wcuri.ErrMissingKey,
		"wc:abc@1":                             wcuri.ErrMissingBridge,
		"wc:abc@1?bridge=https%3A%2F%2Fb&key=": wcuri.ErrMissingKey,
	}
	for raw, want := range cases {
		_, err := wcuri.Parse(raw)
		assert.ErrorIs(t, err, want, raw)
	}
}
