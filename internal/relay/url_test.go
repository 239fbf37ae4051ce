package relay

import (
	"math/rand"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketURL(t *testing.T) {
	raw, err := socketURL("https://bridge.example.org", "go", "dapp.example")
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "wss", u.Scheme)
	assert.Equal(t, "bridge.example.org", u.Host)
	assert.Equal(t, "wc", u.Query().Get("protocol"))
	assert.Equal(t, "1", u.Query().Get("version"))
	assert.Equal(t, "go", u.Query().Get("env"))
	assert.Equal(t, "dapp.example", u.Query().Get("host"))

	raw, err = socketURL("http://127.0.0.1:5001/", "", "")
	require.NoError(t, err)
	assert.Contains(t, raw, "ws://127.0.0.1:5001/?")
	assert.NotContains(t, raw, "env=")

	_, err = socketURL("ftp://nope", "", "")
	assert.Error(t, err)
}

func TestResolveBridge(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	got := ResolveBridge("https://bridge.walletconnect.org", rng)
	assert.Regexp(t, `^https://[a-z0-9]\.bridge\.walletconnect\.org$`, got)
	assert.Equal(t, got, ResolveBridge(got, rng))

	assert.Equal(t, "https://relay.example", ResolveBridge("https://relay.example", rng))
	assert.Equal(t, "https://notwalletconnect.org", ResolveBridge("https://notwalletconnect.org", rng))
}

func TestBridgeAddr(t *testing.T) {
	assert.Equal(t, "relay.example:443", bridgeAddr("https://relay.example"))
	assert.Equal(t, "relay.example:80", bridgeAddr("http://relay.example"))
	assert.Equal(t, "127.0.0.1:5001", bridgeAddr("http://127.0.0.1:5001"))
}
