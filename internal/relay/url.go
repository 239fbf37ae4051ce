package relay

import (
	"fmt"
	"math/rand"
	"net/url"
	"strconv"
	"strings"
)

const (
	// Protocol and Version are announced to the relay on every connection.
	Protocol = "wc"
	Version  = 1

	bridgeDomain = "walletconnect.org"
	shardAlpha   = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// socketURL turns a bridge address into the WebSocket URL to dial, with the
// protocol, version and environment descriptor appended to the query.
func socketURL(bridge, env, host string) (string, error) {
	u, err := url.Parse(bridge)
	if err != nil {
		return "", fmt.Errorf("relay: bridge url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("relay: unsupported bridge scheme %q", u.Scheme)
	}

	q := u.Query()
	q.Set("protocol", Protocol)
	q.Set("version", strconv.Itoa(Version))
	if env != "" {
		q.Set("env", env)
	}
	if host != "" {
		q.Set("host", host)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ResolveBridge spreads clients of the public walletconnect.org bridge over
// its shards. Shard URLs and other bridges are returned unchanged.
func ResolveBridge(bridge string, rng *rand.Rand) string {
	u, err := url.Parse(bridge)
	if err != nil {
		return bridge
	}
	h := u.Hostname()
	if h != bridgeDomain && !strings.HasSuffix(h, "."+bridgeDomain) {
		return bridge
	}
	if shard, ok := strings.CutSuffix(h, ".bridge."+bridgeDomain); ok && len(shard) == 1 {
		return bridge
	}
	var n int
	if rng != nil {
		n = rng.Intn(len(shardAlpha))
	} else {
		n = rand.Intn(len(shardAlpha))
	}
	return "https://" + string(shardAlpha[n]) + ".bridge." + bridgeDomain
}
