package wcuri

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"wconnect/internal/domain"
)

const (
	// Protocol is the URI scheme.
	Protocol = "wc"
	// Version is the protocol version written into new URIs.
	Version = 1
)

var (
	ErrInvalidURI            = errors.New("URI format is invalid")
	ErrMissingHandshakeTopic = errors.New("invalid or missing handshakeTopic parameter value")
	ErrMissingBridge         = errors.New("invalid or missing bridge url parameter value")
	ErrMissingKey            = errors.New("invalid or missing key parameter value")
)

// URI is a parsed connection URI.
type URI struct {
	Protocol       string
	HandshakeTopic string
	Version        int
	Bridge         string
	// Key is the hex encoded session key.
	Key string
}

// String formats u as wc:<topic>@<version>?bridge=<escaped>&key=<hex>.
func (u URI) String() string {
	protocol := u.Protocol
	if protocol == "" {
		protocol = Protocol
	}
	version := u.Version
	if version == 0 {
		version = Version
	}
	return fmt.Sprintf("%s:%s@%d?bridge=%s&key=%s",
		protocol, u.HandshakeTopic, version, url.QueryEscape(u.Bridge), u.Key)
}

// FromSession derives the URI a peer needs to join the pending handshake.
func FromSession(s domain.Session) URI {
	return URI{
		Protocol:       Protocol,
		HandshakeTopic: s.HandshakeTopic,
		Version:        Version,
		Bridge:         s.Bridge,
		Key:            s.Key,
	}
}

// Parse reads a connection URI.
func Parse(raw string) (URI, error) {
	raw = strings.TrimSpace(raw)
	scheme, rest, ok := strings.Cut(raw, ":")
	if !ok || scheme != Protocol {
		return URI{}, ErrInvalidURI
	}

	path, query, _ := strings.Cut(rest, "?")
	topic, version, _ := strings.Cut(path, "@")

	u := URI{Protocol: scheme, HandshakeTopic: topic}
	if version != "" {
		v, err := strconv.Atoi(version)
		if err != nil {
			return URI{}, fmt.Errorf("%w: version %q", ErrInvalidURI, version)
		}
		u.Version = v
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return URI{}, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	u.Bridge = values.Get("bridge")
	u.Key = values.Get("key")

	switch {
	case u.HandshakeTopic == "":
		return URI{}, ErrMissingHandshakeTopic
	case u.Bridge == "":
		return URI{}, ErrMissingBridge
	case u.Key == "":
		return URI{}, ErrMissingKey
	}
	return u, nil
}
