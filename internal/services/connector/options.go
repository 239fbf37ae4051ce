package connector

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"wconnect/internal/domain"
	"wconnect/internal/relay"
)

// Options describe the session a Connector starts from. One of Bridge, URI
// or Session is required.
type Options struct {
	// Bridge is the relay to use for a new session.
	Bridge string
	// URI joins a session offered by a peer. A stored session is not
	// restored when URI is set.
	URI string
	// Session restores a known session instead of the stored one.
	Session *domain.Session
	// StorageID is the slot the session is persisted under.
	StorageID string

	ClientMeta *domain.ClientMeta
	// SigningMethods are extra methods that request a push notification.
	SigningMethods []string
	// Mobile enables the deep-link hook for signing calls.
	Mobile     bool
	PushServer *PushServerOptions
	// CallTimeout bounds calls whose context has no deadline. Zero waits
	// until the context is done or the session ends.
	CallTimeout time.Duration

	// Env, Host and Backoff configure the default relay socket.
	Env     string
	Host    string
	Backoff relay.BackoffConfig
}

// PushServerOptions register this client with a push server once connected.
type PushServerOptions struct {
	URL   string
	Type  string
	Token string
	// PeerMeta sends the peer's name along with the registration.
	PeerMeta bool
	Language string
}

func (p *PushServerOptions) validate() error {
	switch {
	case p.URL == "":
		return fmt.Errorf("%w: url", ErrInvalidPushServer)
	case p.Type == "":
		return fmt.Errorf("%w: type", ErrInvalidPushServer)
	case p.Token == "":
		return fmt.Errorf("%w: token", ErrInvalidPushServer)
	}
	return nil
}

// LinkOpener hands a wallet deep link to the platform.
type LinkOpener func(href string) error

// Deps are the collaborators of a Connector. Nil fields get defaults where
// one exists.
type Deps struct {
	// Crypto defaults to crypto.AESCBC.
	Crypto domain.CryptoLib
	// Sessions defaults to an in-memory store.
	Sessions  domain.SessionStore
	DeepLinks domain.DeepLinkStore
	// Transport defaults to a relay.Socket on the session bridge.
	Transport domain.Transport
	Modal     domain.Modal
	Opener    LinkOpener
	// Push defaults to a relay.PushClient when Options.PushServer is set.
	Push   domain.PushRegistrar
	Logger *zerolog.Logger
}

// CallOption adjusts how a single request is published.
type CallOption func(*sendOptions)

type sendOptions struct {
	topic     string
	forcePush bool
}

// WithTopic publishes on topic instead of the peer id.
func WithTopic(topic string) CallOption {
	return func(o *sendOptions) { o.topic = topic }
}

// WithPushNotification asks the relay to push the request to the peer.
func WithPushNotification() CallOption {
	return func(o *sendOptions) { o.forcePush = true }
}

func collect(opts []CallOption) sendOptions {
	var o sendOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
