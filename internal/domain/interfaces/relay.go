package interfaces

import (
	"context"

	domaintypes "wconnect/internal/domain/types"
)

// TransportHandlers receive transport events. Nil handlers are skipped.
type TransportHandlers struct {
	OnMessage func(msg domaintypes.SocketMessage)
	OnOpen    func()
	OnClose   func()
	OnError   func(err error)
}

// Transport is one logical connection to a relay. It reconnects on its own
// until Close is called.
type Transport interface {
	SetHandlers(h TransportHandlers)
	Open()
	Close() error
	Connected() bool
	// Send publishes payload on topic, queueing it while no connection is open.
	Send(payload, topic string, silent bool) error
	// Subscribe asks the relay for topic now and after every reconnect.
	Subscribe(topic string)
	// Unsubscribe stops replaying topic on reconnect. The relay protocol has
	// no unsubscribe frame, so the current connection keeps receiving it.
	Unsubscribe(topic string)
}

// PushRegistration announces a client to a push notification server.
type PushRegistration struct {
	Bridge   string `json:"bridge"`
	Topic    string `json:"topic"`
	Type     string `json:"type"`
	Token    string `json:"token"`
	PeerName string `json:"peerName"`
	Language string `json:"language"`
}

// PushRegistrar registers clients with a push notification server.
type PushRegistrar interface {
	Register(ctx context.Context, reg PushRegistration) error
}
