// Package relay connects clients to a WalletConnect bridge and implements
// the bridge itself.
//
// Client side:
//   - Socket: the domain.Transport over a WebSocket. It reconnects with
//     exponential backoff until closed, replays subscriptions on every new
//     connection, queues sends while offline and acknowledges every frame.
//   - ProbeMonitor: a scheduled reachability probe that tells a Socket when
//     the network is back.
//   - PushClient: registration with a push notification server.
//   - ResolveBridge: shard selection for the public bridge.
//
// Server side:
//   - Server: a gin router that upgrades "/" to a WebSocket and routes pub
//     frames to sub'd peers, holding frames for topics with no listener.
//     It also serves /hello, /info, /health and /metrics.
//
// Frames are JSON: {topic, type: "pub"|"sub"|"ack", payload, silent}.
package relay
