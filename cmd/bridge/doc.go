// Package main runs the WalletConnect v1 bridge: a WebSocket pub/sub relay
// that forwards encrypted frames between a dapp and a wallet.
//
// HTTP API
//
//	GET /            WebSocket upgrade, or a plain greeting
//	GET /hello       Greeting
//	GET /info        Server name, description and version
//	GET /health      Status and uptime
//	GET /metrics     Prometheus metrics
//
// WebSocket frames are JSON {topic, type, payload, silent}. A "sub" frame
// subscribes the connection to topic and delivers anything held for it; a
// "pub" frame is forwarded to every other subscriber of topic, or held
// until one appears or the queue TTL passes. Each delivered frame is
// acknowledged by the client with an "ack".
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - The server never sees plaintext: payloads are encrypted end to end.
//   - The default listen address is :8080.
package main
