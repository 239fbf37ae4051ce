// Package connector runs one peer session over a relay.
//
// A Connector owns the session record, the symmetric key and the event bus.
// It drives the handshake from either side (initiator via CreateSession,
// responder via ApproveSession/RejectSession), correlates JSON-RPC calls with
// their responses, persists connected sessions and tears everything down on
// disconnect.
package connector
