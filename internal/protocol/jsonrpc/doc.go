// Package jsonrpc formats and validates the JSON-RPC 2.0 messages carried
// inside encrypted payloads, and holds the method lists that decide which
// calls trigger push notifications.
package jsonrpc
