// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (wire/state) and contracts (interfaces) only.
//
// The types subpackage holds the session record, peer metadata, JSON-RPC
// messages, relay frames and the encrypted envelope. The interfaces
// subpackage holds the collaborators the connector depends on: storage,
// relay transport, crypto engine, push registration and the URI modal.
package domain
