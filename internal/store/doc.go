// Package store provides persistence for connector sessions.
//
// It contains concrete implementations of the domain storage interfaces,
// serialising data as JSON on disk. All methods are concurrency-safe via
// internal locking. Stored files typically live under the user's configured
// home directory and are written atomically with mode 0600.
//
// The package includes stores for:
//   - Session records keyed by storage key (SessionFileStore), optionally
//     sealed with a passphrase (scrypt + XChaCha20-Poly1305)
//   - The mobile deep-link choice (DeepLinkFileStore)
//   - In-memory variants of both for tests and throwaway runs
package store
