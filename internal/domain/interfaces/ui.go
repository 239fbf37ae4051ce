package interfaces

// Modal presents a connection URI to the user, typically as a QR code.
type Modal interface {
	// Open shows uri. onClose must be called if the user dismisses it.
	Open(uri string, onClose func())
	Close()
}
