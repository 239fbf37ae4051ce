package connector

import "errors"

var (
	ErrSessionConnected    = errors.New("session currently connected")
	ErrSessionDisconnected = errors.New("session currently disconnected")
	ErrMissingParams       = errors.New("missing one of the required parameters: bridge / uri / session")
	ErrModalMissing        = errors.New("QRCode Modal not provided")
	ErrModalClosed         = errors.New("User close QRCode Modal")
	ErrInvalidPushServer   = errors.New("invalid or missing push server parameter value")
	// ErrNoSessionRequest is returned when a handshake answer has no request
	// to answer.
	ErrNoSessionRequest = errors.New("no pending session request")
	// ErrSessionRejected wraps the peer's reason when a handshake fails.
	ErrSessionRejected = errors.New("session rejected")
	// ErrMissingFrom is returned for transactions without a sender.
	ErrMissingFrom = errors.New("transaction object must include from parameter")
)

// Disconnect reasons carried by the disconnect event.
const (
	reasonRejected     = "Session Rejected"
	reasonKilled       = "Session Disconnected"
	reasonPeerUpdate   = "Session disconnected"
	reasonInstantDone  = "Instant request completed"
	reasonHandshakeErr = "Session update rejected"
)
