package domain

import (
	interfaces "wconnect/internal/domain/interfaces"
	types "wconnect/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	ClientMeta        = types.ClientMeta
	MobileLinkInfo    = types.MobileLinkInfo
	EncryptionPayload = types.EncryptionPayload
	SocketMessage     = types.SocketMessage
	Session           = types.Session
	SessionParams     = types.SessionParams
	SessionRequest    = types.SessionRequest
	SessionStatus     = types.SessionStatus
	SessionError      = types.SessionError
	JSONRPCRequest    = types.JSONRPCRequest
	JSONRPCResponse   = types.JSONRPCResponse
	JSONRPCError      = types.JSONRPCError
	Message           = types.Message
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	SessionStore      = interfaces.SessionStore
	DeepLinkStore     = interfaces.DeepLinkStore
	Transport         = interfaces.Transport
	TransportHandlers = interfaces.TransportHandlers
	PushRegistration  = interfaces.PushRegistration
	PushRegistrar     = interfaces.PushRegistrar
	CryptoLib         = interfaces.CryptoLib
	Modal             = interfaces.Modal
)

// Constants re-exported from the types subpackage.
const (
	JSONRPCVersion = types.JSONRPCVersion
	FramePub       = types.FramePub
	FrameSub       = types.FrameSub
	FrameAck       = types.FrameAck
)
