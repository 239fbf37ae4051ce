package events

import (
	"strconv"
	"strings"
)

// Events raised by the connector.
const (
	Connect         = "connect"
	Disconnect      = "disconnect"
	SessionRequest  = "session_request"
	SessionUpdate   = "session_update"
	ExchangeKey     = "exchange_key"
	DisplayURI      = "display_uri"
	ModalClosed     = "modal_closed"
	TransportOpen   = "transport_open"
	TransportClose  = "transport_close"
	TransportError  = "transport_error"
	CallRequest     = "call_request"
	CallRequestSent = "call_request_sent"
	Error           = "error"
)

// reserved events never fall back to call_request subscribers.
var reserved = map[string]struct{}{
	SessionRequest: {},
	SessionUpdate:  {},
	ExchangeKey:    {},
	Connect:        {},
	Disconnect:     {},
	DisplayURI:     {},
	ModalClosed:    {},
	TransportOpen:  {},
	TransportClose: {},
	TransportError: {},
}

const responsePrefix = "response:"

// Response returns the dispatch key for responses to request id.
func Response(id int64) string {
	return responsePrefix + strconv.FormatInt(id, 10)
}

// IsReserved reports whether name is a protocol event or a wc_ method.
func IsReserved(name string) bool {
	if _, ok := reserved[name]; ok {
		return true
	}
	return strings.HasPrefix(name, "wc_")
}
