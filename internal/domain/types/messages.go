package types

import (
	"encoding/json"
	"fmt"
)

// JSONRPCVersion is the only protocol version spoken on the wire.
const JSONRPCVersion = "2.0"

// JSONRPCRequest is a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	ID      int64           `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// JSONRPCError is the error member of a JSON-RPC response. It is also the
// error value handed to callers when a peer rejects a request.
type JSONRPCError struct {
	Code    int             `json:"code,omitempty"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *JSONRPCError) Error() string {
	if e.Code == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

// JSONRPCResponse is a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	ID      int64           `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// Message is anything dispatched on the event bus: a decrypted request or
// response from the peer, or an internal event raised locally.
type Message struct {
	ID      int64           `json:"id,omitempty"`
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
	Event   string          `json:"event,omitempty"`
}

// IsRequest reports whether m carries a method.
func (m *Message) IsRequest() bool { return m.Method != "" }

// IsResponse reports whether m carries a result or an error.
func (m *Message) IsResponse() bool { return len(m.Result) > 0 || m.Error != nil }

// IsEvent reports whether m is an internal event.
func (m *Message) IsEvent() bool { return m.Event != "" }

// DecodeParams unmarshals the params array into out.
func (m *Message) DecodeParams(out any) error {
	if len(m.Params) == 0 {
		return fmt.Errorf("message %q has no params", m.Method+m.Event)
	}
	return json.Unmarshal(m.Params, out)
}

// Request returns m as a JSON-RPC request.
func (m *Message) Request() JSONRPCRequest {
	return JSONRPCRequest{ID: m.ID, JSONRPC: m.JSONRPC, Method: m.Method, Params: m.Params}
}

// Response returns m as a JSON-RPC response.
func (m *Message) Response() JSONRPCResponse {
	return JSONRPCResponse{ID: m.ID, JSONRPC: m.JSONRPC, Result: m.Result, Error: m.Error}
}
