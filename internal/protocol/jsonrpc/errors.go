package jsonrpc

import "wconnect/internal/domain"

// DefaultErrorCode and DefaultErrorMessage fill in incomplete peer errors.
const (
	DefaultErrorCode    = -32000
	DefaultErrorMessage = "Failed or Rejected Request"
)

// standardErrors maps JSON-RPC 2.0 reserved messages to their codes.
var standardErrors = map[string]int{
	"Parse error":      -32700,
	"Invalid request":  -32600,
	"Method not found": -32601,
	"Invalid params":   -32602,
	"Internal error":   -32603,
}

// FormatRPCError fills in a missing code and message. Without a code, a
// standard message gets its standard code and anything else gets
// DefaultErrorCode. Data is kept.
func FormatRPCError(e domain.JSONRPCError) domain.JSONRPCError {
	out := domain.JSONRPCError{Code: DefaultErrorCode, Message: DefaultErrorMessage, Data: e.Data}
	if e.Message != "" {
		out.Message = e.Message
	}
	if e.Code != 0 {
		out.Code = e.Code
		return out
	}
	if code, ok := standardErrors[out.Message]; ok {
		out.Code = code
	}
	return out
}
