package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"wconnect/internal/domain"
)

var (
	ErrMissingMethod   = errors.New(`JSON RPC request must have valid "method" value`)
	ErrMissingID       = errors.New(`JSON RPC request must have valid "id" value`)
	ErrInvalidResponse = errors.New("JSON RPC response format is invalid")
)

// Request is an outbound call before formatting. A zero ID is assigned
// with PayloadID; nil Params become [].
type Request struct {
	ID     int64
	Method string
	Params any
}

// PayloadID returns a fresh request id: the current time in microsecond
// scale with random low digits.
func PayloadID() int64 {
	return time.Now().UnixMilli()*1000 + rand.Int63n(1000)
}

// FormatRequest validates req and returns its wire form.
func FormatRequest(req Request) (domain.JSONRPCRequest, error) {
	if req.Method == "" {
		return domain.JSONRPCRequest{}, ErrMissingMethod
	}
	id := req.ID
	if id == 0 {
		id = PayloadID()
	}
	params, err := marshalParams(req.Params)
	if err != nil {
		return domain.JSONRPCRequest{}, fmt.Errorf("jsonrpc: params for %s: %w", req.Method, err)
	}
	return domain.JSONRPCRequest{
		ID:      id,
		JSONRPC: domain.JSONRPCVersion,
		Method:  req.Method,
		Params:  params,
	}, nil
}

// FormatResponse validates resp and returns its wire form. Error members
// are normalised with FormatRPCError.
func FormatResponse(resp domain.JSONRPCResponse) (domain.JSONRPCResponse, error) {
	if resp.ID == 0 {
		return domain.JSONRPCResponse{}, ErrMissingID
	}
	out := domain.JSONRPCResponse{ID: resp.ID, JSONRPC: domain.JSONRPCVersion}
	switch {
	case resp.Error != nil:
		e := FormatRPCError(*resp.Error)
		out.Error = &e
	case len(resp.Result) > 0:
		out.Result = resp.Result
	default:
		return domain.JSONRPCResponse{}, ErrInvalidResponse
	}
	return out, nil
}

// Result builds a success response carrying v.
func Result(id int64, v any) (domain.JSONRPCResponse, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return domain.JSONRPCResponse{}, err
	}
	return FormatResponse(domain.JSONRPCResponse{ID: id, Result: b})
}

// Failure builds an error response.
func Failure(id int64, e domain.JSONRPCError) (domain.JSONRPCResponse, error) {
	return FormatResponse(domain.JSONRPCResponse{ID: id, Error: &e})
}

// ValidateResponse checks a decoded response before it is handed to a
// waiting caller.
func ValidateResponse(msg *domain.Message) error {
	if msg == nil {
		return ErrInvalidResponse
	}
	if msg.Error == nil && len(msg.Result) == 0 {
		return ErrInvalidResponse
	}
	return nil
}

func marshalParams(p any) (json.RawMessage, error) {
	switch v := p.(type) {
	case nil:
		return json.RawMessage(`[]`), nil
	case json.RawMessage:
		if len(v) == 0 {
			return json.RawMessage(`[]`), nil
		}
		return v, nil
	}
	return json.Marshal(p)
}
