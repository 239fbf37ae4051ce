package connector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"wconnect/internal/crypto"
	"wconnect/internal/domain"
	"wconnect/internal/events"
	"wconnect/internal/protocol/jsonrpc"
)

// reply settles one outstanding call.
type reply struct {
	result json.RawMessage
	rpcErr *domain.JSONRPCError
	err    error
}

// TxData is an Ethereum transaction as sent to the wallet. Quantities are
// hex strings.
type TxData struct {
	From     string `json:"from"`
	To       string `json:"to,omitempty"`
	Gas      string `json:"gas,omitempty"`
	GasPrice string `json:"gasPrice,omitempty"`
	Value    string `json:"value,omitempty"`
	Data     string `json:"data,omitempty"`
	Nonce    string `json:"nonce,omitempty"`
}

// NativeCurrency names the currency of a chain.
type NativeCurrency struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// ChainParams is the parameter of wallet_updateChain.
type ChainParams struct {
	ChainID        int64          `json:"chainId"`
	NetworkID      int64          `json:"networkId"`
	RPCURL         string         `json:"rpcUrl"`
	NativeCurrency NativeCurrency `json:"nativeCurrency"`
}

// instantRequest is the single parameter of wc_instantRequest.
type instantRequest struct {
	PeerID   string                `json:"peerId"`
	PeerMeta *domain.ClientMeta    `json:"peerMeta"`
	Request  domain.JSONRPCRequest `json:"request"`
}

// callRequestSent is the parameter of the call_request_sent event.
type callRequestSent struct {
	Request domain.JSONRPCRequest `json:"request"`
}

// SendTransaction asks the wallet to sign and broadcast tx.
func (c *Connector) SendTransaction(ctx context.Context, tx TxData) (json.RawMessage, error) {
	if tx.From == "" {
		return nil, ErrMissingFrom
	}
	return c.call(ctx, jsonrpc.Request{Method: "eth_sendTransaction", Params: []TxData{tx}}, sendOptions{})
}

// SignTransaction asks the wallet to sign tx without broadcasting it.
func (c *Connector) SignTransaction(ctx context.Context, tx TxData) (json.RawMessage, error) {
	if tx.From == "" {
		return nil, ErrMissingFrom
	}
	return c.call(ctx, jsonrpc.Request{Method: "eth_signTransaction", Params: []TxData{tx}}, sendOptions{})
}

// SignMessage sends eth_sign with params [address, data].
func (c *Connector) SignMessage(ctx context.Context, params []string) (json.RawMessage, error) {
	return c.call(ctx, jsonrpc.Request{Method: "eth_sign", Params: params}, sendOptions{})
}

// SignPersonalMessage sends personal_sign with params [data, address].
func (c *Connector) SignPersonalMessage(ctx context.Context, params []string) (json.RawMessage, error) {
	return c.call(ctx, jsonrpc.Request{Method: "personal_sign", Params: params}, sendOptions{})
}

// SignTypedData sends eth_signTypedData with params [address, typedData].
func (c *Connector) SignTypedData(ctx context.Context, params []any) (json.RawMessage, error) {
	return c.call(ctx, jsonrpc.Request{Method: "eth_signTypedData", Params: params}, sendOptions{})
}

// UpdateChain asks the wallet to switch to the chain described by p.
func (c *Connector) UpdateChain(ctx context.Context, p ChainParams) (json.RawMessage, error) {
	return c.call(ctx, jsonrpc.Request{Method: jsonrpc.MethodUpdateChain, Params: []ChainParams{p}}, sendOptions{})
}

// SendCustomRequest sends any request to the peer. eth_accounts and
// eth_chainId are answered from the session without a round trip.
func (c *Connector) SendCustomRequest(ctx context.Context, req jsonrpc.Request, opts ...CallOption) (json.RawMessage, error) {
	switch req.Method {
	case jsonrpc.MethodAccounts:
		if !c.Connected() {
			return nil, ErrSessionDisconnected
		}
		return json.Marshal(c.Accounts())
	case jsonrpc.MethodChainID:
		if !c.Connected() {
			return nil, ErrSessionDisconnected
		}
		return json.Marshal("0x" + strconv.FormatInt(c.ChainID(), 16))
	}
	return c.call(ctx, req, collect(opts))
}

// UnsafeSend publishes req as is and returns the peer's response, error
// responses included.
func (c *Connector) UnsafeSend(ctx context.Context, req domain.JSONRPCRequest, opts ...CallOption) (domain.JSONRPCResponse, error) {
	if !c.Connected() {
		return domain.JSONRPCResponse{}, ErrSessionDisconnected
	}
	formatted, err := jsonrpc.FormatRequest(jsonrpc.Request{ID: req.ID, Method: req.Method, Params: req.Params})
	if err != nil {
		return domain.JSONRPCResponse{}, err
	}
	r, err := c.roundTrip(ctx, formatted, collect(opts), nil)
	if err != nil {
		return domain.JSONRPCResponse{}, err
	}
	return domain.JSONRPCResponse{
		ID:      formatted.ID,
		JSONRPC: domain.JSONRPCVersion,
		Result:  r.result,
		Error:   r.rpcErr,
	}, nil
}

// ApproveRequest answers a peer request with a result.
func (c *Connector) ApproveRequest(resp domain.JSONRPCResponse) error {
	if resp.Error != nil {
		return fmt.Errorf("%w: approval carries an error", jsonrpc.ErrInvalidResponse)
	}
	formatted, err := jsonrpc.FormatResponse(resp)
	if err != nil {
		return err
	}
	return c.respond(formatted)
}

// RejectRequest answers a peer request with an error. A missing error gets
// the default rejection.
func (c *Connector) RejectRequest(resp domain.JSONRPCResponse) error {
	if resp.Error == nil {
		resp.Error = &domain.JSONRPCError{}
	}
	resp.Result = nil
	formatted, err := jsonrpc.FormatResponse(resp)
	if err != nil {
		return err
	}
	return c.respond(formatted)
}

// CreateInstantRequest runs req as a one-shot exchange without a session:
// a fresh key and topic carry a wc_instantRequest, the URI is raised with
// display_uri and everything is torn down once the peer answers.
func (c *Connector) CreateInstantRequest(ctx context.Context, req jsonrpc.Request) (json.RawMessage, error) {
	inner, err := jsonrpc.FormatRequest(req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return nil, ErrSessionConnected
	}
	key, err := c.crypto.GenerateKey(crypto.DefaultKeyBits)
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("connector: generate key: %w", err)
	}
	outer, err := jsonrpc.FormatRequest(jsonrpc.Request{
		Method: jsonrpc.MethodInstantRequest,
		Params: []instantRequest{{PeerID: c.clientID, PeerMeta: c.clientMeta, Request: inner}},
	})
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.key = key
	c.handshakeTopic = uuid.NewString()
	c.handshakeID = outer.ID
	topic := c.handshakeTopic
	uri := c.uriLocked()
	c.mu.Unlock()
	defer c.teardown(reasonInstantDone)

	closed := make(chan struct{})
	var once sync.Once
	stop := c.bus.Subscribe(events.ModalClosed, func(error, *domain.Message) {
		once.Do(func() { close(closed) })
	})
	defer stop()

	c.transport.Open()
	ready := func() { c.emit(events.DisplayURI, uri) }
	r, err := c.roundTrip(ctx, outer, sendOptions{topic: topic}, closed, ready)
	if err != nil {
		return nil, err
	}
	if r.rpcErr != nil {
		return nil, r.rpcErr
	}
	return r.result, nil
}

// call sends req on a connected session and waits for its result.
func (c *Connector) call(ctx context.Context, req jsonrpc.Request, o sendOptions) (json.RawMessage, error) {
	if !c.Connected() {
		return nil, ErrSessionDisconnected
	}
	formatted, err := jsonrpc.FormatRequest(req)
	if err != nil {
		return nil, err
	}
	r, err := c.roundTrip(ctx, formatted, o, nil)
	if err != nil {
		return nil, err
	}
	if r.rpcErr != nil {
		return nil, r.rpcErr
	}
	return r.result, nil
}

// roundTrip registers req as outstanding, publishes it and waits for the
// reply, the context, a close signal or the end of the session. The
// optional sent funcs run once the request is on its way.
func (c *Connector) roundTrip(
	ctx context.Context,
	req domain.JSONRPCRequest,
	o sendOptions,
	closed <-chan struct{},
	sent ...func(),
) (reply, error) {
	ch := c.expect(req.ID)
	defer c.forget(req.ID)

	if err := c.publish(req, o); err != nil {
		return reply{}, err
	}
	c.emit(events.CallRequestSent, callRequestSent{Request: req})
	for _, fn := range sent {
		fn()
	}

	if _, ok := ctx.Deadline(); !ok && c.opts.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.CallTimeout)
		defer cancel()
	}
	select {
	case r := <-ch:
		return r, r.err
	case <-closed:
		return reply{}, ErrModalClosed
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
}

// expect registers id as outstanding before its request is published.
func (c *Connector) expect(id int64) <-chan reply {
	ch := make(chan reply, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	c.bus.Subscribe(events.Response(id), func(err error, msg *domain.Message) {
		c.settle(id, err, msg)
	})
	return ch
}

// settle hands the first response for id to its caller. Later responses
// find no subscriber and are dropped by the bus.
func (c *Connector) settle(id int64, err error, msg *domain.Message) {
	c.mu.Lock()
	ch, ok := c.pending[id]
	delete(c.pending, id)
	c.mu.Unlock()
	c.bus.Unsubscribe(events.Response(id))
	if !ok {
		return
	}

	var rpcErr *domain.JSONRPCError
	if errors.As(err, &rpcErr) {
		ch <- reply{rpcErr: rpcErr}
		return
	}
	if err != nil {
		ch <- reply{err: err}
		return
	}
	if verr := jsonrpc.ValidateResponse(msg); verr != nil {
		ch <- reply{err: verr}
		return
	}
	ch <- reply{result: msg.Result}
}

func (c *Connector) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
	c.bus.Unsubscribe(events.Response(id))
}
