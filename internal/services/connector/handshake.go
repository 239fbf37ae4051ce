package connector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"wconnect/internal/crypto"
	"wconnect/internal/domain"
	"wconnect/internal/events"
	"wconnect/internal/protocol/jsonrpc"
)

// CreateSession starts a handshake as the initiator: a fresh key and
// handshake topic, a wc_sessionRequest published on that topic and a
// display_uri event carrying the URI for the peer. It does nothing while a
// handshake is already pending.
func (c *Connector) CreateSession(chainID int64) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return ErrSessionConnected
	}
	if c.handshakeTopic != "" {
		c.mu.Unlock()
		return nil
	}
	key, err := c.crypto.GenerateKey(crypto.DefaultKeyBits)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("connector: generate key: %w", err)
	}
	req, err := jsonrpc.FormatRequest(jsonrpc.Request{
		Method: jsonrpc.MethodSessionRequest,
		Params: []domain.SessionRequest{{PeerID: c.clientID, PeerMeta: c.clientMeta, ChainID: chainID}},
	})
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.key = key
	c.handshakeTopic = uuid.NewString()
	c.handshakeID = req.ID
	topic := c.handshakeTopic
	uri := c.uriLocked()
	c.mu.Unlock()

	c.log.Info().Str("topic", topic).Str("key", crypto.Fingerprint(key)).Msg("session requested")
	c.transport.Open()
	c.awaitSessionResponse(req.ID)
	if err := c.publish(req, sendOptions{topic: topic}); err != nil {
		return err
	}
	c.emit(events.DisplayURI, uri)
	return nil
}

// Connect creates a session and waits until the peer approves it, rejects
// it or the user closes the modal. A connected session returns at once.
func (c *Connector) Connect(ctx context.Context, chainID int64) (domain.SessionStatus, error) {
	if c.modal == nil {
		return domain.SessionStatus{}, ErrModalMissing
	}
	c.mu.Lock()
	if c.connected {
		status := c.statusLocked()
		c.mu.Unlock()
		return status, nil
	}
	c.mu.Unlock()

	type outcome struct {
		status domain.SessionStatus
		err    error
	}
	done := make(chan outcome, 3)
	stopConnect := c.bus.Subscribe(events.Connect, func(_ error, msg *domain.Message) {
		var params []domain.SessionStatus
		if err := msg.DecodeParams(&params); err != nil {
			done <- outcome{err: fmt.Errorf("connector: connect event: %w", err)}
			return
		}
		if len(params) == 0 {
			done <- outcome{err: errors.New("connector: connect event without status")}
			return
		}
		done <- outcome{status: params[0]}
	})
	defer stopConnect()
	stopDisconnect := c.bus.Subscribe(events.Disconnect, func(_ error, msg *domain.Message) {
		done <- outcome{err: fmt.Errorf("%w: %s", ErrSessionRejected, disconnectReason(msg))}
	})
	defer stopDisconnect()
	stopClosed := c.bus.Subscribe(events.ModalClosed, func(error, *domain.Message) {
		done <- outcome{err: ErrModalClosed}
	})
	defer stopClosed()

	if err := c.CreateSession(chainID); err != nil {
		return domain.SessionStatus{}, err
	}
	select {
	case o := <-done:
		return o.status, o.err
	case <-ctx.Done():
		return domain.SessionStatus{}, ctx.Err()
	}
}

// ApproveSession answers the pending wc_sessionRequest as the responder and
// marks the session connected.
func (c *Connector) ApproveSession(params domain.SessionParams) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return ErrSessionConnected
	}
	if c.handshakeID == 0 || c.peerID == "" {
		c.mu.Unlock()
		return ErrNoSessionRequest
	}
	c.chainID = params.ChainID
	c.networkID = params.NetworkID
	c.accounts = append([]string(nil), params.Accounts...)
	c.rpcURL = params.RPCURL
	result := domain.SessionParams{
		Approved:  true,
		ChainID:   c.chainID,
		NetworkID: c.networkID,
		Accounts:  c.accounts,
		RPCURL:    c.rpcURL,
		PeerID:    c.clientID,
		PeerMeta:  c.clientMeta,
	}
	resp, err := jsonrpc.Result(c.handshakeID, result)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.connected = true
	topic := c.handshakeTopic
	c.handshakeID = 0
	c.handshakeTopic = ""
	status := c.statusLocked()
	c.mu.Unlock()

	if err := c.respond(resp); err != nil {
		return err
	}
	c.transport.Unsubscribe(topic)
	c.log.Info().Str("peer", status.PeerID).Int64("chain_id", status.ChainID).Msg("session approved")
	c.emit(events.Connect, status)
	c.persist()
	return nil
}

// RejectSession answers the pending wc_sessionRequest with an error and
// tears the handshake down. An empty message sends "Session Rejected".
func (c *Connector) RejectSession(message string) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return ErrSessionConnected
	}
	if c.handshakeID == 0 || c.peerID == "" {
		c.mu.Unlock()
		return ErrNoSessionRequest
	}
	id := c.handshakeID
	c.mu.Unlock()

	if message == "" {
		message = reasonRejected
	}
	resp, err := jsonrpc.Failure(id, domain.JSONRPCError{Message: message})
	if err != nil {
		return err
	}
	if err := c.respond(resp); err != nil {
		return err
	}
	c.teardown(message)
	return nil
}

// UpdateSession changes the session parameters and tells the peer.
func (c *Connector) UpdateSession(params domain.SessionParams) error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return ErrSessionDisconnected
	}
	c.chainID = params.ChainID
	c.networkID = params.NetworkID
	c.accounts = append([]string(nil), params.Accounts...)
	c.rpcURL = params.RPCURL
	update := domain.SessionParams{
		Approved:  true,
		ChainID:   c.chainID,
		NetworkID: c.networkID,
		Accounts:  c.accounts,
		RPCURL:    c.rpcURL,
	}
	status := c.statusLocked()
	c.mu.Unlock()

	req, err := jsonrpc.FormatRequest(jsonrpc.Request{
		Method: jsonrpc.MethodSessionUpdate,
		Params: []domain.SessionParams{update},
	})
	if err != nil {
		return err
	}
	if err := c.publish(req, sendOptions{}); err != nil {
		return err
	}
	c.emit(events.SessionUpdate, status)
	c.persist()
	return nil
}

// KillSession tells the peer the session is over and tears it down. An
// empty message sends "Session Disconnected".
func (c *Connector) KillSession(message string) error {
	if message == "" {
		message = reasonKilled
	}
	c.mu.Lock()
	notify := c.peerID != "" && len(c.key) > 0
	c.mu.Unlock()

	var err error
	if notify {
		var req domain.JSONRPCRequest
		req, err = jsonrpc.FormatRequest(jsonrpc.Request{
			Method: jsonrpc.MethodSessionUpdate,
			Params: []domain.SessionParams{{Approved: false}},
		})
		if err == nil {
			err = c.publish(req, sendOptions{})
		}
		if err != nil {
			c.log.Warn().Err(err).Msg("notify peer of kill")
		}
	}
	c.teardown(message)
	return err
}

// awaitSessionResponse routes the peer's answer to handshake id. Only the
// first answer counts.
func (c *Connector) awaitSessionResponse(id int64) {
	key := events.Response(id)
	c.bus.Subscribe(key, func(err error, msg *domain.Message) {
		c.bus.Unsubscribe(key)
		if err != nil {
			reason := err.Error()
			var rpcErr *domain.JSONRPCError
			if errors.As(err, &rpcErr) && rpcErr.Message != "" {
				reason = rpcErr.Message
			}
			c.handleSessionResponse(reason, nil)
			return
		}
		var params domain.SessionParams
		if err := json.Unmarshal(msg.Result, &params); err != nil {
			c.log.Debug().Err(err).Msg("malformed session response")
			c.handleSessionResponse(reasonHandshakeErr, nil)
			return
		}
		c.handleSessionResponse(reasonHandshakeErr, &params)
	})
}

// handleSessionResponse applies an approval or an update from the peer.
// Anything but an approval ends the session with reason.
func (c *Connector) handleSessionResponse(reason string, params *domain.SessionParams) {
	if params == nil || !params.Approved {
		c.teardown(reason)
		return
	}

	c.mu.Lock()
	wasConnected := c.connected
	if params.ChainID != 0 {
		c.chainID = params.ChainID
	}
	if params.NetworkID != 0 {
		c.networkID = params.NetworkID
	}
	if params.Accounts != nil {
		c.accounts = append([]string(nil), params.Accounts...)
	}
	if params.RPCURL != "" {
		c.rpcURL = params.RPCURL
	}
	if c.peerID == "" && params.PeerID != "" {
		c.peerID = params.PeerID
	}
	if c.peerMeta == nil && params.PeerMeta != nil {
		c.peerMeta = params.PeerMeta
	}
	var topic string
	if !wasConnected {
		c.connected = true
		topic = c.handshakeTopic
		c.handshakeID = 0
		c.handshakeTopic = ""
	}
	status := c.statusLocked()
	c.mu.Unlock()

	if wasConnected {
		c.emit(events.SessionUpdate, status)
	} else {
		c.transport.Unsubscribe(topic)
		c.log.Info().Str("peer", status.PeerID).Int64("chain_id", status.ChainID).Msg("session connected")
		c.emit(events.Connect, status)
	}
	c.persist()
}

// onSessionRequest records the initiator of an incoming handshake and
// re-raises the request as session_request.
func (c *Connector) onSessionRequest(err error, msg *domain.Message) {
	if err != nil {
		c.emit(events.Error, domain.SessionError{Message: err.Error()})
		return
	}
	var params []domain.SessionRequest
	if err := msg.DecodeParams(&params); err != nil || len(params) == 0 {
		c.log.Debug().Err(err).Msg("malformed session request")
		return
	}
	req := params[0]

	c.mu.Lock()
	ignore := c.connected ||
		req.PeerID == "" ||
		req.PeerID == c.clientID ||
		(c.peerID != "" && c.peerID != req.PeerID)
	if !ignore {
		c.handshakeID = msg.ID
		c.peerID = req.PeerID
		c.peerMeta = req.PeerMeta
	}
	c.mu.Unlock()
	if ignore {
		return
	}

	c.log.Info().Str("peer", req.PeerID).Msg("session request received")
	c.bus.Trigger(&domain.Message{
		Event:  events.SessionRequest,
		ID:     msg.ID,
		Params: msg.Params,
	})
}

// onSessionUpdate applies a wc_sessionUpdate from the peer. Updates that
// arrive outside a connected session are stale and ignored.
func (c *Connector) onSessionUpdate(err error, msg *domain.Message) {
	if err != nil {
		c.emit(events.Error, domain.SessionError{Message: err.Error()})
		return
	}
	var params []domain.SessionParams
	if err := msg.DecodeParams(&params); err != nil || len(params) == 0 {
		c.log.Debug().Err(err).Msg("malformed session update")
		return
	}
	if !c.Connected() {
		c.log.Debug().Msg("ignoring session update outside a connected session")
		return
	}
	c.handleSessionResponse(reasonPeerUpdate, &params[0])
}

// onInstantRequest records the peer of a one-shot request so the reply can
// be addressed.
func (c *Connector) onInstantRequest(err error, msg *domain.Message) {
	if err != nil {
		return
	}
	var params []instantRequest
	if err := msg.DecodeParams(&params); err != nil || len(params) == 0 {
		c.log.Debug().Err(err).Msg("malformed instant request")
		return
	}
	c.mu.Lock()
	if !c.connected && c.peerID == "" && params[0].PeerID != c.clientID {
		c.peerID = params[0].PeerID
		c.peerMeta = params[0].PeerMeta
	}
	c.mu.Unlock()
}

func disconnectReason(msg *domain.Message) string {
	var params []domain.SessionError
	if msg == nil || msg.DecodeParams(&params) != nil || len(params) == 0 {
		return ""
	}
	return params[0].Message
}
