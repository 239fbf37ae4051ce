package connector

import (
	"bytes"
	"encoding/json"
	"fmt"

	"wconnect/internal/crypto"
	"wconnect/internal/domain"
)

// handleSocketMessage turns a relay frame into a bus message. Frames for
// other topics, envelopes that are incomplete or fail authentication, and
// plaintexts that are not messages are dropped.
func (c *Connector) handleSocketMessage(frame domain.SocketMessage) {
	c.mu.Lock()
	accept := frame.Topic == c.clientID || (c.handshakeTopic != "" && frame.Topic == c.handshakeTopic)
	key := bytes.Clone(c.key)
	c.mu.Unlock()
	defer crypto.Wipe(key)

	if !accept {
		c.log.Debug().Str("topic", frame.Topic).Msg("dropping frame for unknown topic")
		return
	}

	var env domain.EncryptionPayload
	if err := json.Unmarshal([]byte(frame.Payload), &env); err != nil || !env.Complete() {
		c.log.Debug().Err(err).Msg("dropping frame without an envelope")
		return
	}
	plaintext, ok, err := c.crypto.Decrypt(env, key)
	if err != nil || !ok {
		c.log.Debug().Err(err).Bool("authentic", ok).Msg("dropping undecryptable frame")
		return
	}
	var msg domain.Message
	if err := json.Unmarshal(plaintext, &msg); err != nil {
		c.log.Debug().Err(err).Msg("dropping malformed message")
		return
	}
	// Peers send requests and responses; events are raised locally only.
	msg.Event = ""

	if !c.bus.Trigger(&msg) {
		c.log.Debug().Int64("id", msg.ID).Str("method", msg.Method).Msg("no subscriber for message")
	}
}

// publish encrypts req and sends it to the peer, or to o.topic.
func (c *Connector) publish(req domain.JSONRPCRequest, o sendOptions) error {
	c.mu.Lock()
	key := bytes.Clone(c.key)
	topic := o.topic
	if topic == "" {
		topic = c.peerID
	}
	c.mu.Unlock()
	defer crypto.Wipe(key)

	payload, err := c.seal(req, key)
	if err != nil {
		return err
	}
	silent := c.policy.IsSilent(req.Method) && !o.forcePush
	c.log.Debug().Int64("id", req.ID).Str("method", req.Method).Bool("silent", silent).Msg("publish request")
	return c.transport.Send(payload, topic, silent)
}

// respond encrypts resp and sends it silently to the peer.
func (c *Connector) respond(resp domain.JSONRPCResponse) error {
	c.mu.Lock()
	key := bytes.Clone(c.key)
	topic := c.peerID
	c.mu.Unlock()
	defer crypto.Wipe(key)

	payload, err := c.seal(resp, key)
	if err != nil {
		return err
	}
	c.log.Debug().Int64("id", resp.ID).Bool("error", resp.Error != nil).Msg("publish response")
	return c.transport.Send(payload, topic, true)
}

func (c *Connector) seal(v any, key []byte) (string, error) {
	if len(key) == 0 {
		return "", crypto.ErrMissingKey
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("connector: encode payload: %w", err)
	}
	env, err := c.crypto.Encrypt(raw, key)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
