package types

// Session is the persisted record of one peer session.
//
// Key is hex encoded. A zero HandshakeID means no handshake is pending.
type Session struct {
	Connected      bool        `json:"connected"`
	Accounts       []string    `json:"accounts"`
	ChainID        int64       `json:"chainId"`
	NetworkID      int64       `json:"networkId"`
	RPCURL         string      `json:"rpcUrl"`
	Bridge         string      `json:"bridge"`
	Key            string      `json:"key"`
	ClientID       string      `json:"clientId"`
	ClientMeta     *ClientMeta `json:"clientMeta"`
	PeerID         string      `json:"peerId"`
	PeerMeta       *ClientMeta `json:"peerMeta"`
	HandshakeID    int64       `json:"handshakeId"`
	HandshakeTopic string      `json:"handshakeTopic"`
}

// SessionParams is carried by handshake approvals and wc_sessionUpdate.
type SessionParams struct {
	Approved  bool        `json:"approved"`
	ChainID   int64       `json:"chainId"`
	NetworkID int64       `json:"networkId"`
	Accounts  []string    `json:"accounts"`
	RPCURL    string      `json:"rpcUrl,omitempty"`
	PeerID    string      `json:"peerId,omitempty"`
	PeerMeta  *ClientMeta `json:"peerMeta,omitempty"`
}

// SessionRequest is the single parameter of wc_sessionRequest.
type SessionRequest struct {
	PeerID   string      `json:"peerId"`
	PeerMeta *ClientMeta `json:"peerMeta"`
	ChainID  int64       `json:"chainId,omitempty"`
}

// SessionStatus is the payload of connect and session_update events.
type SessionStatus struct {
	PeerID   string      `json:"peerId,omitempty"`
	PeerMeta *ClientMeta `json:"peerMeta,omitempty"`
	ChainID  int64       `json:"chainId"`
	Accounts []string    `json:"accounts"`
}

// SessionError is the payload of disconnect events.
type SessionError struct {
	Message string `json:"message"`
}
