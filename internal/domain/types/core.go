package types

// ClientMeta describes one side of a session to the other.
type ClientMeta struct {
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Icons       []string `json:"icons"`
	Name        string   `json:"name"`
}

// MobileLinkInfo is the wallet link chosen last on a mobile device.
type MobileLinkInfo struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// EncryptionPayload is the authenticated ciphertext envelope carried by the
// relay. All fields are lower-case hex.
type EncryptionPayload struct {
	Data string `json:"data"`
	HMAC string `json:"hmac"`
	IV   string `json:"iv"`
}

// Complete reports whether every envelope field is present.
func (p EncryptionPayload) Complete() bool {
	return p.Data != "" && p.HMAC != "" && p.IV != ""
}

// Frame types understood by the relay.
const (
	FramePub = "pub"
	FrameSub = "sub"
	FrameAck = "ack"
)

// SocketMessage is a single relay frame.
type SocketMessage struct {
	Topic   string `json:"topic"`
	Type    string `json:"type"`
	Payload string `json:"payload"`
	Silent  bool   `json:"silent"`
}
