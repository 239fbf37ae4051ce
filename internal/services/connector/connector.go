package connector

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wconnect/internal/crypto"
	"wconnect/internal/domain"
	"wconnect/internal/events"
	"wconnect/internal/protocol/jsonrpc"
	"wconnect/internal/protocol/wcuri"
	"wconnect/internal/relay"
	"wconnect/internal/store"
)

// Connector is one side of a peer session.
//
// All session state is guarded by mu. The lock is never held while the
// transport is written to or while bus callbacks run.
type Connector struct {
	opts      Options
	storageID string
	crypto    domain.CryptoLib
	sessions  domain.SessionStore
	links     domain.DeepLinkStore
	transport domain.Transport
	modal     domain.Modal
	opener    LinkOpener
	push      domain.PushRegistrar
	policy    jsonrpc.Policy
	bus       *events.Bus
	log       zerolog.Logger

	mu             sync.Mutex
	bridge         string
	key            []byte
	clientID       string
	clientMeta     *domain.ClientMeta
	peerID         string
	peerMeta       *domain.ClientMeta
	handshakeID    int64
	handshakeTopic string
	connected      bool
	accounts       []string
	chainID        int64
	networkID      int64
	rpcURL         string
	pending        map[int64]chan reply
}

// New builds a Connector and opens its transport.
//
// Construction:
//  1. Resolve the bridge, then restore the session from opts.Session, or
//     from storage unless a URI is being joined. A restored session keeps
//     its own bridge.
//  2. Apply the URI, which supplies the bridge, handshake topic and key.
//  3. Subscribe the transport to the client id, the handshake topic when
//     joining, and re-arm a pending handshake response.
//  4. Register the internal event hooks and open the transport.
func New(opts Options, deps Deps) (*Connector, error) {
	if opts.Bridge == "" && opts.URI == "" && opts.Session == nil {
		return nil, ErrMissingParams
	}
	if opts.PushServer != nil {
		if err := opts.PushServer.validate(); err != nil {
			return nil, err
		}
	}

	c := &Connector{
		opts:      opts,
		storageID: opts.StorageID,
		crypto:    deps.Crypto,
		sessions:  deps.Sessions,
		links:     deps.DeepLinks,
		transport: deps.Transport,
		modal:     deps.Modal,
		opener:    deps.Opener,
		push:      deps.Push,
		policy:    jsonrpc.NewPolicy(opts.SigningMethods...),
		bus:       events.NewBus(),
		pending:   make(map[int64]chan reply),
	}
	if c.storageID == "" {
		c.storageID = store.DefaultStorageKey
	}
	if c.crypto == nil {
		c.crypto = crypto.AESCBC{}
	}
	if c.sessions == nil {
		c.sessions = store.NewMemorySessionStore()
	}
	if c.push == nil && opts.PushServer != nil {
		c.push = relay.NewPushClient(opts.PushServer.URL, nil)
	}

	if opts.Bridge != "" {
		c.bridge = relay.ResolveBridge(opts.Bridge, nil)
	}
	session := opts.Session
	if session == nil && opts.URI == "" {
		stored, ok, err := c.sessions.LoadSession(c.storageID)
		if err != nil {
			return nil, fmt.Errorf("connector: load session: %w", err)
		}
		if ok {
			session = &stored
		}
	}
	if session != nil {
		if err := c.restore(*session); err != nil {
			return nil, err
		}
	}
	if opts.URI != "" {
		if err := c.join(opts.URI); err != nil {
			return nil, err
		}
	}
	if c.clientID == "" {
		c.clientID = uuid.NewString()
	}
	if c.clientMeta == nil {
		c.clientMeta = opts.ClientMeta
	}

	logger := log.Logger
	if deps.Logger != nil {
		logger = *deps.Logger
	}
	c.log = logger.With().Str("component", "connector").Str("client", c.clientID).Logger()

	if c.transport == nil {
		if c.bridge == "" {
			return nil, ErrMissingParams
		}
		sock, err := relay.NewSocket(relay.SocketConfig{
			Bridge:  c.bridge,
			Env:     opts.Env,
			Host:    opts.Host,
			Backoff: opts.Backoff,
			Logger:  &logger,
		})
		if err != nil {
			return nil, err
		}
		c.transport = sock
	}
	c.transport.SetHandlers(domain.TransportHandlers{
		OnMessage: c.handleSocketMessage,
		OnOpen:    func() { c.emit(events.TransportOpen) },
		OnClose:   func() { c.emit(events.TransportClose) },
		OnError: func(err error) {
			c.emit(events.TransportError, domain.SessionError{Message: err.Error()})
		},
	})

	c.transport.Subscribe(c.clientID)
	if opts.URI != "" {
		c.transport.Subscribe(c.handshakeTopic)
	}
	if c.handshakeID != 0 {
		c.awaitSessionResponse(c.handshakeID)
	}
	c.registerHooks()

	c.log.Debug().
		Str("bridge", c.bridge).
		Bool("connected", c.connected).
		Str("key", crypto.Fingerprint(c.key)).
		Msg("connector ready")
	c.transport.Open()
	return c, nil
}

func (c *Connector) restore(s domain.Session) error {
	var key []byte
	if s.Key != "" {
		k, err := hex.DecodeString(s.Key)
		if err != nil {
			return fmt.Errorf("connector: session key: %w", err)
		}
		key = k
	}
	c.connected = s.Connected
	c.accounts = slices.Clone(s.Accounts)
	c.chainID = s.ChainID
	c.networkID = s.NetworkID
	c.rpcURL = s.RPCURL
	if s.Bridge != "" {
		c.bridge = s.Bridge
	}
	c.key = key
	c.clientID = s.ClientID
	c.clientMeta = s.ClientMeta
	c.peerID = s.PeerID
	c.peerMeta = s.PeerMeta
	c.handshakeID = s.HandshakeID
	c.handshakeTopic = s.HandshakeTopic
	return nil
}

func (c *Connector) join(raw string) error {
	u, err := wcuri.Parse(raw)
	if err != nil {
		return err
	}
	key, err := hex.DecodeString(u.Key)
	if err != nil {
		return fmt.Errorf("%w: %v", wcuri.ErrMissingKey, err)
	}
	switch len(key) {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: key is %d bytes", wcuri.ErrMissingKey, len(key))
	}
	c.handshakeTopic = u.HandshakeTopic
	c.bridge = u.Bridge
	c.key = key
	return nil
}

// On subscribes cb to event. The returned func removes only cb.
func (c *Connector) On(event string, cb events.Callback) (cancel func()) {
	return c.bus.Subscribe(event, cb)
}

// Off removes every subscriber of event, internal hooks included.
func (c *Connector) Off(event string) {
	c.bus.Unsubscribe(event)
}

// Session returns a snapshot of the session record.
func (c *Connector) Session() domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Connector) snapshotLocked() domain.Session {
	var key string
	if len(c.key) > 0 {
		key = hex.EncodeToString(c.key)
	}
	return domain.Session{
		Connected:      c.connected,
		Accounts:       slices.Clone(c.accounts),
		ChainID:        c.chainID,
		NetworkID:      c.networkID,
		RPCURL:         c.rpcURL,
		Bridge:         c.bridge,
		Key:            key,
		ClientID:       c.clientID,
		ClientMeta:     c.clientMeta,
		PeerID:         c.peerID,
		PeerMeta:       c.peerMeta,
		HandshakeID:    c.handshakeID,
		HandshakeTopic: c.handshakeTopic,
	}
}

// Connected reports whether the handshake completed and the session is live.
func (c *Connector) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Pending reports whether a handshake is under way.
func (c *Connector) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.connected && c.handshakeTopic != ""
}

// URI returns the connection URI for the current handshake.
func (c *Connector) URI() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uriLocked()
}

func (c *Connector) uriLocked() string {
	return wcuri.FromSession(c.snapshotLocked()).String()
}

func (c *Connector) ClientID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientID
}

func (c *Connector) PeerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peerID
}

func (c *Connector) PeerMeta() *domain.ClientMeta {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peerMeta
}

func (c *Connector) Accounts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.accounts)
}

func (c *Connector) ChainID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chainID
}

func (c *Connector) Bridge() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bridge
}

// KeyFingerprint identifies the session key without revealing it.
func (c *Connector) KeyFingerprint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return crypto.Fingerprint(c.key)
}

// Close stops the transport without ending the session. A connected
// session stays in storage and can be restored by a later Connector.
func (c *Connector) Close() error {
	return c.transport.Close()
}

// emit raises an internal event with params as its params array.
func (c *Connector) emit(event string, params ...any) {
	if params == nil {
		params = []any{}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		c.log.Error().Err(err).Str("event", event).Msg("encode event params")
		return
	}
	c.bus.Trigger(&domain.Message{Event: event, Params: raw})
}

func (c *Connector) statusLocked() domain.SessionStatus {
	return domain.SessionStatus{
		PeerID:   c.peerID,
		PeerMeta: c.peerMeta,
		ChainID:  c.chainID,
		Accounts: slices.Clone(c.accounts),
	}
}

// persist saves a connected session and erases anything else.
func (c *Connector) persist() {
	c.mu.Lock()
	connected := c.connected
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	var err error
	if connected {
		err = c.sessions.SaveSession(c.storageID, snapshot)
	} else {
		err = c.sessions.RemoveSession(c.storageID)
	}
	if err != nil {
		c.log.Warn().Err(err).Bool("connected", connected).Msg("persist session")
	}
}

// teardown ends the session. It runs once per session: later calls find
// nothing to clear and return without emitting.
//
// Steps:
//  1. Reset the session fields and wipe the key.
//  2. When the session never connected, close the modal and forget the
//     deep-link choice.
//  3. Fail outstanding calls with ErrSessionDisconnected.
//  4. Erase storage, emit disconnect and close the transport.
func (c *Connector) teardown(message string) {
	c.mu.Lock()
	if !c.connected && c.handshakeID == 0 && c.handshakeTopic == "" && c.peerID == "" && c.key == nil {
		c.mu.Unlock()
		return
	}
	wasConnected := c.connected
	topic, handshakeID := c.handshakeTopic, c.handshakeID
	c.connected = false
	c.handshakeID = 0
	c.handshakeTopic = ""
	c.peerID = ""
	c.peerMeta = nil
	c.accounts = nil
	c.networkID = 0
	c.rpcURL = ""
	crypto.Wipe(c.key)
	c.key = nil
	pending := c.pending
	c.pending = make(map[int64]chan reply)
	c.mu.Unlock()

	c.log.Info().Str("reason", message).Bool("was_connected", wasConnected).Msg("session ended")

	if topic != "" {
		c.transport.Unsubscribe(topic)
	}
	if handshakeID != 0 {
		c.bus.Unsubscribe(events.Response(handshakeID))
	}
	if !wasConnected {
		if c.modal != nil {
			c.modal.Close()
		}
		if c.links != nil {
			if err := c.links.RemoveDeepLink(); err != nil {
				c.log.Warn().Err(err).Msg("remove deep link")
			}
		}
	}
	for id, ch := range pending {
		c.bus.Unsubscribe(events.Response(id))
		ch <- reply{err: ErrSessionDisconnected}
	}

	c.persist()
	c.emit(events.Disconnect, domain.SessionError{Message: message})
	if err := c.transport.Close(); err != nil {
		c.log.Debug().Err(err).Msg("close transport")
	}
}
