package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wconnect/internal/domain"
	"wconnect/internal/protocol/wcuri"
	"wconnect/internal/relay"
	"wconnect/internal/services/connector"
	"wconnect/internal/store"
)

const probeTimeout = 3 * time.Second

// Wire bundles the stores and clients a Connector is built from.
type Wire struct {
	Config    Config
	Sessions  domain.SessionStore
	DeepLinks domain.DeepLinkStore
	Push      domain.PushRegistrar
	HTTP      *http.Client
	Logger    zerolog.Logger
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	w := &Wire{
		Config: cfg,
		HTTP:   httpClient,
		Logger: log.Logger,
	}
	if cfg.Ephemeral {
		w.Sessions = store.NewMemorySessionStore()
		w.DeepLinks = store.NewMemoryDeepLinkStore()
	} else {
		if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
			return nil, fmt.Errorf("create home: %w", err)
		}
		w.Sessions = store.NewSessionFileStore(cfg.Home, cfg.Passphrase)
		w.DeepLinks = store.NewDeepLinkFileStore(cfg.Home)
	}
	if cfg.Push.URL != "" {
		w.Push = relay.NewPushClient(cfg.Push.URL, httpClient)
	}
	return w, nil
}

// Client is a Connector together with the network monitor feeding its
// socket.
type Client struct {
	*connector.Connector
	socket  *relay.Socket
	monitor *relay.ProbeMonitor
}

// WaitOnline blocks until the relay connection is open. Frames sent
// before that are queued, and a command that exits straight after sending
// would drop them.
func (c *Client) WaitOnline(ctx context.Context) error {
	t := time.NewTicker(50 * time.Millisecond)
	defer t.Stop()
	for !c.socket.Connected() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("relay %s unreachable: %w", c.Bridge(), ctx.Err())
		case <-t.C:
		}
	}
	return nil
}

// Close stops probing and shuts the relay connection.
func (c *Client) Close() error {
	if c.monitor != nil {
		c.monitor.Stop()
	}
	return c.Connector.Close()
}

// Open builds a Connector on a relay socket. Fields left empty in opts are
// taken from the config; without a URI the stored session is resumed.
func (w *Wire) Open(opts connector.Options, modal domain.Modal) (*Client, error) {
	w.fill(&opts)

	if opts.URI == "" && opts.Session == nil {
		stored, ok, err := w.Sessions.LoadSession(opts.StorageID)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if ok {
			opts.Session = &stored
		}
	}
	bridge, err := w.bridge(opts)
	if err != nil {
		return nil, err
	}
	opts.Bridge = bridge

	sock, err := relay.NewSocket(relay.SocketConfig{
		Bridge:  bridge,
		Env:     opts.Env,
		Host:    opts.Host,
		Backoff: opts.Backoff,
		Logger:  &w.Logger,
	})
	if err != nil {
		return nil, err
	}

	c, err := connector.New(opts, connector.Deps{
		Sessions:  w.Sessions,
		DeepLinks: w.DeepLinks,
		Transport: sock,
		Modal:     modal,
		Push:      w.Push,
		Logger:    &w.Logger,
	})
	if err != nil {
		_ = sock.Close()
		return nil, err
	}

	client := &Client{Connector: c, socket: sock}
	if w.Config.ProbeInterval > 0 {
		mon := relay.NewProbeMonitor(relay.TCPProber(bridge, probeTimeout), w.Config.ProbeInterval)
		mon.OnOnline(sock.NotifyOnline)
		if err := mon.Start(); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("start network monitor: %w", err)
		}
		client.monitor = mon
	}
	return client, nil
}

func (w *Wire) fill(opts *connector.Options) {
	cfg := w.Config
	if opts.Bridge == "" {
		opts.Bridge = cfg.Bridge
	}
	if opts.StorageID == "" {
		opts.StorageID = cfg.StorageID
	}
	if opts.StorageID == "" {
		opts.StorageID = store.DefaultStorageKey
	}
	if opts.ClientMeta == nil {
		opts.ClientMeta = cfg.Client.Meta()
	}
	if len(opts.SigningMethods) == 0 {
		opts.SigningMethods = append([]string{}, cfg.SigningMethods...)
	}
	if opts.PushServer == nil && cfg.Push.URL != "" {
		opts.PushServer = &connector.PushServerOptions{
			URL:      cfg.Push.URL,
			Type:     cfg.Push.Type,
			Token:    cfg.Push.Token,
			PeerMeta: cfg.Push.PeerMeta,
			Language: cfg.Push.Language,
		}
	}
	if opts.CallTimeout == 0 {
		opts.CallTimeout = cfg.CallTimeout
	}
	if opts.Env == "" {
		opts.Env = cfg.Env
	}
	if opts.Host == "" {
		opts.Host = cfg.Host
	}
	if opts.Backoff == (relay.BackoffConfig{}) {
		opts.Backoff = cfg.Backoff
	}
}

// bridge picks the relay the socket dials: the URI's, then the session's,
// then a resolved opts.Bridge.
func (w *Wire) bridge(opts connector.Options) (string, error) {
	switch {
	case opts.URI != "":
		u, err := wcuri.Parse(opts.URI)
		if err != nil {
			return "", err
		}
		return u.Bridge, nil
	case opts.Session != nil && opts.Session.Bridge != "":
		return opts.Session.Bridge, nil
	case opts.Bridge != "":
		return relay.ResolveBridge(opts.Bridge, nil), nil
	}
	return "", connector.ErrMissingParams
}
