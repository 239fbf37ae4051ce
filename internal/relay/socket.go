package relay

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wconnect/internal/domain"
)

// ErrMissingTopic is returned by Send when no topic is given.
var ErrMissingTopic = errors.New("missing or invalid topic field")

// SocketConfig configures a Socket.
type SocketConfig struct {
	// Bridge is the relay address, http(s) or ws(s).
	Bridge string
	// Env and Host describe this client to the relay.
	Env  string
	Host string

	Backoff      BackoffConfig
	DialTimeout  time.Duration
	WriteTimeout time.Duration

	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer
	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
}

// Socket is a relay transport over a WebSocket. It keeps one logical
// connection alive from Open until Close: dropped connections are redialled
// with backoff, subscriptions are replayed and queued sends are flushed in
// order once a connection opens.
type Socket struct {
	cfg    SocketConfig
	url    string
	dialer *websocket.Dialer
	log    zerolog.Logger
	rng    *rand.Rand

	mu       sync.Mutex
	handlers domain.TransportHandlers
	conn     *websocket.Conn
	queue    []domain.SocketMessage
	topics   []string
	cancel   context.CancelFunc

	online chan struct{}
}

// Compile-time assertion that Socket implements domain.Transport.
var _ domain.Transport = (*Socket)(nil)

// NewSocket validates cfg and returns an unopened Socket.
func NewSocket(cfg SocketConfig) (*Socket, error) {
	u, err := socketURL(cfg.Bridge, cfg.Env, cfg.Host)
	if err != nil {
		return nil, err
	}
	if cfg.Backoff == (BackoffConfig{}) {
		cfg.Backoff = DefaultBackoff()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Socket{
		cfg:    cfg,
		url:    u,
		dialer: dialer,
		log:    logger.With().Str("component", "relay").Str("bridge", cfg.Bridge).Logger(),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		online: make(chan struct{}, 1),
	}, nil
}

// URL returns the WebSocket URL the socket dials.
func (s *Socket) URL() string { return s.url }

// SetHandlers replaces the event callbacks.
func (s *Socket) SetHandlers(h domain.TransportHandlers) {
	s.mu.Lock()
	s.handlers = h
	s.mu.Unlock()
}

// Open starts the connection supervisor. It is a no-op while running.
func (s *Socket) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx)
}

// Close stops reconnecting and closes the current connection. Queued sends
// and subscriptions are kept for a later Open.
func (s *Socket) Close() error {
	s.mu.Lock()
	cancel, conn := s.cancel, s.conn
	s.cancel, s.conn = nil, nil
	h := s.handlers
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	if conn == nil {
		return nil
	}
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	err := conn.Close()
	if h.OnClose != nil {
		h.OnClose()
	}
	return err
}

// Connected reports whether a connection is currently open.
func (s *Socket) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Send publishes payload on topic.
func (s *Socket) Send(payload, topic string, silent bool) error {
	if topic == "" {
		return ErrMissingTopic
	}
	s.publish(domain.SocketMessage{Topic: topic, Type: domain.FramePub, Payload: payload, Silent: silent})
	return nil
}

// Subscribe asks the relay for topic now, or on the next connection.
func (s *Socket) Subscribe(topic string) {
	if topic == "" {
		return
	}
	s.mu.Lock()
	if !slices.Contains(s.topics, topic) {
		s.topics = append(s.topics, topic)
	}
	connected := s.conn != nil
	s.mu.Unlock()

	if connected {
		s.publish(subFrame(topic))
	}
}

// Unsubscribe removes topic from the replay set.
func (s *Socket) Unsubscribe(topic string) {
	s.mu.Lock()
	s.topics = slices.DeleteFunc(s.topics, func(t string) bool { return t == topic })
	s.mu.Unlock()
}

// NotifyOnline dials a fresh connection and swaps it in, even when the
// current one looks healthy. While waiting out a reconnect delay it
// redials at once.
func (s *Socket) NotifyOnline() {
	select {
	case s.online <- struct{}{}:
	default:
	}
}

func (s *Socket) run(ctx context.Context) {
	attempt := 0
	for {
		conn, err := s.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			attempt++
			s.log.Debug().Err(err).Int("attempt", attempt).Msg("dial failed")
			s.emitError(err)
			if !sleep(ctx, NextDelay(s.cfg.Backoff, attempt, s.rng), s.online) {
				return
			}
			continue
		}

		attempt = 0
		// a signal raised while dialling is answered by this connection
		select {
		case <-s.online:
		default:
		}
		err = s.serve(ctx, conn)
		if ctx.Err() != nil {
			return
		}
		s.log.Info().Err(err).Msg("connection lost")
		s.emitClose()

		attempt++
		if !sleep(ctx, NextDelay(s.cfg.Backoff, attempt, s.rng), s.online) {
			return
		}
	}
}

// serve owns conn until it fails or the supervisor stops. A NotifyOnline
// signal replaces conn with a freshly dialled connection.
func (s *Socket) serve(ctx context.Context, conn *websocket.Conn) error {
	if !s.adopt(conn) {
		_ = conn.Close()
		return errors.New("relay: flush on open failed")
	}
	done := s.startReader(conn)

	for {
		select {
		case <-ctx.Done():
			s.detach(conn)
			_ = conn.Close()
			return ctx.Err()
		case err := <-done:
			s.detach(conn)
			_ = conn.Close()
			return err
		case <-s.online:
			next, err := s.dial(ctx)
			if err != nil {
				s.emitError(err)
				continue
			}
			s.log.Debug().Msg("back online, replacing connection")
			if !s.adopt(next) {
				_ = next.Close()
				continue
			}
			_ = conn.Close()
			conn = next
			done = s.startReader(conn)
		}
	}
}

func (s *Socket) dial(ctx context.Context) (*websocket.Conn, error) {
	dctx, cancel := context.WithTimeout(ctx, s.cfg.DialTimeout)
	defer cancel()
	conn, _, err := s.dialer.DialContext(dctx, s.url, nil)
	return conn, err
}

// adopt makes conn current, replays subscriptions and flushes the queue.
// It reports false when a write failed; unsent frames stay queued.
func (s *Socket) adopt(conn *websocket.Conn) bool {
	s.mu.Lock()
	for _, topic := range s.topics {
		if err := s.write(conn, subFrame(topic)); err != nil {
			s.mu.Unlock()
			s.emitError(err)
			return false
		}
	}
	for len(s.queue) > 0 {
		if err := s.write(conn, s.queue[0]); err != nil {
			s.mu.Unlock()
			s.emitError(err)
			return false
		}
		s.queue = s.queue[1:]
	}
	s.conn = conn
	h := s.handlers
	s.mu.Unlock()

	s.log.Debug().Int("topics", len(s.topics)).Msg("connection open")
	if h.OnOpen != nil {
		h.OnOpen()
	}
	return true
}

func (s *Socket) detach(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.mu.Unlock()
}

func (s *Socket) startReader(conn *websocket.Conn) <-chan error {
	done := make(chan error, 1)
	go func() { done <- s.readLoop(conn) }()
	return done
}

func (s *Socket) readLoop(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var msg domain.SocketMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Debug().Err(err).Msg("dropping unparsable frame")
			continue
		}
		if msg.Type == domain.FrameAck {
			continue
		}
		s.publish(domain.SocketMessage{Topic: msg.Topic, Type: domain.FrameAck, Payload: "", Silent: true})

		s.mu.Lock()
		h := s.handlers
		s.mu.Unlock()
		if h.OnMessage != nil {
			h.OnMessage(msg)
		}
	}
}

// publish writes msg on the current connection or queues it.
func (s *Socket) publish(msg domain.SocketMessage) {
	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		s.queue = append(s.queue, msg)
		s.mu.Unlock()
		return
	}
	err := s.write(conn, msg)
	if err != nil {
		s.queue = append(s.queue, msg)
		s.conn = nil
	}
	s.mu.Unlock()

	if err != nil {
		_ = conn.Close()
		s.emitError(err)
	}
}

// write sends one frame. Callers hold s.mu, which keeps frames in order.
func (s *Socket) write(conn *websocket.Conn, msg domain.SocketMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	return conn.WriteJSON(msg)
}

func (s *Socket) emitClose() {
	s.mu.Lock()
	h := s.handlers
	s.mu.Unlock()
	if h.OnClose != nil {
		h.OnClose()
	}
}

func (s *Socket) emitError(err error) {
	s.mu.Lock()
	h := s.handlers
	s.mu.Unlock()
	if h.OnError != nil {
		h.OnError(err)
	}
}

func subFrame(topic string) domain.SocketMessage {
	return domain.SocketMessage{Topic: topic, Type: domain.FrameSub, Payload: "", Silent: true}
}
