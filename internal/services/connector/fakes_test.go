package connector

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"wconnect/internal/crypto"
	"wconnect/internal/domain"
	"wconnect/internal/store"
)

var testKey = bytes.Repeat([]byte{0x42}, 32)

type sentFrame struct {
	payload string
	topic   string
	silent  bool
}

// fakeTransport records what the connector sends and lets tests deliver
// frames synchronously.
type fakeTransport struct {
	mu     sync.Mutex
	h      domain.TransportHandlers
	topics []string
	opens  int
	closes int
	sent   chan sentFrame
}

var _ domain.Transport = (*fakeTransport)(nil)

func newFakeTransport() *fakeTransport {
	return &fakeTransport{sent: make(chan sentFrame, 32)}
}

func (f *fakeTransport) SetHandlers(h domain.TransportHandlers) {
	f.mu.Lock()
	f.h = h
	f.mu.Unlock()
}

func (f *fakeTransport) Open() {
	f.mu.Lock()
	f.opens++
	f.mu.Unlock()
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	f.closes++
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) Connected() bool { return true }

func (f *fakeTransport) Send(payload, topic string, silent bool) error {
	f.sent <- sentFrame{payload: payload, topic: topic, silent: silent}
	return nil
}

func (f *fakeTransport) Subscribe(topic string) {
	f.mu.Lock()
	f.topics = append(f.topics, topic)
	f.mu.Unlock()
}

func (f *fakeTransport) Unsubscribe(string) {}

func (f *fakeTransport) subscribed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.topics...)
}

func (f *fakeTransport) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

// deliver seals v under key and hands it to the connector as a relay frame.
func (f *fakeTransport) deliver(t *testing.T, topic string, key []byte, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	env, err := crypto.Encrypt(raw, key)
	require.NoError(t, err)
	payload, err := json.Marshal(env)
	require.NoError(t, err)
	f.deliverRaw(topic, string(payload))
}

func (f *fakeTransport) deliverRaw(topic, payload string) {
	f.mu.Lock()
	h := f.h
	f.mu.Unlock()
	h.OnMessage(domain.SocketMessage{Topic: topic, Type: domain.FramePub, Payload: payload})
}

// next waits for the next sent frame and opens it under key.
func (f *fakeTransport) next(t *testing.T, key []byte) (sentFrame, domain.Message) {
	t.Helper()
	select {
	case s := <-f.sent:
		var env domain.EncryptionPayload
		require.NoError(t, json.Unmarshal([]byte(s.payload), &env))
		pt, ok, err := crypto.Decrypt(env, key)
		require.NoError(t, err)
		require.True(t, ok)
		var msg domain.Message
		require.NoError(t, json.Unmarshal(pt, &msg))
		return s, msg
	case <-time.After(5 * time.Second):
		t.Fatal("nothing sent")
		return sentFrame{}, domain.Message{}
	}
}

type fakeModal struct {
	mu      sync.Mutex
	opened  []string
	closed  int
	dismiss bool
}

func (m *fakeModal) Open(uri string, onClose func()) {
	m.mu.Lock()
	m.opened = append(m.opened, uri)
	dismiss := m.dismiss
	m.mu.Unlock()
	if dismiss {
		go onClose()
	}
}

func (m *fakeModal) Close() {
	m.mu.Lock()
	m.closed++
	m.mu.Unlock()
}

func (m *fakeModal) state() ([]string, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.opened...), m.closed
}

type fakePush struct {
	regs chan domain.PushRegistration
}

func (p *fakePush) Register(_ context.Context, reg domain.PushRegistration) error {
	p.regs <- reg
	return nil
}

func connectedSession() domain.Session {
	return domain.Session{
		Connected: true,
		Accounts:  []string{"0xabc"},
		ChainID:   1,
		Bridge:    "https://bridge.test",
		Key:       hex.EncodeToString(testKey),
		ClientID:  "client",
		PeerID:    "peer",
		PeerMeta:  &domain.ClientMeta{Name: "Wallet"},
	}
}

func newFakeConnector(t *testing.T, opts Options, deps Deps) (*Connector, *fakeTransport) {
	t.Helper()
	nop := zerolog.Nop()
	tr := newFakeTransport()
	deps.Transport = tr
	deps.Logger = &nop
	if deps.Sessions == nil {
		deps.Sessions = store.NewMemorySessionStore()
	}
	c, err := New(opts, deps)
	require.NoError(t, err)
	return c, tr
}

// record collects every message raised for event.
func record(c *Connector, event string) chan *domain.Message {
	ch := make(chan *domain.Message, 16)
	c.On(event, func(err error, msg *domain.Message) {
		if err != nil {
			ch <- &domain.Message{Event: event, Error: &domain.JSONRPCError{Message: err.Error()}}
			return
		}
		ch <- msg
	})
	return ch
}

func waitFor(t *testing.T, ch <-chan *domain.Message) *domain.Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func decodeFirst[T any](t *testing.T, msg *domain.Message) T {
	t.Helper()
	var params []T
	require.NoError(t, msg.DecodeParams(&params))
	require.NotEmpty(t, params)
	return params[0]
}

func responseTo(id int64, result string) domain.Message {
	raw, _ := json.Marshal(result)
	return domain.Message{ID: id, JSONRPC: domain.JSONRPCVersion, Result: raw}
}
