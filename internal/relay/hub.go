package relay

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"wconnect/internal/domain"
)

// peer is one relay WebSocket connection.
type peer struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *peer) send(msg domain.SocketMessage, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(timeout))
	return p.conn.WriteJSON(msg)
}

type queued struct {
	msg domain.SocketMessage
	at  time.Time
}

// hub routes published frames to topic subscribers. Frames published on a
// topic nobody else listens to are held until someone subscribes or the
// ttl passes.
type hub struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	topics  map[string]map[*peer]struct{}
	pending map[string][]queued
}

func newHub(ttl time.Duration) *hub {
	return &hub{
		ttl:     ttl,
		now:     time.Now,
		topics:  make(map[string]map[*peer]struct{}),
		pending: make(map[string][]queued),
	}
}

// subscribe registers p on topic and returns the frames held for it.
func (h *hub) subscribe(p *peer, topic string) []domain.SocketMessage {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*peer]struct{})
		h.topics[topic] = subs
	}
	subs[p] = struct{}{}

	held := h.live(topic)
	delete(h.pending, topic)
	out := make([]domain.SocketMessage, 0, len(held))
	for _, q := range held {
		out = append(out, q.msg)
	}
	return out
}

// publish returns the peers msg must be written to. With no subscriber other
// than from, msg is held and no peers are returned.
func (h *hub) publish(from *peer, msg domain.SocketMessage) []*peer {
	h.mu.Lock()
	defer h.mu.Unlock()

	var targets []*peer
	for p := range h.topics[msg.Topic] {
		if p != from {
			targets = append(targets, p)
		}
	}
	if len(targets) == 0 {
		h.pending[msg.Topic] = append(h.live(msg.Topic), queued{msg: msg, at: h.now()})
	}
	return targets
}

// drop forgets p on every topic.
func (h *hub) drop(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, subs := range h.topics {
		delete(subs, p)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

// held reports how many frames wait on topic.
func (h *hub) held(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live(topic))
}

// prune drops expired frames on every topic and reports how many went.
// Frames for a topic nobody subscribes to again would otherwise stay.
func (h *hub) prune() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	dropped := 0
	for topic, q := range h.pending {
		live := h.live(topic)
		dropped += len(q) - len(live)
		if len(live) == 0 {
			delete(h.pending, topic)
			continue
		}
		h.pending[topic] = live
	}
	return dropped
}

// heldTopics reports how many topics have frames waiting.
func (h *hub) heldTopics() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}

// live returns the unexpired frames held for topic. Callers hold h.mu.
func (h *hub) live(topic string) []queued {
	q := h.pending[topic]
	if h.ttl <= 0 {
		return q
	}
	cutoff := h.now().Add(-h.ttl)
	i := 0
	for i < len(q) && q[i].at.Before(cutoff) {
		i++
	}
	return q[i:]
}
