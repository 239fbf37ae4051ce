package events

import (
	"sync"

	"wconnect/internal/domain"
)

// Callback receives a dispatched message. Error responses arrive as
// (*domain.JSONRPCError, nil); everything else as (nil, msg).
type Callback func(err error, msg *domain.Message)

type subscriber struct {
	id int
	cb Callback
}

// Bus dispatches messages to subscribers by event name, response id or
// JSON-RPC method.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string][]subscriber
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string][]subscriber)}
}

// Key derives the dispatch key of msg. It is empty when msg carries
// nothing to dispatch on.
func Key(msg *domain.Message) string {
	switch {
	case msg.IsRequest():
		return msg.Method
	case msg.IsResponse():
		return Response(msg.ID)
	case msg.IsEvent():
		return msg.Event
	}
	return ""
}

// Subscribe registers cb for event. The returned func removes only this
// subscription.
func (b *Bus) Subscribe(event string, cb Callback) (cancel func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[event] = append(b.subs[event], subscriber{id: id, cb: cb})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(event, id) })
	}
}

// Unsubscribe removes every subscriber of event.
func (b *Bus) Unsubscribe(event string) {
	b.mu.Lock()
	delete(b.subs, event)
	b.mu.Unlock()
}

// Subscribers reports how many callbacks are registered for event.
func (b *Bus) Subscribers(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[event])
}

// Trigger dispatches msg. Callbacks run on the calling goroutine, outside
// the bus lock. It reports whether any subscriber received msg.
func (b *Bus) Trigger(msg *domain.Message) bool {
	key := Key(msg)
	if key == "" {
		return false
	}

	b.mu.Lock()
	targets := append([]subscriber(nil), b.subs[key]...)
	if len(targets) == 0 && msg.IsRequest() && !IsReserved(key) {
		targets = append(targets, b.subs[CallRequest]...)
	}
	b.mu.Unlock()

	for _, s := range targets {
		if msg.Error != nil {
			s.cb(msg.Error, nil)
			continue
		}
		s.cb(nil, msg)
	}
	return len(targets) > 0
}

func (b *Bus) remove(event string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[event]
	for i, s := range subs {
		if s.id == id {
			b.subs[event] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[event]) == 0 {
		delete(b.subs, event)
	}
}
