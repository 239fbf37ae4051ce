package events_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wconnect/internal/domain"
	"wconnect/internal/events"
)

type recorder struct {
	errs []error
	msgs []*domain.Message
}

func (r *recorder) cb(err error, msg *domain.Message) {
	r.errs = append(r.errs, err)
	r.msgs = append(r.msgs, msg)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "eth_sign", events.Key(&domain.Message{ID: 1, Method: "eth_sign"}))
	assert.Equal(t, "response:7", events.Key(&domain.Message{ID: 7, Result: json.RawMessage(`"0x"`)}))
	assert.Equal(t, "response:8", events.Key(&domain.Message{ID: 8, Error: &domain.JSONRPCError{Message: "no"}}))
	assert.Equal(t, "connect", events.Key(&domain.Message{Event: events.Connect}))
	assert.Empty(t, events.Key(&domain.Message{ID: 9}))
}

func TestTriggerDeliversByMethod(t *testing.T) {
	bus := events.NewBus()
	var r recorder
	bus.Subscribe("eth_sign", r.cb)

	msg := &domain.Message{ID: 1, Method: "eth_sign", Params: json.RawMessage(`[]`)}
	assert.True(t, bus.Trigger(msg))
	require.Len(t, r.msgs, 1)
	assert.Nil(t, r.errs[0])
	assert.Same(t, msg, r.msgs[0])
}

func TestTriggerErrorResponse(t *testing.T) {
	bus := events.NewBus()
	var r recorder
	bus.Subscribe(events.Response(3), r.cb)

	bus.Trigger(&domain.Message{ID: 3, Error: &domain.JSONRPCError{Code: -32000, Message: "User rejected"}})
	require.Len(t, r.errs, 1)
	assert.Nil(t, r.msgs[0])
	var rpcErr *domain.JSONRPCError
	require.ErrorAs(t, r.errs[0], &rpcErr)
	assert.Equal(t, "User rejected", rpcErr.Message)
}

func TestUnmatchedRequestFallsBackToCallRequest(t *testing.T) {
	bus := events.NewBus()
	var r recorder
	bus.Subscribe(events.CallRequest, r.cb)

	bus.Trigger(&domain.Message{ID: 1, Method: "eth_sendTransaction"})
	assert.Len(t, r.msgs, 1)

	// reserved and wc_ methods never fall back
	bus.Trigger(&domain.Message{ID: 2, Method: "wc_sessionUpdate"})
	bus.Trigger(&domain.Message{ID: 3, Method: events.SessionRequest})
	// responses and events never fall back
	assert.False(t, bus.Trigger(&domain.Message{ID: 4, Result: json.RawMessage(`true`)}))
	bus.Trigger(&domain.Message{Event: "custom"})
	assert.Len(t, r.msgs, 1)
}

func TestSubscribedMethodSkipsFallback(t *testing.T) {
	bus := events.NewBus()
	var direct, fallback recorder
	bus.Subscribe("personal_sign", direct.cb)
	bus.Subscribe(events.CallRequest, fallback.cb)

	bus.Trigger(&domain.Message{ID: 1, Method: "personal_sign"})
	assert.Len(t, direct.msgs, 1)
	assert.Empty(t, fallback.msgs)
}

func TestUnsubscribeRemovesAll(t *testing.T) {
	bus := events.NewBus()
	var a, b recorder
	bus.Subscribe(events.Connect, a.cb)
	bus.Subscribe(events.Connect, b.cb)
	require.Equal(t, 2, bus.Subscribers(events.Connect))

	bus.Unsubscribe(events.Connect)
	assert.False(t, bus.Trigger(&domain.Message{Event: events.Connect}))
	assert.Empty(t, a.msgs)
	assert.Empty(t, b.msgs)
}

func TestCancelRemovesOnlyOne(t *testing.T) {
	bus := events.NewBus()
	var a, b recorder
	cancel := bus.Subscribe(events.Disconnect, a.cb)
	bus.Subscribe(events.Disconnect, b.cb)

	cancel()
	cancel()
	bus.Trigger(&domain.Message{Event: events.Disconnect})
	assert.Empty(t, a.msgs)
	assert.Len(t, b.msgs, 1)
}

func TestCallbacksMayReenterBus(t *testing.T) {
	bus := events.NewBus()
	var inner recorder
	var cancel func()
	cancel = bus.Subscribe(events.Response(5), func(err error, msg *domain.Message) {
		cancel()
		bus.Subscribe("later", inner.cb)
		bus.Trigger(&domain.Message{Event: "later"})
	})

	bus.Trigger(&domain.Message{ID: 5, Result: json.RawMessage(`1`)})
	assert.Len(t, inner.msgs, 1)
	assert.Zero(t, bus.Subscribers(events.Response(5)))
	assert.False(t, bus.Trigger(&domain.Message{ID: 5, Result: json.RawMessage(`1`)}))
}

func TestIsReserved(t *testing.T) {
	for _, name := range []string{events.Connect, events.DisplayURI, events.TransportError, "wc_anything"} {
		assert.True(t, events.IsReserved(name), name)
	}
	for _, name := range []string{"eth_sign", events.CallRequest, "response:1"} {
		assert.False(t, events.IsReserved(name), name)
	}
}
