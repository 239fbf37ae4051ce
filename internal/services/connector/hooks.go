package connector

import (
	"context"
	"time"

	"wconnect/internal/domain"
	"wconnect/internal/events"
	"wconnect/internal/protocol/jsonrpc"
)

const pushTimeout = 10 * time.Second

// registerHooks subscribes the connector's own reactions. They are
// registered before any caller subscription and so run first.
func (c *Connector) registerHooks() {
	c.bus.Subscribe(jsonrpc.MethodSessionRequest, c.onSessionRequest)
	c.bus.Subscribe(jsonrpc.MethodSessionUpdate, c.onSessionUpdate)
	c.bus.Subscribe(jsonrpc.MethodInstantRequest, c.onInstantRequest)
	c.bus.Subscribe(events.Connect, c.onConnect)
	if c.modal != nil {
		c.bus.Subscribe(events.DisplayURI, c.onDisplayURI)
	}
	if c.opts.Mobile {
		c.bus.Subscribe(events.CallRequestSent, c.onCallRequestSent)
	}
}

func (c *Connector) onConnect(_ error, msg *domain.Message) {
	if c.modal != nil {
		c.modal.Close()
	}
	if c.opts.PushServer == nil || c.push == nil {
		return
	}
	var params []domain.SessionStatus
	if err := msg.DecodeParams(&params); err != nil || len(params) == 0 {
		return
	}

	ps := c.opts.PushServer
	reg := domain.PushRegistration{
		Bridge:   c.Bridge(),
		Topic:    c.ClientID(),
		Type:     ps.Type,
		Token:    ps.Token,
		Language: ps.Language,
	}
	if ps.PeerMeta && params[0].PeerMeta != nil {
		reg.PeerName = params[0].PeerMeta.Name
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		if err := c.push.Register(ctx, reg); err != nil {
			c.log.Warn().Err(err).Str("push_server", ps.URL).Msg("failed to register in push server")
			return
		}
		c.log.Debug().Str("push_server", ps.URL).Msg("registered in push server")
	}()
}

func (c *Connector) onDisplayURI(_ error, msg *domain.Message) {
	var params []string
	if err := msg.DecodeParams(&params); err != nil || len(params) == 0 {
		return
	}
	c.modal.Open(params[0], func() { c.emit(events.ModalClosed) })
}

// onCallRequestSent sends the user to their wallet app after a signing
// request, using the wallet link they picked last. The call does not wait
// for the link to open.
func (c *Connector) onCallRequestSent(_ error, msg *domain.Message) {
	if c.links == nil || c.opener == nil {
		return
	}
	var params []callRequestSent
	if err := msg.DecodeParams(&params); err != nil || len(params) == 0 {
		return
	}
	if !c.policy.IsSigning(params[0].Request.Method) {
		return
	}
	go func() {
		link, ok, err := c.links.LoadDeepLink()
		if err != nil || !ok {
			if err != nil {
				c.log.Warn().Err(err).Msg("load deep link")
			}
			return
		}
		if err := c.opener(link.Href); err != nil {
			c.log.Warn().Err(err).Str("wallet", link.Name).Msg("open deep link")
		}
	}()
}
