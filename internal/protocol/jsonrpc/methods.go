package jsonrpc

import "strings"

// SigningMethods ask the wallet to sign something on the user's behalf.
var SigningMethods = []string{
	"eth_sendTransaction",
	"eth_signTransaction",
	"eth_sign",
	"eth_signTypedData",
	"eth_signTypedData_v1",
	"eth_signTypedData_v2",
	"eth_signTypedData_v3",
	"eth_signTypedData_v4",
	"personal_sign",
}

// StateMethods change wallet state and need the user's attention.
var StateMethods = []string{
	"wallet_addEthereumChain",
	"wallet_switchEthereumChain",
	"wallet_getPermissions",
	"wallet_requestPermissions",
	"wallet_registerOnboarding",
	"wallet_watchAsset",
	"wallet_scanQRCode",
}

// Methods names the calls sent on a session.
const (
	MethodSessionRequest = "wc_sessionRequest"
	MethodSessionUpdate  = "wc_sessionUpdate"
	MethodInstantRequest = "wc_instantRequest"
	MethodUpdateChain    = "wallet_updateChain"
	MethodAccounts       = "eth_accounts"
	MethodChainID        = "eth_chainId"
)

// Policy decides which calls ask the relay for a push notification.
type Policy struct {
	signing map[string]struct{}
	push    map[string]struct{}
}

// NewPolicy returns a Policy where signing and state methods, plus extra,
// are pushed to the peer and every other call is silent.
func NewPolicy(extra ...string) Policy {
	p := Policy{signing: make(map[string]struct{}), push: make(map[string]struct{})}
	for _, m := range SigningMethods {
		p.signing[m] = struct{}{}
		p.push[m] = struct{}{}
	}
	for _, m := range StateMethods {
		p.push[m] = struct{}{}
	}
	for _, m := range extra {
		p.push[m] = struct{}{}
	}
	return p
}

// IsSilent reports whether a call to method is published without a push
// notification. Session management (wc_) calls always are.
func (p Policy) IsSilent(method string) bool {
	if strings.HasPrefix(method, "wc_") {
		return true
	}
	_, push := p.push[method]
	return !push
}

// IsSigning reports whether method is one of SigningMethods.
func (p Policy) IsSigning(method string) bool {
	_, ok := p.signing[method]
	return ok
}
