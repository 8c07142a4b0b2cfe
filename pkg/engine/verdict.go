package engine

import (
	"github.com/jingkaihe/netmock/pkg/api"
	"github.com/jingkaihe/netmock/pkg/intercept"
)

// Action classifies an outgoing request.
type Action int

const (
	// ActionMocked means an interceptor answered the request.
	ActionMocked Action = iota + 1
	// ActionPassthrough means the request may reach the real network.
	ActionPassthrough
	// ActionBlocked means the request must fail with Err.
	ActionBlocked
)

func (a Action) String() string {
	switch a {
	case ActionMocked:
		return "mocked"
	case ActionPassthrough:
		return "passthrough"
	case ActionBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Verdict is the outcome of Engine.Decide.
//
// For ActionMocked, Interceptor is set and either Response or Err holds the
// reply (Err when the interceptor was declared with ReplyError or its reply
// function failed). For ActionBlocked, Err is a *DisallowedNetConnectError.
type Verdict struct {
	Action      Action
	Request     *api.Request
	Interceptor *intercept.Interceptor
	Response    *intercept.Response
	Err         error
}
