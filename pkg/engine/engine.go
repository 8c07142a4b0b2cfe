package engine

import (
	"log/slog"

	"github.com/jingkaihe/netmock/internal/errx"
	"github.com/jingkaihe/netmock/pkg/api"
	"github.com/jingkaihe/netmock/pkg/intercept"
	"github.com/jingkaihe/netmock/pkg/logging"
	"github.com/jingkaihe/netmock/pkg/policy"
)

// Engine classifies outgoing requests. Registered interceptors always win
// over the net-connect policy; the policy is only consulted when nothing
// matches.
type Engine struct {
	registry *intercept.Registry
	policy   *policy.NetConnect
	logger   *slog.Logger
	emitter  *logging.Emitter
}

// New creates an engine over reg and pol. logger and emitter may be nil.
func New(reg *intercept.Registry, pol *policy.NetConnect, logger *slog.Logger, emitter *logging.Emitter) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		registry: reg,
		policy:   pol,
		logger:   logger.With("component", "engine"),
		emitter:  emitter,
	}
}

// Registry returns the interceptor registry consulted first.
func (e *Engine) Registry() *intercept.Registry { return e.registry }

// Policy returns the net-connect policy consulted on a miss.
func (e *Engine) Policy() *policy.NetConnect { return e.policy }

// Decide returns the verdict for req. A matching once or times(n)
// interceptor is consumed by the call.
func (e *Engine) Decide(req *api.Request) Verdict {
	if req == nil {
		err := errx.With(api.ErrInvalidRequest, ": nil request")
		e.logger.Warn("request rejected", "error", err)
		return Verdict{Action: ActionBlocked, Err: err}
	}

	if ic := e.registry.FindMatch(req); ic != nil {
		resp, err := ic.Respond(req)
		v := Verdict{Action: ActionMocked, Request: req, Interceptor: ic, Response: resp, Err: err}
		e.record(v, "")
		return v
	}

	entry, ok := e.policy.Match(req.Host())
	if ok {
		v := Verdict{Action: ActionPassthrough, Request: req}
		pattern := ""
		if entry.IsValid() {
			pattern = entry.String()
		}
		e.record(v, pattern)
		return v
	}

	v := Verdict{Action: ActionBlocked, Request: req, Err: newDisallowedNetConnectError(req)}
	e.record(v, "")
	return v
}

func (e *Engine) record(v Verdict, pattern string) {
	req := v.Request
	data := &logging.DecisionData{
		Method:  req.Method,
		Host:    req.Host(),
		Port:    req.Port(),
		Path:    req.PathWithQuery(),
		Verdict: v.Action.String(),
		Pattern: pattern,
	}

	var eventType string
	switch v.Action {
	case ActionMocked:
		eventType = logging.EventRequestMocked
		data.InterceptorID = v.Interceptor.ID()
		if v.Response != nil {
			data.StatusCode = v.Response.StatusCode
		}
		if v.Err != nil {
			data.Reason = v.Err.Error()
		}
		e.logger.Info("request mocked",
			"request", req.String(),
			"interceptor", v.Interceptor.ID(),
			"status", data.StatusCode,
			"reply_error", v.Err,
		)
	case ActionPassthrough:
		eventType = logging.EventRequestPassthrough
		e.logger.Debug("request passthrough", "request", req.String(), "pattern", pattern)
	case ActionBlocked:
		eventType = logging.EventRequestBlocked
		data.Reason = v.Err.Error()
		e.logger.Warn("request blocked", "request", req.String(), "error", v.Err)
	}

	if e.emitter != nil {
		_ = e.emitter.Emit(eventType, v.Action.String()+" "+req.String(), "engine", nil, data)
	}
}
