// Package netmock intercepts outgoing HTTP requests in tests, answers them
// from declared interceptors and enforces which real hosts may be reached
// when nothing matches.
//
//	netmock.Activate()
//	defer netmock.Restore()
//	netmock.DisableNetConnect()
//
//	scope, _ := netmock.New("https://api.example.test")
//	scope.Get("/users/1").ReplyJSON(200, map[string]any{"id": 1})
//
// Package-level functions act on a process-wide default Instance. Tests that
// run in parallel should each use their own Instance and Client.
package netmock

import (
	"log/slog"
	"net/http"
	"regexp"

	"github.com/jingkaihe/netmock/pkg/api"
	"github.com/jingkaihe/netmock/pkg/engine"
	"github.com/jingkaihe/netmock/pkg/intercept"
	"github.com/jingkaihe/netmock/pkg/logging"
	"github.com/jingkaihe/netmock/pkg/policy"
	"github.com/jingkaihe/netmock/pkg/transport"
)

// Instance bundles a registry, a net-connect policy and the transport that
// consults them.
type Instance struct {
	registry  *intercept.Registry
	policy    *policy.NetConnect
	engine    *engine.Engine
	transport *transport.Transport
	logger    *slog.Logger
}

type options struct {
	logger  *slog.Logger
	emitter *logging.Emitter
	base    http.RoundTripper
}

// Option configures an Instance.
type Option func(*options)

// WithLogger sets the logger used by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithEmitter records decisions and registrations as structured events.
func WithEmitter(emitter *logging.Emitter) Option {
	return func(o *options) { o.emitter = emitter }
}

// WithBaseTransport sets the RoundTripper used for passthrough requests.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

// NewInstance creates an isolated Instance with an unrestricted policy.
func NewInstance(opts ...Option) *Instance {
	o := buildOptions(opts)
	return newInstance(policy.NewNetConnect(o.logger), o)
}

// NewInstanceFromConfig creates an Instance whose policy is seeded from
// cfg.NetConnect.
func NewInstanceFromConfig(cfg *api.Config, opts ...Option) (*Instance, error) {
	if cfg == nil {
		cfg = &api.Config{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	pol, err := policy.NewNetConnectFromConfig(cfg.NetConnect, o.logger)
	if err != nil {
		return nil, err
	}
	return newInstance(pol, o), nil
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

func newInstance(pol *policy.NetConnect, o *options) *Instance {
	reg := intercept.NewRegistry(o.logger, o.emitter)
	eng := engine.New(reg, pol, o.logger, o.emitter)
	return &Instance{
		registry:  reg,
		policy:    pol,
		engine:    eng,
		transport: transport.New(eng, o.base, o.logger),
		logger:    o.logger.With("component", "netmock"),
	}
}

// New returns a Scope for declaring interceptors on origin.
func (i *Instance) New(origin string) (*intercept.Scope, error) {
	return intercept.NewScope(i.registry, origin)
}

// DisableNetConnect blocks every request no interceptor answers.
func (i *Instance) DisableNetConnect() {
	i.policy.Disable()
}

// EnableNetConnect with no hosts lifts every restriction. Otherwise each
// host is added to the allow-list and all other unmocked requests are
// blocked. Hosts use allow-entry syntax: a plain string matches hosts that
// contain it, "/expr/" is a regular expression and "all" matches everything.
// Invalid hosts are logged and ignored.
func (i *Instance) EnableNetConnect(hosts ...string) {
	entries := make([]policy.Entry, 0, len(hosts))
	for _, h := range hosts {
		e, err := policy.ParseEntry(h)
		if err != nil {
			i.logger.Warn("ignoring invalid net connect host", "host", h, "error", err)
		}
		entries = append(entries, e)
	}
	i.policy.Enable(entries...)
}

// EnableNetConnectRegexp allows hosts matching re.
func (i *Instance) EnableNetConnectRegexp(re *regexp.Regexp) {
	e, err := policy.Regexp(re)
	if err != nil {
		i.logger.Warn("ignoring invalid net connect pattern", "error", err)
	}
	i.policy.Enable(e)
}

// CleanAll removes every interceptor and resets the net-connect policy.
func (i *Instance) CleanAll() {
	i.registry.CleanAll()
	i.policy.Reset()
}

// PendingMocks lists interceptors that have not been used up.
func (i *Instance) PendingMocks() []string {
	return i.registry.Pending()
}

// IsDone reports whether every interceptor has been used.
func (i *Instance) IsDone() bool {
	return i.registry.IsDone()
}

// ActiveMocks lists every registered interceptor.
func (i *Instance) ActiveMocks() []string {
	active := i.registry.Active()
	out := make([]string, 0, len(active))
	for _, ic := range active {
		out = append(out, ic.String())
	}
	return out
}

// Transport returns the RoundTripper that routes requests through this
// Instance.
func (i *Instance) Transport() *transport.Transport { return i.transport }

// Engine returns the decision engine.
func (i *Instance) Engine() *engine.Engine { return i.engine }

// Registry returns the interceptor registry.
func (i *Instance) Registry() *intercept.Registry { return i.registry }

// Policy returns the net-connect policy.
func (i *Instance) Policy() *policy.NetConnect { return i.policy }

// Client returns an *http.Client routed through this Instance.
func (i *Instance) Client() *http.Client {
	return &http.Client{Transport: i.transport}
}

// Activate installs this Instance's transport as http.DefaultTransport.
func (i *Instance) Activate() {
	transport.Activate(i.transport)
	i.logger.Debug("activated")
}

// Decide classifies req without performing it.
func (i *Instance) Decide(req *api.Request) engine.Verdict {
	return i.engine.Decide(req)
}
