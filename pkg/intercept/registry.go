package intercept

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/jingkaihe/netmock/internal/errx"
	"github.com/jingkaihe/netmock/pkg/api"
	"github.com/jingkaihe/netmock/pkg/logging"
)

// Registry holds active interceptors grouped by origin, in insertion order.
// Lookup and consumption happen under one lock so two concurrent requests
// can never both consume the same once interceptor.
type Registry struct {
	mu       sync.Mutex
	byOrigin map[api.Origin][]*Interceptor
	order    []api.Origin

	logger  *slog.Logger
	emitter *logging.Emitter
}

// NewRegistry creates an empty registry. Both arguments may be nil.
func NewRegistry(logger *slog.Logger, emitter *logging.Emitter) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		byOrigin: make(map[api.Origin][]*Interceptor),
		logger:   logger.With("component", "registry"),
		emitter:  emitter,
	}
}

// Register validates ic and appends it to its origin's list. An interceptor
// can be registered once; registering it again is an error.
func (r *Registry) Register(ic *Interceptor) error {
	if ic == nil {
		return &RegistrationError{Err: api.ErrInvalidInterceptor}
	}
	if ic.id != "" {
		return &RegistrationError{
			Interceptor: ic.String(),
			Err:         errx.With(api.ErrInvalidInterceptor, ": already registered as %s", ic.id),
		}
	}
	ic.method = normalizeMethod(ic.method)
	if ic.mode == 0 {
		ic.mode, ic.times = ModeTimes, 1
	}
	if err := validateInterceptor(ic); err != nil {
		return &RegistrationError{Interceptor: ic.String(), Err: err}
	}

	r.mu.Lock()
	ic.id = uuid.NewString()
	ic.remaining = ic.times
	ic.matched = 0
	if _, ok := r.byOrigin[ic.origin]; !ok {
		r.order = append(r.order, ic.origin)
	}
	r.byOrigin[ic.origin] = append(r.byOrigin[ic.origin], ic)
	r.mu.Unlock()

	r.logger.Debug("interceptor registered", "id", ic.id, "interceptor", ic.String(), "mode", ic.modeLabel())
	if r.emitter != nil {
		_ = r.emitter.Emit(logging.EventInterceptorRegistered, "registered "+ic.String(), "registry", nil, &logging.InterceptorData{
			ID:     ic.id,
			Origin: ic.origin.String(),
			Method: ic.method,
			Path:   ic.path.String(),
			Mode:   ic.modeLabel(),
		})
	}
	return nil
}

// FindMatch returns the first interceptor for req's origin whose predicates
// all pass, consuming one use of it. Exhausted interceptors are removed
// before the lock is released. Returns nil when nothing matches.
func (r *Registry) FindMatch(req *api.Request) *Interceptor {
	if req == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byOrigin[req.Origin]
	for i, ic := range list {
		if !ic.Matches(req) {
			continue
		}
		ic.matched++
		if ic.mode == ModeTimes {
			ic.remaining--
			if ic.remaining <= 0 {
				r.removeAtLocked(req.Origin, i)
			}
		}
		return ic
	}
	return nil
}

// Remove drops ic if it is still registered.
func (r *Registry) Remove(ic *Interceptor) bool {
	if ic == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.Index(r.byOrigin[ic.origin], ic)
	if i < 0 {
		return false
	}
	r.removeAtLocked(ic.origin, i)
	return true
}

func (r *Registry) removeAtLocked(origin api.Origin, i int) {
	list := slices.Delete(r.byOrigin[origin], i, i+1)
	if len(list) > 0 {
		r.byOrigin[origin] = list
		return
	}
	delete(r.byOrigin, origin)
	r.order = slices.DeleteFunc(r.order, func(o api.Origin) bool { return o == origin })
}

// CleanOrigin removes every interceptor bound to origin and returns how
// many were removed.
func (r *Registry) CleanOrigin(origin api.Origin) int {
	r.mu.Lock()
	n := len(r.byOrigin[origin])
	if n > 0 {
		delete(r.byOrigin, origin)
		r.order = slices.DeleteFunc(r.order, func(o api.Origin) bool { return o == origin })
	}
	r.mu.Unlock()

	r.logger.Debug("origin cleaned", "origin", origin.String(), "removed", n)
	if r.emitter != nil {
		_ = r.emitter.Emit(logging.EventInterceptorsCleaned, "cleaned "+origin.String(), "registry", nil, &logging.CleanData{
			Origin:  origin.String(),
			Removed: n,
		})
	}
	return n
}

// CleanAll empties the registry and returns how many interceptors were
// removed.
func (r *Registry) CleanAll() int {
	r.mu.Lock()
	n := 0
	for _, list := range r.byOrigin {
		n += len(list)
	}
	r.byOrigin = make(map[api.Origin][]*Interceptor)
	r.order = nil
	r.mu.Unlock()

	r.logger.Debug("registry cleaned", "removed", n)
	if r.emitter != nil {
		_ = r.emitter.Emit(logging.EventInterceptorsCleaned, "cleaned all interceptors", "registry", nil, &logging.CleanData{
			Removed: n,
		})
	}
	return n
}

// Active returns the registered interceptors, grouped by origin in the
// order origins were first registered.
func (r *Registry) Active() []*Interceptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Interceptor
	for _, origin := range r.order {
		out = append(out, r.byOrigin[origin]...)
	}
	return out
}

// Pending lists interceptors still waiting to be used: counted
// interceptors with uses left, and persistent ones that never matched.
func (r *Registry) Pending() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string
	for _, origin := range r.order {
		for _, ic := range r.byOrigin[origin] {
			if pendingLocked(ic) {
				out = append(out, ic.String())
			}
		}
	}
	return out
}

// IsDone reports whether no interceptor is pending.
func (r *Registry) IsDone() bool {
	return len(r.Pending()) == 0
}

func (r *Registry) isOriginDone(origin api.Origin) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ic := range r.byOrigin[origin] {
		if pendingLocked(ic) {
			return false
		}
	}
	return true
}

func pendingLocked(ic *Interceptor) bool {
	if ic.mode == ModePersist {
		return ic.matched == 0
	}
	return ic.remaining > 0
}

// Matched returns how many requests ic has answered.
func (r *Registry) Matched(ic *Interceptor) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ic.matched
}
