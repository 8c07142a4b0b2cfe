package intercept

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/jingkaihe/netmock/internal/errx"
	"github.com/jingkaihe/netmock/pkg/api"
)

// Scope declares interceptors for one origin.
//
//	scope, _ := intercept.NewScope(reg, "https://api.example.test")
//	_, err := scope.Get("/users/1").Reply(200, `{"id":1}`, nil)
type Scope struct {
	registry *Registry
	origin   api.Origin

	persist      bool
	headers      []HeaderMatcher
	replyHeaders http.Header
}

// NewScope parses origin and binds a declaration scope to reg.
func NewScope(reg *Registry, origin string) (*Scope, error) {
	if reg == nil {
		return nil, errx.With(api.ErrInvalidInterceptor, ": nil registry")
	}
	o, err := api.ParseOrigin(origin)
	if err != nil {
		return nil, err
	}
	return &Scope{registry: reg, origin: o}, nil
}

// Origin returns the scope's origin.
func (s *Scope) Origin() api.Origin { return s.origin }

// Persist makes interceptors declared afterwards persistent.
func (s *Scope) Persist() *Scope {
	s.persist = true
	return s
}

// MatchHeader requires a header on every interceptor declared afterwards.
func (s *Scope) MatchHeader(key, value string) *Scope {
	s.headers = append(s.headers, HeaderEquals(key, value))
	return s
}

// DefaultReplyHeaders are merged under the headers of every static reply
// declared afterwards.
func (s *Scope) DefaultReplyHeaders(h http.Header) *Scope {
	s.replyHeaders = h.Clone()
	return s
}

// Done reports whether every interceptor of this origin has been used.
func (s *Scope) Done() bool {
	return s.registry.isOriginDone(s.origin)
}

// Clean removes every interceptor of this origin.
func (s *Scope) Clean() int {
	return s.registry.CleanOrigin(s.origin)
}

func (s *Scope) Get(path string) *InterceptorBuilder     { return s.method(http.MethodGet, path) }
func (s *Scope) Post(path string) *InterceptorBuilder    { return s.method(http.MethodPost, path) }
func (s *Scope) Put(path string) *InterceptorBuilder     { return s.method(http.MethodPut, path) }
func (s *Scope) Patch(path string) *InterceptorBuilder   { return s.method(http.MethodPatch, path) }
func (s *Scope) Delete(path string) *InterceptorBuilder  { return s.method(http.MethodDelete, path) }
func (s *Scope) Head(path string) *InterceptorBuilder    { return s.method(http.MethodHead, path) }
func (s *Scope) Options(path string) *InterceptorBuilder { return s.method(http.MethodOptions, path) }

// Intercept starts an interceptor for an arbitrary method and path matcher.
func (s *Scope) Intercept(method string, path PathMatcher) *InterceptorBuilder {
	b := s.builder(method)
	b.ic.path = path
	return b
}

// method handles the string path form, where "?" introduces an exact query.
func (s *Scope) method(method, path string) *InterceptorBuilder {
	b := s.builder(method)
	p, q, hasQuery := strings.Cut(path, "?")
	b.ic.path = ExactPath(p)
	if hasQuery {
		values, err := url.ParseQuery(q)
		if err != nil {
			b.fail(errx.With(api.ErrInvalidInterceptor, ": query %q: %w", q, err))
		}
		b.ic.query = ExactQuery(values)
	}
	return b
}

func (s *Scope) builder(method string) *InterceptorBuilder {
	ic := &Interceptor{
		origin:  s.origin,
		method:  normalizeMethod(method),
		headers: append([]HeaderMatcher(nil), s.headers...),
		mode:    ModeTimes,
		times:   1,
	}
	if s.persist {
		ic.mode = ModePersist
	}
	return &InterceptorBuilder{scope: s, ic: ic}
}

// InterceptorBuilder accumulates predicates until a Reply* call registers
// the interceptor. The first error is kept and reported by the reply call.
type InterceptorBuilder struct {
	scope *Scope
	ic    *Interceptor
	err   error
}

func (b *InterceptorBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Query requires exactly these query values.
func (b *InterceptorBuilder) Query(values url.Values) *InterceptorBuilder {
	b.ic.query = ExactQuery(values)
	return b
}

// QueryFunc accepts the query when fn returns true.
func (b *InterceptorBuilder) QueryFunc(fn func(url.Values) bool) *InterceptorBuilder {
	if fn == nil {
		b.fail(errx.With(api.ErrInvalidInterceptor, ": nil query func"))
		return b
	}
	b.ic.query = QueryFunc(fn)
	return b
}

// AnyQuery accepts any query string.
func (b *InterceptorBuilder) AnyQuery() *InterceptorBuilder {
	b.ic.query = AnyQuery()
	return b
}

// MatchHeader requires a header value.
func (b *InterceptorBuilder) MatchHeader(key, value string) *InterceptorBuilder {
	b.ic.headers = append(b.ic.headers, HeaderEquals(key, value))
	return b
}

// MatchHeaderRegexp requires a header value matching re.
func (b *InterceptorBuilder) MatchHeaderRegexp(key string, re *regexp.Regexp) *InterceptorBuilder {
	if re == nil {
		b.fail(errx.With(api.ErrInvalidInterceptor, ": nil regexp for header %q", key))
		return b
	}
	b.ic.headers = append(b.ic.headers, HeaderRegexp(key, re))
	return b
}

// Body sets the body matcher.
func (b *InterceptorBuilder) Body(m BodyMatcher) *InterceptorBuilder {
	b.ic.body = m
	return b
}

// Times makes the interceptor answer n requests.
func (b *InterceptorBuilder) Times(n int) *InterceptorBuilder {
	b.ic.mode, b.ic.times = ModeTimes, n
	return b
}

func (b *InterceptorBuilder) Once() *InterceptorBuilder   { return b.Times(1) }
func (b *InterceptorBuilder) Twice() *InterceptorBuilder  { return b.Times(2) }
func (b *InterceptorBuilder) Thrice() *InterceptorBuilder { return b.Times(3) }

// Persist keeps the interceptor until it is cleaned.
func (b *InterceptorBuilder) Persist() *InterceptorBuilder {
	b.ic.mode, b.ic.times = ModePersist, 0
	return b
}

// Reply registers a static reply.
func (b *InterceptorBuilder) Reply(status int, body string, header http.Header) (*Interceptor, error) {
	h := b.scope.replyHeaders.Clone()
	if h == nil {
		h = make(http.Header)
	}
	for k, vs := range header {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	b.ic.reply = &Response{StatusCode: status, Header: h, Body: []byte(body)}
	return b.register()
}

// ReplyJSON registers a reply with v encoded as JSON.
func (b *InterceptorBuilder) ReplyJSON(status int, v any) (*Interceptor, error) {
	return b.ReplyJSONWith(status, v, nil)
}

// ReplyJSONWith encodes v and then sets each override, keyed by sjson path,
// on the encoded document.
func (b *InterceptorBuilder) ReplyJSONWith(status int, v any, overrides map[string]any) (*Interceptor, error) {
	doc, err := json.Marshal(v)
	if err != nil {
		b.fail(errx.With(api.ErrInvalidInterceptor, ": encode reply: %w", err))
		return b.register()
	}
	for path, val := range overrides {
		doc, err = sjson.SetBytes(doc, path, val)
		if err != nil {
			b.fail(errx.With(api.ErrInvalidInterceptor, ": set %q: %w", path, err))
			return b.register()
		}
	}
	return b.Reply(status, string(doc), http.Header{"Content-Type": {"application/json"}})
}

// ReplyFunc registers a reply computed from the matched request.
func (b *InterceptorBuilder) ReplyFunc(fn ReplyFunc) (*Interceptor, error) {
	if fn == nil {
		b.fail(errx.With(api.ErrInvalidInterceptor, ": nil reply func"))
	}
	b.ic.replyFn = fn
	return b.register()
}

// ReplyError makes matching requests fail with err instead of a response.
func (b *InterceptorBuilder) ReplyError(err error) (*Interceptor, error) {
	if err == nil {
		b.fail(errx.With(api.ErrInvalidInterceptor, ": nil reply error"))
	}
	b.ic.replyErr = err
	return b.register()
}

func (b *InterceptorBuilder) register() (*Interceptor, error) {
	if b.err != nil {
		return nil, &RegistrationError{Interceptor: b.ic.String(), Err: b.err}
	}
	if err := b.scope.registry.Register(b.ic); err != nil {
		return nil, err
	}
	return b.ic, nil
}
