package intercept

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jingkaihe/netmock/internal/errx"
	"github.com/jingkaihe/netmock/pkg/api"
)

// Response is a canned reply delivered in place of a real round trip.
type Response struct {
	StatusCode int `validate:"min=100,max=599"`
	Header     http.Header
	Body       []byte
}

// Clone returns a deep copy.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	return &Response{
		StatusCode: r.StatusCode,
		Header:     r.Header.Clone(),
		Body:       bytes.Clone(r.Body),
	}
}

// ReplyFunc builds a reply from the matched request.
type ReplyFunc func(req *api.Request) (*Response, error)

// Mode is an interceptor's consumption policy.
type Mode int

const (
	// ModeTimes consumes the interceptor after a fixed number of matches.
	// Once is ModeTimes with a count of one.
	ModeTimes Mode = iota + 1
	// ModePersist never consumes the interceptor.
	ModePersist
)

func (m Mode) String() string {
	switch m {
	case ModeTimes:
		return "times"
	case ModePersist:
		return "persist"
	default:
		return "unknown"
	}
}

// Interceptor is a single request-matching rule plus its reply. Matching
// fields are immutable once registered; use counters are owned by the
// Registry.
type Interceptor struct {
	id      string
	origin  api.Origin
	method  string
	path    PathMatcher
	query   QueryMatcher
	headers []HeaderMatcher
	body    BodyMatcher

	reply    *Response
	replyFn  ReplyFunc
	replyErr error

	mode  Mode
	times int

	// Guarded by Registry.mu.
	remaining int
	matched   int
}

// ID returns the identifier assigned at registration.
func (ic *Interceptor) ID() string { return ic.id }

// Origin returns the origin the interceptor is bound to.
func (ic *Interceptor) Origin() api.Origin { return ic.origin }

// Method returns the uppercase HTTP method.
func (ic *Interceptor) Method() string { return ic.method }

// Mode returns the consumption policy.
func (ic *Interceptor) Mode() Mode { return ic.mode }

// String renders "METHOD origin/path" for logs and pending lists.
func (ic *Interceptor) String() string {
	s := ic.method + " " + ic.origin.String() + ic.path.String()
	if q := ic.query.String(); q != "" {
		s += "?" + q
	}
	return s
}

func (ic *Interceptor) modeLabel() string {
	if ic.mode == ModePersist {
		return ModePersist.String()
	}
	if ic.times == 1 {
		return "once"
	}
	return ModeTimes.String() + "(" + strconv.Itoa(ic.times) + ")"
}

// Matches reports whether req satisfies every predicate. It does not
// consume the interceptor.
func (ic *Interceptor) Matches(req *api.Request) bool {
	if req == nil || req.Origin != ic.origin || req.Method != ic.method {
		return false
	}
	if !ic.path.Match(req.Path) || !ic.query.Match(req.RawQuery) {
		return false
	}
	for _, h := range ic.headers {
		if !h.Match(req) {
			return false
		}
	}
	return ic.body.Match(req.Body())
}

// Respond produces the reply for req. Reply errors configured with
// ReplyError are returned as is.
func (ic *Interceptor) Respond(req *api.Request) (*Response, error) {
	if ic.replyErr != nil {
		return nil, ic.replyErr
	}
	if ic.replyFn != nil {
		resp, err := ic.replyFn(req)
		if err != nil {
			return nil, err
		}
		if resp == nil {
			return nil, errx.With(api.ErrInvalidInterceptor, ": reply function for %s returned no response", ic)
		}
		if err := validate.Struct(resp); err != nil {
			return nil, errx.With(api.ErrInvalidInterceptor, ": reply function for %s: %w", ic, err)
		}
		return resp.Clone(), nil
	}
	return ic.reply.Clone(), nil
}

var validate = validator.New()

func validateInterceptor(ic *Interceptor) error {
	if ic.origin.IsZero() {
		return errx.With(api.ErrInvalidOrigin, ": interceptor has no origin")
	}
	if !validMethod(ic.method) {
		return errx.With(api.ErrInvalidMethod, ": %q", ic.method)
	}
	if !ic.path.valid() {
		return errx.With(api.ErrInvalidInterceptor, ": missing path matcher")
	}
	for _, h := range ic.headers {
		if !h.valid() {
			return errx.With(api.ErrInvalidInterceptor, ": header matcher without a name")
		}
	}

	replies := 0
	if ic.reply != nil {
		replies++
		if err := validate.Struct(ic.reply); err != nil {
			return errx.With(api.ErrInvalidInterceptor, ": reply status %d: %w", ic.reply.StatusCode, err)
		}
	}
	if ic.replyFn != nil {
		replies++
	}
	if ic.replyErr != nil {
		replies++
	}
	switch {
	case replies == 0:
		return errx.With(api.ErrInvalidInterceptor, ": no reply configured")
	case replies > 1:
		return errx.With(api.ErrInvalidInterceptor, ": conflicting replies configured")
	}

	switch ic.mode {
	case ModePersist:
	case ModeTimes:
		if ic.times < 1 {
			return errx.With(api.ErrInvalidInterceptor, ": times must be at least 1, got %d", ic.times)
		}
	default:
		return errx.With(api.ErrInvalidInterceptor, ": unknown mode %d", ic.mode)
	}
	return nil
}

// validMethod accepts RFC 9110 token characters.
func validMethod(method string) bool {
	if method == "" {
		return false
	}
	for _, r := range method {
		if r > 0x7e || r <= ' ' || strings.ContainsRune(`"(),/:;<=>?@[\]{}`, r) {
			return false
		}
	}
	return true
}

func normalizeMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}
