package transport

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jingkaihe/netmock/pkg/api"
	"github.com/jingkaihe/netmock/pkg/engine"
)

// Hook is the seam between an HTTP client and the decision engine.
type Hook interface {
	// Decide classifies req. It consumes once interceptors.
	Decide(req *http.Request) (engine.Verdict, error)
	// Deliver turns a mocked verdict into a response.
	Deliver(req *http.Request, v engine.Verdict) (*http.Response, error)
	// Passthrough performs the real round trip.
	Passthrough(req *http.Request) (*http.Response, error)
}

// Transport is an http.RoundTripper that answers mocked requests, forwards
// allowed ones to Base and fails blocked ones.
type Transport struct {
	engine *engine.Engine
	base   http.RoundTripper
	logger *slog.Logger
}

var _ Hook = (*Transport)(nil)
var _ http.RoundTripper = (*Transport)(nil)

// New creates a Transport. A nil base uses a clone of the real default
// transport, so the result is safe to install as http.DefaultTransport.
func New(eng *engine.Engine, base http.RoundTripper, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}
	if base == nil {
		base = defaultBase()
	}
	return &Transport{
		engine: eng,
		base:   base,
		logger: logger.With("component", "transport"),
	}
}

// Engine returns the engine consulted for every request.
func (t *Transport) Engine() *engine.Engine { return t.engine }

// Base returns the RoundTripper used for passthrough.
func (t *Transport) Base() http.RoundTripper { return t.base }

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		closeBody(req)
		return nil, err
	}

	v, err := t.Decide(req)
	if err != nil {
		closeBody(req)
		return nil, err
	}

	switch v.Action {
	case engine.ActionMocked:
		return t.Deliver(req, v)
	case engine.ActionPassthrough:
		return t.Passthrough(withReplayableBody(req, v.Request))
	default:
		closeBody(req)
		return nil, v.Err
	}
}

// Decide projects req and asks the engine for a verdict.
func (t *Transport) Decide(req *http.Request) (engine.Verdict, error) {
	r, err := api.FromHTTPRequest(req)
	if err != nil {
		return engine.Verdict{}, err
	}
	return t.engine.Decide(r), nil
}

// Deliver builds the mocked response. The request context is checked first
// so a cancelled request never receives a reply.
func (t *Transport) Deliver(req *http.Request, v engine.Verdict) (*http.Response, error) {
	closeBody(req)
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	if v.Err != nil {
		return nil, v.Err
	}
	if v.Response == nil {
		return nil, ErrNoResponse
	}

	body := v.Response.Body
	if req.Method == http.MethodHead {
		body = nil
	}
	header := v.Response.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	if header.Get("Content-Length") == "" {
		header.Set("Content-Length", strconv.Itoa(len(body)))
	}

	t.logger.Debug("delivering mocked response",
		"method", req.Method,
		"url", req.URL.String(),
		"status", v.Response.StatusCode,
		"bytes", len(body),
	)

	return &http.Response{
		Status:        strconv.Itoa(v.Response.StatusCode) + " " + http.StatusText(v.Response.StatusCode),
		StatusCode:    v.Response.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

// Passthrough forwards req to the base transport.
func (t *Transport) Passthrough(req *http.Request) (*http.Response, error) {
	t.logger.Debug("passthrough", "method", req.Method, "url", req.URL.String())
	return t.base.RoundTrip(req)
}

// withReplayableBody returns a shallow copy of req carrying the body bytes
// already read for matching, and closes req's own body.
func withReplayableBody(req *http.Request, r *api.Request) *http.Request {
	if r == nil || req.Body == nil || req.Body == http.NoBody {
		return req
	}
	body := r.Body()
	out := req.Clone(req.Context())
	out.ContentLength = int64(len(body))
	out.GetBody = func() (io.ReadCloser, error) {
		if len(body) == 0 {
			return http.NoBody, nil
		}
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	out.Body, _ = out.GetBody()
	closeBody(req)
	return out
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
