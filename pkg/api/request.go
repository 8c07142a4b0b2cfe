package api

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/jingkaihe/netmock/internal/errx"
)

// Request is the projection of an outgoing call used for matching.
// It is never mutated after construction; accessors return copies.
type Request struct {
	Origin   Origin
	Method   string
	Path     string
	RawQuery string

	header http.Header
	body   []byte
}

// NewRequest builds a Request descriptor. An empty path becomes "/".
func NewRequest(origin Origin, method, path, rawQuery string, header http.Header, body []byte) *Request {
	if path == "" {
		path = "/"
	}
	return &Request{
		Origin:   origin,
		Method:   strings.ToUpper(strings.TrimSpace(method)),
		Path:     path,
		RawQuery: rawQuery,
		header:   header.Clone(),
		body:     bytes.Clone(body),
	}
}

// FromHTTPRequest projects an *http.Request. The path is kept in its escaped
// form so it compares equal to paths written the way they are sent. The body
// is read through GetBody when the request has one; otherwise req.Body is
// drained and closed. req itself is never modified.
func FromHTTPRequest(req *http.Request) (*Request, error) {
	if req == nil || req.URL == nil {
		return nil, errx.With(ErrInvalidRequest, ": missing URL")
	}

	host := req.URL.Hostname()
	if host == "" {
		host = req.Host
		if h, _, ok := strings.Cut(host, ":"); ok {
			host = h
		}
	}
	origin, err := NewOrigin(req.URL.Scheme, host, req.URL.Port())
	if err != nil {
		return nil, errx.Wrap(ErrInvalidRequest, err)
	}

	body, err := readBody(req)
	if err != nil {
		return nil, errx.With(ErrInvalidRequest, ": read body: %w", err)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	return NewRequest(origin, method, req.URL.EscapedPath(), req.URL.RawQuery, req.Header, body), nil
}

func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err == nil {
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	defer req.Body.Close()
	return io.ReadAll(req.Body)
}

// Host is the normalized hostname without port.
func (r *Request) Host() string {
	return r.Origin.Host
}

// Port is the effective destination port.
func (r *Request) Port() int {
	return r.Origin.Port
}

// PathWithQuery returns the path followed by "?query" when a query is present.
func (r *Request) PathWithQuery() string {
	if r.RawQuery == "" {
		return r.Path
	}
	return r.Path + "?" + r.RawQuery
}

// Header returns a copy of the request headers.
func (r *Request) Header() http.Header {
	return r.header.Clone()
}

// HeaderValue returns the first value for key.
func (r *Request) HeaderValue(key string) string {
	return r.header.Get(key)
}

// HasHeader reports whether key was sent at all.
func (r *Request) HasHeader(key string) bool {
	_, ok := r.header[http.CanonicalHeaderKey(key)]
	return ok
}

// Body returns a copy of the request body.
func (r *Request) Body() []byte {
	return bytes.Clone(r.body)
}

// String renders "METHOD scheme://host:port/path?query" for logs.
func (r *Request) String() string {
	return r.Method + " " + r.Origin.String() + r.PathWithQuery()
}
