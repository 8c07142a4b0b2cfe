package api

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/jingkaihe/netmock/internal/errx"
)

const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// Origin is the scheme, host and port a Scope is declared against.
// Hostnames are always lowercase and the port is always set.
type Origin struct {
	Scheme string `json:"scheme"`
	Host   string `json:"host"`
	Port   int    `json:"port"`
}

// DefaultPort returns the implied port for a scheme, or 0 if unknown.
func DefaultPort(scheme string) int {
	switch strings.ToLower(scheme) {
	case SchemeHTTP:
		return 80
	case SchemeHTTPS:
		return 443
	default:
		return 0
	}
}

// ParseOrigin parses "scheme://host[:port]". A trailing "/" is tolerated,
// any other path, query or fragment is rejected.
func ParseOrigin(raw string) (Origin, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Origin{}, errx.With(ErrInvalidOrigin, ": empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Origin{}, errx.With(ErrInvalidOrigin, " %q: %w", raw, err)
	}
	if u.Path != "" && u.Path != "/" {
		return Origin{}, errx.With(ErrInvalidOrigin, " %q: unexpected path %q", raw, u.Path)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return Origin{}, errx.With(ErrInvalidOrigin, " %q: unexpected query or fragment", raw)
	}
	return NewOrigin(u.Scheme, u.Hostname(), u.Port())
}

// NewOrigin builds a normalized Origin. An empty port takes the scheme default.
func NewOrigin(scheme, host, port string) (Origin, error) {
	scheme = strings.ToLower(strings.TrimSpace(scheme))
	if DefaultPort(scheme) == 0 {
		return Origin{}, errx.With(ErrInvalidOrigin, ": unsupported scheme %q", scheme)
	}
	host = NormalizeHost(host)
	if host == "" {
		return Origin{}, errx.With(ErrInvalidOrigin, ": missing host")
	}

	o := Origin{Scheme: scheme, Host: host, Port: DefaultPort(scheme)}
	if port = strings.TrimSpace(port); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 || n > 65535 {
			return Origin{}, errx.With(ErrInvalidOrigin, ": invalid port %q", port)
		}
		o.Port = n
	}
	return o, nil
}

// NormalizeHost lowercases a hostname and strips IPv6 brackets and a
// trailing dot.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	return strings.TrimSuffix(host, ".")
}

// HostPort returns "host:port", bracketing IPv6 literals.
func (o Origin) HostPort() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// String renders the origin, omitting the port when it is the scheme default.
func (o Origin) String() string {
	if o.Port == DefaultPort(o.Scheme) {
		host := o.Host
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
		return o.Scheme + "://" + host
	}
	return o.Scheme + "://" + o.HostPort()
}

// IsZero reports whether the origin was never set.
func (o Origin) IsZero() bool {
	return o == Origin{}
}
