package intercept

import (
	"bytes"
	"net/url"
	"reflect"
	"regexp"
	"slices"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/gjson"

	"github.com/jingkaihe/netmock/internal/errx"
	"github.com/jingkaihe/netmock/pkg/api"
)

type pathKind int

const (
	pathExact pathKind = iota + 1
	pathGlob
	pathFunc
)

// PathMatcher selects request paths. The zero value is invalid.
type PathMatcher struct {
	kind  pathKind
	value string
	fn    func(path string) bool
}

// ExactPath matches one path literally.
func ExactPath(path string) PathMatcher {
	if path == "" {
		path = "/"
	}
	return PathMatcher{kind: pathExact, value: path}
}

// GlobPath matches with doublestar syntax: "*" within a segment, "**" across
// segments, "{a,b}" alternatives.
func GlobPath(pattern string) (PathMatcher, error) {
	if pattern == "" || !doublestar.ValidatePattern(pattern) {
		return PathMatcher{}, errx.With(api.ErrInvalidInterceptor, ": invalid path glob %q", pattern)
	}
	return PathMatcher{kind: pathGlob, value: pattern}, nil
}

// PathFunc matches when fn returns true.
func PathFunc(fn func(path string) bool) PathMatcher {
	return PathMatcher{kind: pathFunc, value: "<func>", fn: fn}
}

// AnyPath matches every path.
func AnyPath() PathMatcher {
	return PathMatcher{kind: pathFunc, value: "*", fn: func(string) bool { return true }}
}

func (m PathMatcher) valid() bool {
	switch m.kind {
	case pathExact, pathGlob:
		return m.value != ""
	case pathFunc:
		return m.fn != nil
	default:
		return false
	}
}

// Match reports whether path is selected.
func (m PathMatcher) Match(path string) bool {
	switch m.kind {
	case pathExact:
		return path == m.value
	case pathGlob:
		ok, err := doublestar.Match(m.value, path)
		return err == nil && ok
	case pathFunc:
		return m.fn != nil && m.fn(path)
	default:
		return false
	}
}

func (m PathMatcher) String() string {
	return m.value
}

type queryKind int

const (
	queryNone queryKind = iota
	queryExact
	queryFunc
	queryAny
)

// QueryMatcher selects request query strings. The zero value only accepts
// requests without a query.
type QueryMatcher struct {
	kind   queryKind
	values url.Values
	fn     func(url.Values) bool
}

// ExactQuery matches when the request query has exactly these keys and
// values. Value order within a key does not matter.
func ExactQuery(values url.Values) QueryMatcher {
	return QueryMatcher{kind: queryExact, values: cloneValues(values)}
}

// QueryFunc matches when fn returns true for the parsed query.
func QueryFunc(fn func(url.Values) bool) QueryMatcher {
	return QueryMatcher{kind: queryFunc, fn: fn}
}

// AnyQuery accepts any query string, including none.
func AnyQuery() QueryMatcher {
	return QueryMatcher{kind: queryAny}
}

// Match reports whether rawQuery is accepted.
func (m QueryMatcher) Match(rawQuery string) bool {
	switch m.kind {
	case queryNone:
		return rawQuery == ""
	case queryAny:
		return true
	}

	got, err := url.ParseQuery(rawQuery)
	if err != nil {
		return false
	}
	switch m.kind {
	case queryExact:
		return equalValues(m.values, got)
	case queryFunc:
		return m.fn != nil && m.fn(got)
	default:
		return false
	}
}

func (m QueryMatcher) String() string {
	switch m.kind {
	case queryExact:
		return m.values.Encode()
	case queryFunc:
		return "<func>"
	case queryAny:
		return "*"
	default:
		return ""
	}
}

func equalValues(want, got url.Values) bool {
	if len(want) != len(got) {
		return false
	}
	for k, wv := range want {
		gv, ok := got[k]
		if !ok || len(gv) != len(wv) {
			return false
		}
		a := slices.Clone(wv)
		b := slices.Clone(gv)
		sort.Strings(a)
		sort.Strings(b)
		if !slices.Equal(a, b) {
			return false
		}
	}
	return true
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = slices.Clone(vals)
	}
	return out
}

type bodyKind int

const (
	bodyAny bodyKind = iota
	bodyExact
	bodyRegexp
	bodyJSON
	bodyJSONField
	bodyFunc
)

// BodyMatcher selects request bodies. The zero value accepts any body.
type BodyMatcher struct {
	kind     bodyKind
	raw      []byte
	re       *regexp.Regexp
	jsonPath string
	want     any
	fn       func(body []byte) bool
}

// BodyEquals matches a byte-identical body.
func BodyEquals(body string) BodyMatcher {
	return BodyMatcher{kind: bodyExact, raw: []byte(body)}
}

// BodyRegexp matches bodies accepted by re.
func BodyRegexp(re *regexp.Regexp) (BodyMatcher, error) {
	if re == nil {
		return BodyMatcher{}, errx.With(api.ErrInvalidInterceptor, ": nil body regexp")
	}
	return BodyMatcher{kind: bodyRegexp, re: re}, nil
}

// BodyJSON matches bodies that are JSON documents structurally equal to
// doc. Key order and whitespace are ignored.
func BodyJSON(doc string) (BodyMatcher, error) {
	if !gjson.Valid(doc) {
		return BodyMatcher{}, errx.With(api.ErrInvalidInterceptor, ": body matcher is not valid JSON")
	}
	return BodyMatcher{kind: bodyJSON, want: gjson.Parse(doc).Value()}, nil
}

// BodyJSONField matches JSON bodies whose value at the gjson path equals
// want once rendered as a string (numbers as in the source document).
func BodyJSONField(path, want string) (BodyMatcher, error) {
	if path == "" {
		return BodyMatcher{}, errx.With(api.ErrInvalidInterceptor, ": empty JSON path")
	}
	return BodyMatcher{kind: bodyJSONField, jsonPath: path, raw: []byte(want)}, nil
}

// BodyFunc matches when fn returns true.
func BodyFunc(fn func(body []byte) bool) BodyMatcher {
	return BodyMatcher{kind: bodyFunc, fn: fn}
}

// Match reports whether body is accepted.
func (m BodyMatcher) Match(body []byte) bool {
	switch m.kind {
	case bodyAny:
		return true
	case bodyExact:
		return bytes.Equal(m.raw, body)
	case bodyRegexp:
		return m.re.Match(body)
	case bodyJSON:
		if !gjson.ValidBytes(body) {
			return false
		}
		return reflect.DeepEqual(m.want, gjson.ParseBytes(body).Value())
	case bodyJSONField:
		if !gjson.ValidBytes(body) {
			return false
		}
		res := gjson.GetBytes(body, m.jsonPath)
		return res.Exists() && res.String() == string(m.raw)
	case bodyFunc:
		return m.fn != nil && m.fn(body)
	default:
		return false
	}
}

// HeaderMatcher requires a request header to be present with a given value.
type HeaderMatcher struct {
	key   string
	value string
	re    *regexp.Regexp
	fn    func(values []string) bool
}

// HeaderEquals requires header key to equal value.
func HeaderEquals(key, value string) HeaderMatcher {
	return HeaderMatcher{key: key, value: value}
}

// HeaderRegexp requires header key to match re.
func HeaderRegexp(key string, re *regexp.Regexp) HeaderMatcher {
	return HeaderMatcher{key: key, re: re}
}

// HeaderFunc requires fn to accept all values sent for key. fn is not called
// when the header is absent.
func HeaderFunc(key string, fn func(values []string) bool) HeaderMatcher {
	return HeaderMatcher{key: key, fn: fn}
}

func (m HeaderMatcher) valid() bool {
	return m.key != ""
}

// Match reports whether req carries the header as required.
func (m HeaderMatcher) Match(req *api.Request) bool {
	if !req.HasHeader(m.key) {
		return false
	}
	switch {
	case m.fn != nil:
		return m.fn(req.Header().Values(m.key))
	case m.re != nil:
		return m.re.MatchString(req.HeaderValue(m.key))
	default:
		return req.HeaderValue(m.key) == m.value
	}
}
