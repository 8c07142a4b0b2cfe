package intercept

import (
	"net/http"
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/netmock/pkg/api"
)

func TestPathMatcher_Match(t *testing.T) {
	glob, err := GlobPath("/users/*/repos/**")
	require.NoError(t, err)

	tests := []struct {
		name    string
		matcher PathMatcher
		path    string
		want    bool
	}{
		{"exact hit", ExactPath("/users/1"), "/users/1", true},
		{"exact miss", ExactPath("/users/1"), "/users/2", false},
		{"empty exact is root", ExactPath(""), "/", true},
		{"glob single segment", glob, "/users/1/repos/a", true},
		{"glob nested", glob, "/users/1/repos/a/b/c", true},
		{"glob wrong prefix", glob, "/orgs/1/repos/a", false},
		{"func", PathFunc(func(p string) bool { return len(p) > 3 }), "/long", true},
		{"any", AnyPath(), "/anything/at/all", true},
		{"zero value", PathMatcher{}, "/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.matcher.Match(tt.path))
		})
	}
}

func TestGlobPath_RejectsInvalidPattern(t *testing.T) {
	_, err := GlobPath("/users/[")
	require.ErrorIs(t, err, api.ErrInvalidInterceptor)

	_, err = GlobPath("")
	require.ErrorIs(t, err, api.ErrInvalidInterceptor)
}

func TestQueryMatcher_Match(t *testing.T) {
	tests := []struct {
		name     string
		matcher  QueryMatcher
		rawQuery string
		want     bool
	}{
		{"zero accepts empty", QueryMatcher{}, "", true},
		{"zero rejects query", QueryMatcher{}, "a=1", false},
		{"exact same", ExactQuery(url.Values{"a": {"1"}, "b": {"2"}}), "b=2&a=1", true},
		{"exact value order", ExactQuery(url.Values{"a": {"1", "2"}}), "a=2&a=1", true},
		{"exact extra key", ExactQuery(url.Values{"a": {"1"}}), "a=1&b=2", false},
		{"exact missing key", ExactQuery(url.Values{"a": {"1"}, "b": {"2"}}), "a=1", false},
		{"func", QueryFunc(func(v url.Values) bool { return v.Get("page") == "2" }), "page=2&x=y", true},
		{"any with query", AnyQuery(), "whatever=1", true},
		{"any without query", AnyQuery(), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.matcher.Match(tt.rawQuery))
		})
	}
}

func TestBodyMatcher_Match(t *testing.T) {
	re, err := BodyRegexp(regexp.MustCompile(`^name=\w+$`))
	require.NoError(t, err)
	doc, err := BodyJSON(`{"a": 1, "b": ["x", "y"]}`)
	require.NoError(t, err)
	field, err := BodyJSONField("user.id", "42")
	require.NoError(t, err)

	tests := []struct {
		name    string
		matcher BodyMatcher
		body    string
		want    bool
	}{
		{"zero accepts anything", BodyMatcher{}, "whatever", true},
		{"equals", BodyEquals("hello"), "hello", true},
		{"equals miss", BodyEquals("hello"), "hello!", false},
		{"regexp", re, "name=bob", true},
		{"regexp miss", re, "name=bob&x=1", false},
		{"json reordered", doc, `{"b":["x","y"],"a":1}`, true},
		{"json different", doc, `{"a":2,"b":["x","y"]}`, false},
		{"json invalid body", doc, `not json`, false},
		{"json field", field, `{"user":{"id":42}}`, true},
		{"json field miss", field, `{"user":{"id":43}}`, false},
		{"json field absent", field, `{"user":{}}`, false},
		{"func", BodyFunc(func(b []byte) bool { return len(b) == 0 }), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.matcher.Match([]byte(tt.body)))
		})
	}
}

func TestBodyMatcher_ConstructorErrors(t *testing.T) {
	_, err := BodyRegexp(nil)
	assert.ErrorIs(t, err, api.ErrInvalidInterceptor)

	_, err = BodyJSON(`{"a":`)
	assert.ErrorIs(t, err, api.ErrInvalidInterceptor)

	_, err = BodyJSONField("", "x")
	assert.ErrorIs(t, err, api.ErrInvalidInterceptor)
}

func TestHeaderMatcher_Match(t *testing.T) {
	origin, err := api.ParseOrigin("http://example.test")
	require.NoError(t, err)
	req := api.NewRequest(origin, "GET", "/", "", http.Header{
		"Authorization": {"Bearer abc123"},
		"X-Multi":       {"a", "b"},
	}, nil)

	tests := []struct {
		name    string
		matcher HeaderMatcher
		want    bool
	}{
		{"equals", HeaderEquals("authorization", "Bearer abc123"), true},
		{"equals miss", HeaderEquals("Authorization", "Bearer nope"), false},
		{"absent", HeaderEquals("X-Missing", ""), false},
		{"regexp", HeaderRegexp("Authorization", regexp.MustCompile(`^Bearer \w+$`)), true},
		{"func sees all values", HeaderFunc("X-Multi", func(v []string) bool { return len(v) == 2 }), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.matcher.Match(req))
		})
	}
}
