package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHTTPRequest_DefaultPorts(t *testing.T) {
	tests := []struct {
		url    string
		target string
	}{
		{"http://example.test", "example.test:80/"},
		{"https://other.example.test/", "other.example.test:443/"},
		{"http://localhost:3000/a/b?x=1", "localhost:3000/a/b?x=1"},
		{"https://EXAMPLE.test/Path", "example.test:443/Path"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			httpReq, err := http.NewRequest(http.MethodGet, tt.url, nil)
			require.NoError(t, err)

			req, err := FromHTTPRequest(httpReq)
			require.NoError(t, err)
			assert.Equal(t, tt.target, req.Host()+":"+strconv.Itoa(req.Port())+req.PathWithQuery())
		})
	}
}

func TestFromHTTPRequest_ReadsBodyThroughGetBody(t *testing.T) {
	httpReq, err := http.NewRequest(http.MethodPost, "http://example.test/items", strings.NewReader(`{"a":1}`))
	require.NoError(t, err)
	httpReq.Header.Set("Content-Type", "application/json")
	original := httpReq.Body

	req, err := FromHTTPRequest(httpReq)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(req.Body()))
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "application/json", req.HeaderValue("content-type"))
	assert.True(t, req.HasHeader("Content-Type"))

	assert.Equal(t, original, httpReq.Body)
	unread, err := io.ReadAll(httpReq.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(unread))
}

func TestFromHTTPRequest_DrainsBodyWithoutGetBody(t *testing.T) {
	httpReq, err := http.NewRequest(http.MethodPut, "http://example.test/items/1", nil)
	require.NoError(t, err)
	body := io.NopCloser(strings.NewReader("payload"))
	httpReq.Body = body

	req, err := FromHTTPRequest(httpReq)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(req.Body()))
	assert.Equal(t, body, httpReq.Body)
	assert.Nil(t, httpReq.GetBody)
}

func TestFromHTTPRequest_KeepsEscapedPath(t *testing.T) {
	tests := []struct {
		url  string
		path string
	}{
		{"http://example.test/a%20b", "/a%20b"},
		{"http://example.test/x%2Fy", "/x%2Fy"},
		{"http://example.test/plain/path", "/plain/path"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			httpReq, err := http.NewRequest(http.MethodGet, tt.url, nil)
			require.NoError(t, err)

			req, err := FromHTTPRequest(httpReq)
			require.NoError(t, err)
			assert.Equal(t, tt.path, req.Path)
		})
	}
}

func TestFromHTTPRequest_UnsupportedScheme(t *testing.T) {
	httpReq, err := http.NewRequest(http.MethodGet, "ftp://example.test/file", nil)
	require.NoError(t, err)

	_, err = FromHTTPRequest(httpReq)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.ErrorIs(t, err, ErrInvalidOrigin)
}

func TestRequest_Immutable(t *testing.T) {
	h := http.Header{"X-Token": []string{"a"}}
	body := []byte("hello")
	o, err := ParseOrigin("http://example.test")
	require.NoError(t, err)

	req := NewRequest(o, "get", "", "", h, body)
	h.Set("X-Token", "b")
	body[0] = 'j'

	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/", req.Path)
	assert.Equal(t, "a", req.HeaderValue("X-Token"))
	assert.Equal(t, "hello", string(req.Body()))

	got := req.Body()
	got[0] = 'y'
	assert.Equal(t, "hello", string(req.Body()))
	assert.Equal(t, "GET http://example.test/", req.String())
}
