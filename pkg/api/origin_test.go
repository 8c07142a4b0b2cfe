package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrigin(t *testing.T) {
	tests := []struct {
		raw  string
		want Origin
	}{
		{"http://www.example.test", Origin{Scheme: "http", Host: "www.example.test", Port: 80}},
		{"https://Example.TEST", Origin{Scheme: "https", Host: "example.test", Port: 443}},
		{"http://localhost:8080/", Origin{Scheme: "http", Host: "localhost", Port: 8080}},
		{"HTTPS://api.example.test:8443", Origin{Scheme: "https", Host: "api.example.test", Port: 8443}},
		{"http://[::1]:9000", Origin{Scheme: "http", Host: "::1", Port: 9000}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseOrigin(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOrigin_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"www.example.test",
		"ftp://example.test",
		"http://",
		"http://example.test:abc",
		"http://example.test:70000",
		"http://example.test/path",
		"http://example.test/?q=1",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseOrigin(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidOrigin)
		})
	}
}

func TestOrigin_String(t *testing.T) {
	o, err := ParseOrigin("https://example.test:443")
	require.NoError(t, err)
	assert.Equal(t, "https://example.test", o.String())
	assert.Equal(t, "example.test:443", o.HostPort())

	o, err = ParseOrigin("http://example.test:8080")
	require.NoError(t, err)
	assert.Equal(t, "http://example.test:8080", o.String())

	o, err = ParseOrigin("http://[::1]")
	require.NoError(t, err)
	assert.Equal(t, "http://[::1]", o.String())
	assert.Equal(t, "[::1]:80", o.HostPort())
}

func TestOrigin_IsZero(t *testing.T) {
	assert.True(t, Origin{}.IsZero())
	assert.False(t, Origin{Scheme: "http", Host: "a", Port: 80}.IsZero())
}

func TestDefaultPort(t *testing.T) {
	assert.Equal(t, 80, DefaultPort("http"))
	assert.Equal(t, 443, DefaultPort("HTTPS"))
	assert.Equal(t, 0, DefaultPort("ws"))
}
