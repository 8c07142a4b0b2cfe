package netmock_test

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/netmock/pkg/api"
	"github.com/jingkaihe/netmock/pkg/netmock"
)

// These tests share the default Instance and http.DefaultTransport, so they
// do not run in parallel.

func resetDefault(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		netmock.CleanAll()
		netmock.Restore()
	})
}

func TestDefault_ActivateRoutesDefaultClient(t *testing.T) {
	resetDefault(t)
	original := http.DefaultTransport

	netmock.Activate()
	assert.True(t, netmock.IsActive())
	netmock.DisableNetConnect()

	scope, err := netmock.New("http://www.example.test")
	require.NoError(t, err)
	_, err = scope.Get("/").Reply(200, "Hello World!", nil)
	require.NoError(t, err)

	body, err := get(t, http.DefaultClient, "http://www.example.test/")
	require.NoError(t, err)
	assert.Equal(t, "Hello World!", body)

	_, err = get(t, http.DefaultClient, "http://google.com/")
	assert.ErrorIs(t, err, api.ErrNetConnectDisallowed)

	assert.True(t, netmock.Restore())
	assert.False(t, netmock.IsActive())
	assert.Equal(t, original, http.DefaultTransport)
}

func TestDefault_PackageLevelPolicy(t *testing.T) {
	resetDefault(t)

	netmock.DisableNetConnect()
	netmock.EnableNetConnect("localhost")
	netmock.EnableNetConnectRegexp(regexp.MustCompile(`\.internal$`))

	pol := netmock.Default().Policy()
	assert.True(t, pol.IsAllowed("localhost"))
	assert.True(t, pol.IsAllowed("db.internal"))
	assert.False(t, pol.IsAllowed("google.com"))

	netmock.CleanAll()
	assert.True(t, pol.IsAllowed("google.com"))
}

func TestDefault_PendingMocksAndClient(t *testing.T) {
	resetDefault(t)

	scope, err := netmock.New("http://www.example.test")
	require.NoError(t, err)
	_, err = scope.Get("/a").Reply(200, "a", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"GET http://www.example.test/a"}, netmock.PendingMocks())
	assert.False(t, netmock.IsDone())

	body, err := get(t, netmock.Client(), "http://www.example.test/a")
	require.NoError(t, err)
	assert.Equal(t, "a", body)
	assert.True(t, netmock.IsDone())
}
