package policy

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/netmock/pkg/api"
)

func TestNetConnect_InitialStateAllowsAll(t *testing.T) {
	p := NewNetConnect(nil)
	assert.False(t, p.Disabled())
	assert.Empty(t, p.Entries())
	assert.True(t, p.IsAllowed("example.test"))
	assert.True(t, p.IsAllowed("localhost"))
}

func TestNetConnect_DisableBlocksEverything(t *testing.T) {
	p := NewNetConnect(nil)
	p.Disable()
	assert.True(t, p.Disabled())
	assert.False(t, p.IsAllowed("example.test"))
	assert.False(t, p.IsAllowed("localhost"))

	p.Disable()
	assert.True(t, p.Disabled(), "Disable should be idempotent")
}

func TestNetConnect_DisableClearsEntries(t *testing.T) {
	p := NewNetConnect(nil)
	p.Enable(MustParseEntry("localhost"))
	p.Disable()
	assert.Empty(t, p.Entries())
	assert.False(t, p.IsAllowed("localhost"))
}

func TestNetConnect_EnableWithEntryImpliesDisabled(t *testing.T) {
	p := NewNetConnect(nil)
	p.Enable(MustParseEntry("localhost"))

	assert.True(t, p.Disabled())
	assert.True(t, p.IsAllowed("localhost"))
	assert.False(t, p.IsAllowed("example.test"))
}

func TestNetConnect_EnableRegexpBehavesLikeString(t *testing.T) {
	re, err := Regexp(regexp.MustCompile(`ocalhos`))
	require.NoError(t, err)

	p := NewNetConnect(nil)
	p.Enable(re)
	assert.True(t, p.IsAllowed("localhost"))
	assert.False(t, p.IsAllowed("example.test"))
}

func TestNetConnect_EnableIsAdditive(t *testing.T) {
	p := NewNetConnect(nil)
	p.Enable(MustParseEntry("localhost"))
	p.Enable(MustParseEntry("/\\.internal\\.test$/"))

	assert.True(t, p.IsAllowed("localhost"))
	assert.True(t, p.IsAllowed("db.internal.test"))
	assert.False(t, p.IsAllowed("example.test"))
	assert.Len(t, p.Entries(), 2)
}

func TestNetConnect_EnableDeduplicates(t *testing.T) {
	p := NewNetConnect(nil)
	p.Enable(MustParseEntry("localhost"), MustParseEntry("localhost"))
	p.Enable(MustParseEntry("LOCALHOST"))
	assert.Len(t, p.Entries(), 1)
}

func TestNetConnect_EnableIgnoresInvalidEntries(t *testing.T) {
	p := NewNetConnect(nil)
	p.Enable(Entry{}, MustParseEntry("localhost"))
	assert.Len(t, p.Entries(), 1)
}

func TestNetConnect_EnableNoArgsLiftsRestrictions(t *testing.T) {
	p := NewNetConnect(nil)
	p.Disable()
	p.Enable(MustParseEntry("localhost"))
	p.Enable()

	assert.False(t, p.Disabled())
	assert.Empty(t, p.Entries())
	assert.True(t, p.IsAllowed("example.test"))
}

func TestNetConnect_EnableAllEntry(t *testing.T) {
	p := NewNetConnect(nil)
	p.Disable()
	p.Enable(All())
	assert.True(t, p.IsAllowed("anything.test"))
}

func TestNetConnect_Match(t *testing.T) {
	p := NewNetConnect(nil)
	entry, ok := p.Match("example.test")
	assert.True(t, ok)
	assert.False(t, entry.IsValid(), "unrestricted policy reports no entry")

	p.Enable(MustParseEntry("example"))
	entry, ok = p.Match("EXAMPLE.test.")
	assert.True(t, ok)
	assert.Equal(t, "example", entry.String())
}

func TestNetConnect_Reset(t *testing.T) {
	p := NewNetConnect(nil)
	p.Enable(MustParseEntry("localhost"))
	p.Reset()
	assert.False(t, p.Disabled())
	assert.Empty(t, p.Entries())
	assert.True(t, p.IsAllowed("example.test"))
}

func TestNetConnect_EntriesIsCopy(t *testing.T) {
	p := NewNetConnect(nil)
	p.Enable(MustParseEntry("localhost"))
	entries := p.Entries()
	entries[0] = All()
	assert.False(t, p.IsAllowed("example.test"))
}

func TestNewNetConnectFromConfig(t *testing.T) {
	p, err := NewNetConnectFromConfig(nil, nil)
	require.NoError(t, err)
	assert.True(t, p.IsAllowed("example.test"))

	p, err = NewNetConnectFromConfig(&api.NetConnectConfig{Disabled: true}, nil)
	require.NoError(t, err)
	assert.False(t, p.IsAllowed("example.test"))

	p, err = NewNetConnectFromConfig(&api.NetConnectConfig{Allow: []string{"localhost", "/^api\\./"}}, nil)
	require.NoError(t, err)
	assert.True(t, p.IsAllowed("localhost"))
	assert.True(t, p.IsAllowed("api.example.test"))
	assert.False(t, p.IsAllowed("example.test"))

	_, err = NewNetConnectFromConfig(&api.NetConnectConfig{Allow: []string{"/(/"}}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrInvalidConfig)
	assert.ErrorIs(t, err, api.ErrInvalidPattern)
}

func TestNetConnect_ConcurrentAccess(t *testing.T) {
	p := NewNetConnect(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.Enable(MustParseEntry("localhost"))
		}()
		go func() {
			defer wg.Done()
			_ = p.IsAllowed("localhost")
		}()
	}
	wg.Wait()
	assert.True(t, p.IsAllowed("localhost"))
	assert.Len(t, p.Entries(), 1)
}
