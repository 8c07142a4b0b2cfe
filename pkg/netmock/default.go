package netmock

import (
	"net/http"
	"regexp"
	"sync"

	"github.com/jingkaihe/netmock/pkg/intercept"
	"github.com/jingkaihe/netmock/pkg/transport"
)

var (
	defaultOnce     sync.Once
	defaultInstance *Instance
)

// Default returns the process-wide Instance used by package-level functions.
func Default() *Instance {
	defaultOnce.Do(func() {
		defaultInstance = NewInstance()
	})
	return defaultInstance
}

// New returns a Scope on the default Instance.
func New(origin string) (*intercept.Scope, error) {
	return Default().New(origin)
}

func DisableNetConnect() { Default().DisableNetConnect() }

func EnableNetConnect(hosts ...string) { Default().EnableNetConnect(hosts...) }

func EnableNetConnectRegexp(re *regexp.Regexp) { Default().EnableNetConnectRegexp(re) }

// CleanAll clears the default registry and resets its policy.
func CleanAll() { Default().CleanAll() }

func PendingMocks() []string { return Default().PendingMocks() }

func IsDone() bool { return Default().IsDone() }

// Client returns an *http.Client routed through the default Instance. It
// works without Activate.
func Client() *http.Client { return Default().Client() }

// Activate installs the default Instance as http.DefaultTransport.
func Activate() { Default().Activate() }

// Restore reinstates the original http.DefaultTransport.
func Restore() bool { return transport.Restore() }

// IsActive reports whether a netmock transport is installed as
// http.DefaultTransport.
func IsActive() bool { return transport.Active() != nil }
