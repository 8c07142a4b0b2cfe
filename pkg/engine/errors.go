package engine

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/jingkaihe/netmock/pkg/api"
)

// ErrCodeNetUnreachable is the code carried by blocked-request errors.
const ErrCodeNetUnreachable = "ENETUNREACH"

// DisallowedNetConnectError is returned for requests that matched no
// interceptor while the destination is not allowed by the net-connect
// policy.
type DisallowedNetConnectError struct {
	Host string
	Port int
	Path string // includes "?query" when present
	Code string

	stack string
}

func newDisallowedNetConnectError(req *api.Request) *DisallowedNetConnectError {
	return &DisallowedNetConnectError{
		Host:  req.Host(),
		Port:  req.Port(),
		Path:  req.PathWithQuery(),
		Code:  ErrCodeNetUnreachable,
		stack: captureStack(),
	}
}

// Message renders `Nock: Disallowed net connect for "<host>:<port><path>"`.
func (e *DisallowedNetConnectError) Message() string {
	return `Nock: Disallowed net connect for "` + e.Host + ":" + strconv.Itoa(e.Port) + e.Path + `"`
}

func (e *DisallowedNetConnectError) Error() string {
	return e.Message()
}

// Is makes errors.Is(err, api.ErrNetConnectDisallowed) hold.
func (e *DisallowedNetConnectError) Is(target error) bool {
	return target == api.ErrNetConnectDisallowed
}

// Stack returns the call stack of the code that issued the request.
func (e *DisallowedNetConnectError) Stack() string {
	return e.stack
}

const maxStackDepth = 64

// Frames from these packages are plumbing between the caller and the
// decision, so they are left out of the captured stack.
var internalFramePrefixes = []string{
	"runtime.",
	"net/http.",
	"github.com/jingkaihe/netmock/pkg/engine.",
	"github.com/jingkaihe/netmock/pkg/transport.",
}

func isInternalFrame(function string) bool {
	for _, p := range internalFramePrefixes {
		if strings.HasPrefix(function, p) {
			return true
		}
	}
	return false
}

// captureStack formats the caller's stack starting at the first frame
// outside internalFramePrefixes. If every frame is internal the whole
// stack is kept so the result is never empty.
func captureStack() string {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var all, external strings.Builder
	seenExternal := false
	for {
		frame, more := frames.Next()
		line := frame.Function + "\n\t" + frame.File + ":" + strconv.Itoa(frame.Line) + "\n"
		all.WriteString(line)
		if seenExternal || !isInternalFrame(frame.Function) {
			seenExternal = true
			external.WriteString(line)
		}
		if !more {
			break
		}
	}
	if external.Len() > 0 {
		return external.String()
	}
	return all.String()
}
