package transport

import (
	"net/http"
	"sync"
)

var (
	activeMu  sync.Mutex
	active    *Transport
	displaced http.RoundTripper
)

// Activate installs t as http.DefaultTransport. Activating again replaces
// the installed Transport; Restore always returns to the transport that was
// in place before the first activation.
func Activate(t *Transport) {
	activeMu.Lock()
	defer activeMu.Unlock()

	if active == nil {
		displaced = http.DefaultTransport
	}
	active = t
	http.DefaultTransport = t
}

// Restore reinstates the displaced default transport. It reports whether a
// Transport was active.
func Restore() bool {
	activeMu.Lock()
	defer activeMu.Unlock()

	if active == nil {
		return false
	}
	http.DefaultTransport = displaced
	active, displaced = nil, nil
	return true
}

// Active returns the installed Transport, or nil.
func Active() *Transport {
	activeMu.Lock()
	defer activeMu.Unlock()
	return active
}

// defaultBase returns a RoundTripper that reaches the real network even if
// a Transport is currently installed as http.DefaultTransport.
func defaultBase() http.RoundTripper {
	activeMu.Lock()
	defer activeMu.Unlock()

	rt := http.DefaultTransport
	if active != nil {
		rt = displaced
	}
	if t, ok := rt.(*Transport); ok {
		return t.base
	}
	if t, ok := rt.(*http.Transport); ok {
		return t.Clone()
	}
	return rt
}
