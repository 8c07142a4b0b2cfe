package policy

import (
	"log/slog"
	"sync"

	"github.com/jingkaihe/netmock/internal/errx"
	"github.com/jingkaihe/netmock/pkg/api"
)

// NetConnect is the net-connect policy: whether unmocked requests may reach
// the real network, and which hosts are exempt when they may not.
//
// The zero value is not usable; call NewNetConnect. A NetConnect is safe for
// concurrent use.
type NetConnect struct {
	mu       sync.RWMutex
	disabled bool
	entries  []Entry
	logger   *slog.Logger
}

// NewNetConnect returns a policy in its initial state: connections enabled
// and unrestricted.
func NewNetConnect(logger *slog.Logger) *NetConnect {
	if logger == nil {
		logger = slog.Default()
	}
	return &NetConnect{logger: logger.With("component", "policy")}
}

// NewNetConnectFromConfig seeds a policy from config. A nil config yields the
// initial state.
func NewNetConnectFromConfig(cfg *api.NetConnectConfig, logger *slog.Logger) (*NetConnect, error) {
	p := NewNetConnect(logger)
	if cfg == nil {
		return p, nil
	}
	if cfg.Disabled {
		p.Disable()
	}
	entries := make([]Entry, 0, len(cfg.Allow))
	for _, raw := range cfg.Allow {
		e, err := ParseEntry(raw)
		if err != nil {
			return nil, errx.Wrap(api.ErrInvalidConfig, err)
		}
		entries = append(entries, e)
	}
	if len(entries) > 0 {
		p.Enable(entries...)
	}
	return p, nil
}

// Disable blocks every unmocked request and forgets prior allow entries.
func (p *NetConnect) Disable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disabled = true
	p.entries = nil
	p.logger.Debug("net connect disabled")
}

// Enable with no entries lifts every restriction. With entries it appends
// them to the allow-list and switches to disabled-by-default, so only hosts
// matching some entry pass. Entries already present (by textual form) are
// kept once. Invalid entries are ignored.
func (p *NetConnect) Enable(entries ...Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(entries) == 0 {
		p.disabled = false
		p.entries = nil
		p.logger.Debug("net connect enabled for all hosts")
		return
	}

	p.disabled = true
	for _, e := range entries {
		if !e.IsValid() {
			p.logger.Warn("ignoring invalid allow entry", "kind", e.Kind().String())
			continue
		}
		if p.hasEntryLocked(e) {
			continue
		}
		p.entries = append(p.entries, e)
		p.logger.Debug("allow entry added", "entry", e.String(), "kind", e.Kind().String())
	}
}

func (p *NetConnect) hasEntryLocked(e Entry) bool {
	for _, existing := range p.entries {
		if existing.kind == e.kind && existing.String() == e.String() {
			return true
		}
	}
	return false
}

// IsAllowed reports whether an unmocked request to host may proceed.
func (p *NetConnect) IsAllowed(host string) bool {
	_, ok := p.Match(host)
	return ok
}

// Match is IsAllowed that also returns the entry responsible. The entry is
// the zero Entry when connections are unrestricted.
func (p *NetConnect) Match(host string) (Entry, bool) {
	host = api.NormalizeHost(host)

	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.disabled {
		return Entry{}, true
	}
	for _, e := range p.entries {
		if e.Matches(host) {
			return e, true
		}
	}
	return Entry{}, false
}

// Reset restores the initial state.
func (p *NetConnect) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disabled = false
	p.entries = nil
}

// Disabled reports whether connections are blocked by default.
func (p *NetConnect) Disabled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.disabled
}

// Entries returns a copy of the allow-list in insertion order.
func (p *NetConnect) Entries() []Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}
