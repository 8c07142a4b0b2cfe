package logging

import "sync"

// Sink consumes structured events.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Write persists or forwards a single event.
	// Implementations should not modify the event.
	Write(event *Event) error

	// Close flushes any buffered data and releases resources.
	Close() error
}

// MemorySink keeps events in memory. Tests use it to assert on decisions.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// Write records a copy of the event.
func (s *MemorySink) Write(event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

// Close is a no-op.
func (s *MemorySink) Close() error {
	return nil
}

// Events returns a copy of the recorded events.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// OfType returns recorded events with the given type.
func (s *MemorySink) OfType(eventType string) []Event {
	var out []Event
	for _, ev := range s.Events() {
		if ev.EventType == eventType {
			out = append(out, ev)
		}
	}
	return out
}
