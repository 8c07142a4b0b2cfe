package logging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jingkaihe/netmock/internal/errx"
)

// EmitterConfig holds the static metadata stamped onto every event.
type EmitterConfig struct {
	RunID string // Defaults to a random UUID when empty
	Suite string // Name of the test suite or tool emitting events
}

// Emitter stamps static metadata onto events and fans them out to sinks.
//
// A nil *Emitter is safe to hold; callers guard emission with:
//
//	if emitter != nil {
//	    _ = emitter.Emit(...)
//	}
type Emitter struct {
	config EmitterConfig
	sinks  []Sink
}

// NewEmitter creates an emitter with the given configuration and sinks.
func NewEmitter(cfg EmitterConfig, sinks ...Sink) *Emitter {
	if cfg.RunID == "" {
		cfg.RunID = uuid.NewString()
	}
	return &Emitter{
		config: cfg,
		sinks:  sinks,
	}
}

// RunID returns the run identifier stamped on every event.
func (e *Emitter) RunID() string {
	return e.config.RunID
}

// Emit builds an event and writes it to all sinks.
//
// Parameters:
//   - eventType: one of the Event* constants
//   - summary: human-readable one-line summary
//   - component: emitting component ("engine", "registry"), may be empty
//   - tags: optional tags for filtering (nil is fine)
//   - data: typed payload (e.g., *DecisionData); nil for no payload
//
// Returns the first error encountered. Callers usually discard it.
func (e *Emitter) Emit(eventType, summary, component string, tags []string, data interface{}) error {
	var rawData json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return errx.Wrap(ErrMarshalData, err)
		}
		rawData = b
	}

	event := &Event{
		Timestamp: time.Now().UTC(),
		RunID:     e.config.RunID,
		Suite:     e.config.Suite,
		EventType: eventType,
		Summary:   summary,
		Component: component,
		Tags:      tags,
		Data:      rawData,
	}

	for _, sink := range e.sinks {
		if err := sink.Write(event); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all sinks. Returns the first error encountered.
func (e *Emitter) Close() error {
	var firstErr error
	for _, sink := range e.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
