package logging

import (
	"encoding/json"
	"time"
)

// Event is the structured record written for every interception decision.
// Required fields: Timestamp, RunID, Suite, EventType, Summary.
type Event struct {
	Timestamp time.Time       `json:"ts"`
	RunID     string          `json:"run_id"`
	Suite     string          `json:"suite"`
	EventType string          `json:"event_type"`
	Summary   string          `json:"summary"`
	Component string          `json:"component,omitempty"`
	Tags      []string        `json:"tags,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

const (
	EventInterceptorRegistered = "interceptor_registered"
	EventInterceptorsCleaned   = "interceptors_cleaned"
	EventRequestMocked         = "request_mocked"
	EventRequestPassthrough    = "request_passthrough"
	EventRequestBlocked        = "request_blocked"
)

// InterceptorData is the payload for interceptor_registered events.
type InterceptorData struct {
	ID     string `json:"id"`
	Origin string `json:"origin"`
	Method string `json:"method"`
	Path   string `json:"path"`
	Mode   string `json:"mode"`
}

// CleanData is the payload for interceptors_cleaned events. Origin is empty
// when every origin was cleaned.
type CleanData struct {
	Origin  string `json:"origin,omitempty"`
	Removed int    `json:"removed"`
}

// DecisionData is the payload for request_* events.
type DecisionData struct {
	Method        string `json:"method"`
	Host          string `json:"host"`
	Port          int    `json:"port"`
	Path          string `json:"path"`
	Verdict       string `json:"verdict"`
	InterceptorID string `json:"interceptor_id,omitempty"`
	StatusCode    int    `json:"status_code,omitempty"`
	Pattern       string `json:"pattern,omitempty"`
	Reason        string `json:"reason,omitempty"`
}
