// Package adapter defines the trace-completion notification boundary.
//
// Adapters are a best-effort side channel: the Tracer fires a
// TraceCompletedEvent after a trace's terminal success/failure call, but a
// publish failure is logged and swallowed, never surfaced to the host.
package adapter

import "context"

// TraceCompletedEvent is the payload published when a trace reaches a
// terminal state.
type TraceCompletedEvent struct {
	ProjectID  string `json:"project_id"`
	TraceID    string `json:"trace_id"`
	Outcome    string `json:"outcome"` // "success" or "failure"
	Timestamp  string `json:"timestamp"`
	DurationMs int64  `json:"duration_ms"`
	StepCount  int    `json:"step_count"`
}

// Adapter publishes trace completion events to a downstream system.
// Implementations must be safe for single-use per trace.
type Adapter interface {
	// Publish sends a completion event. Must respect context cancellation.
	Publish(ctx context.Context, event *TraceCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
