// FILE: logroute/src/internal/sink/sink.go
package sink

import (
	"context"

	"logroute/src/internal/core"
	"logroute/src/internal/format"
)

// Sink is an output destination for formatted events.
// Lifecycle: Uninitialized -> Started -> Closed.
type Sink interface {
	// Name returns the display name
	Name() string

	// SetName sets the display name
	SetName(name string)

	// Key is the canonical identity used for deduplication.
	// Two sinks with equal keys are interchangeable.
	Key() string

	// IsStarted reports whether the sink accepts writes
	IsStarted() bool

	// Init acquires resources and moves the sink to Started
	Init() error

	// Write emits one event. Failures are reported through diagnostics.
	Write(ev *core.Event)

	// Flush is advisory
	Flush() error

	// Close releases resources. It is idempotent.
	Close() error
}

// ContextWriter is implemented by sinks whose Write may block.
// The returned error is only ever the caller's own context error.
type ContextWriter interface {
	WriteContext(ctx context.Context, ev *core.Event) error
}

// lineOf returns the event's formatted line, rendering it when unset.
func lineOf(ev *core.Event) string {
	if ev.IsFormatted() {
		return ev.Formatted()
	}
	return format.Format(ev)
}
