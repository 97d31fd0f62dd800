// FILE: logroute/src/internal/sink/console.go
package sink

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"logroute/src/internal/core"
	"logroute/src/internal/diag"
)

const consoleKey = "console"

// ConsoleSink writes lines to stdout. All console sinks are equal.
type ConsoleSink struct {
	name    string
	output  io.Writer
	mu      sync.Mutex
	started atomic.Bool
}

// NewConsoleSink creates a console sink writing to stdout.
func NewConsoleSink() *ConsoleSink {
	return NewConsoleSinkWriter(os.Stdout)
}

// NewConsoleSinkWriter creates a console sink writing to w.
func NewConsoleSinkWriter(w io.Writer) *ConsoleSink {
	return &ConsoleSink{
		name:   core.DefaultSinkName,
		output: w,
	}
}

func (s *ConsoleSink) Name() string        { return s.name }
func (s *ConsoleSink) SetName(name string) { s.name = name }
func (s *ConsoleSink) Key() string         { return consoleKey }
func (s *ConsoleSink) IsStarted() bool     { return s.started.Load() }

func (s *ConsoleSink) Init() error {
	s.started.Store(true)
	return nil
}

func (s *ConsoleSink) Write(ev *core.Event) {
	if !s.started.Load() {
		diag.Error("console_sink", "Write on sink that is not started", "sink", s.name)
		return
	}

	line := lineOf(ev) + "\n"

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.output, line); err != nil {
		diag.Error("console_sink", "Failed to write event",
			"sink", s.name,
			"error", core.WithSinkIO(err, s.name, "write"))
	}
}

func (s *ConsoleSink) Flush() error {
	return nil
}

func (s *ConsoleSink) Close() error {
	s.started.Store(false)
	return nil
}
