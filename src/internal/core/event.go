// FILE: logroute/src/internal/core/event.go
package core

import (
	"bytes"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

// Event is the dispatch-time record handed to a sink.
type Event struct {
	Level           Level
	Content         string
	Namespace       string
	Thread          string
	Timestamp       int64 // ms since epoch
	TimestampFormat string

	formatted atomic.Pointer[string]
}

// NewEvent captures the wall clock and the calling goroutine.
func NewEvent(msg Message, tsFormat string) *Event {
	thread := msg.Origin
	if thread == "" {
		thread = GoroutineName()
	}
	return &Event{
		Level:           msg.Level,
		Content:         msg.Content,
		Namespace:       msg.Namespace,
		Thread:          thread,
		Timestamp:       time.Now().UnixMilli(),
		TimestampFormat: tsFormat,
	}
}

// Time returns the event timestamp in local time.
func (e *Event) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// SetFormatted stores the rendered line. Only the first call wins.
func (e *Event) SetFormatted(s string) bool {
	return e.formatted.CompareAndSwap(nil, &s)
}

// Formatted returns the rendered line, or "" before formatting.
func (e *Event) Formatted() string {
	if p := e.formatted.Load(); p != nil {
		return *p
	}
	return ""
}

// IsFormatted reports whether the formatted line has been set.
func (e *Event) IsFormatted() bool {
	return e.formatted.Load() != nil
}

var goroutinePrefix = []byte("goroutine ")

// GoroutineName returns "goroutine-<id>" for the caller.
func GoroutineName() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], goroutinePrefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		if id, err := strconv.ParseUint(string(b[:i]), 10, 64); err == nil {
			return "goroutine-" + strconv.FormatUint(id, 10)
		}
	}
	return "goroutine-unknown"
}
