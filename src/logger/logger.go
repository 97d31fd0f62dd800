// FILE: logroute/src/logger/logger.go
package logger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"logroute/src/internal/core"
	"logroute/src/internal/router"
	"logroute/src/internal/service"
	"logroute/src/internal/sink"
)

type (
	Level   = core.Level
	Message = core.Message
	Sink    = sink.Sink
	Router  = router.Router
	Option  = router.Option
)

const (
	LevelDebug = core.LevelDebug
	LevelInfo  = core.LevelInfo
	LevelWarn  = core.LevelWarn
	LevelError = core.LevelError
	LevelFatal = core.LevelFatal
)

var (
	ErrValidation      = core.ErrValidation
	ErrConfiguration   = core.ErrConfiguration
	ErrSinkIO          = core.ErrSinkIO
	ErrShutdownTimeout = core.ErrShutdownTimeout
)

var (
	WithDefaultSink            = router.WithDefaultSink
	WithDefaultTimestampFormat = router.WithDefaultTimestampFormat
	WithDefaultLevel           = router.WithDefaultLevel
	WithFactory                = router.WithFactory
)

// installed is a router installed by Init together with the dispatches
// still running through it.
type installed struct {
	svc      *service.Service
	inflight sync.WaitGroup
}

var (
	mu      sync.RWMutex
	current *installed

	// drainTimeout bounds how long Init and Close wait for in-flight
	// dispatches before closing the replaced router.
	drainTimeout = core.DefaultMaxFlushTime
)

// acquire returns the installed router with one dispatch registered on it.
// The caller must call inflight.Done.
func acquire() (*installed, error) {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return nil, core.NewValidationError("configuration", "logger not initialized")
	}
	current.inflight.Add(1)
	return current, nil
}

// retire closes prev's router once its in-flight dispatches finish or
// drainTimeout passes.
func retire(prev *installed) error {
	drained := make(chan struct{})
	go func() {
		prev.inflight.Wait()
		close(drained)
	}()

	timer := time.NewTimer(drainTimeout)
	defer timer.Stop()
	select {
	case <-drained:
	case <-timer.C:
	}
	return prev.svc.Router().Close()
}

// New creates an unconfigured router.
func New(opts ...Option) *Router {
	return router.New(opts...)
}

// FromMap creates a router and applies each route's properties in order.
// On failure every sink built so far is closed.
func FromMap(routes []map[string]string, opts ...Option) (*Router, error) {
	r := router.New(opts...)
	for i, props := range routes {
		if _, err := r.Configure(props); err != nil {
			return nil, errors.Join(fmt.Errorf("route %d: %w", i, err), r.Close())
		}
	}
	return r, nil
}

// Init installs r as the process-wide router. The previously installed
// router is closed after in-flight dispatches through it complete.
func Init(r *Router) error {
	if r == nil {
		return core.NewConfigurationError("router is nil")
	}

	mu.Lock()
	prev := current
	current = &installed{svc: service.New(r)}
	mu.Unlock()

	if prev != nil && prev.svc.Router() != r {
		return retire(prev)
	}
	return nil
}

// Current returns the installed router, or nil.
func Current() *Router {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return nil
	}
	return current.svc.Router()
}

// Close uninstalls and closes the current router.
func Close() error {
	mu.Lock()
	prev := current
	current = nil
	mu.Unlock()

	if prev == nil {
		return nil
	}
	return retire(prev)
}

// Log dispatches content at level under namespace.
func Log(level Level, namespace, content string) error {
	return LogContext(context.Background(), level, namespace, content)
}

// LogContext is Log with a context for writes that may block.
func LogContext(ctx context.Context, level Level, namespace, content string) error {
	return Submit(ctx, Message{Content: content, Level: level, Namespace: namespace})
}

// Submit dispatches msg through the installed router. The dispatch does not
// hold up Init or Close; a router replaced meanwhile is closed after it.
func Submit(ctx context.Context, msg Message) error {
	h, err := acquire()
	if err != nil {
		return err
	}
	defer h.inflight.Done()
	return h.svc.SubmitContext(ctx, msg)
}

// LogDefault dispatches at the router's default level.
func LogDefault(namespace, content string) error {
	h, err := acquire()
	if err != nil {
		return err
	}
	defer h.inflight.Done()
	msg := Message{Content: content, Level: h.svc.Router().DefaultLevel(), Namespace: namespace}
	return h.svc.Submit(msg)
}

func Debug(namespace, content string) error { return Log(LevelDebug, namespace, content) }
func Info(namespace, content string) error  { return Log(LevelInfo, namespace, content) }
func Warn(namespace, content string) error  { return Log(LevelWarn, namespace, content) }
func Error(namespace, content string) error { return Log(LevelError, namespace, content) }

// Fatal only routes; it does not exit the process.
func Fatal(namespace, content string) error { return Log(LevelFatal, namespace, content) }

// Stats returns the dispatch counters of the installed router.
func Stats() service.Stats {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return service.Stats{}
	}
	return current.svc.GetStats()
}
