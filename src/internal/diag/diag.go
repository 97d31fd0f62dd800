// FILE: logroute/src/internal/diag/diag.go
package diag

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/log"
	"golang.org/x/time/rate"
)

// Side-channel reporting for sink and engine failures.
// Nothing here ever returns an error to the dispatching caller.

const (
	LevelWarn  = "WARN"
	LevelError = "ERROR"

	maxLimiters = 1024
)

// Record is one diagnostic report.
type Record struct {
	Time      time.Time
	Level     string
	Component string
	Msg       string
	Fields    []any
}

type limiterEntry struct {
	limiter    *rate.Limiter
	suppressed int
}

var (
	mu        sync.Mutex
	logger    *log.Logger
	limiters  = make(map[string]*limiterEntry)
	interval  = time.Second
	burst     = 3
	observers = make(map[uint64]func(Record))
	nextID    atomic.Uint64
)

// SetLogger replaces the diagnostic logger and returns the previous one.
// A nil logger restores the lazily created stderr logger.
func SetLogger(l *log.Logger) *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	prev := logger
	logger = l
	return prev
}

// SetThrottle sets how many identical reports pass per interval.
func SetThrottle(every time.Duration, n int) {
	mu.Lock()
	defer mu.Unlock()
	interval = every
	burst = n
	limiters = make(map[string]*limiterEntry)
}

// Observe registers fn for every report, throttled or not.
func Observe(fn func(Record)) (cancel func()) {
	id := nextID.Add(1)
	mu.Lock()
	observers[id] = fn
	mu.Unlock()
	return func() {
		mu.Lock()
		delete(observers, id)
		mu.Unlock()
	}
}

// Warn reports a recoverable problem.
func Warn(component, msg string, kv ...any) {
	report(LevelWarn, component, msg, kv)
}

// Error reports a failed operation.
func Error(component, msg string, kv ...any) {
	report(LevelError, component, msg, kv)
}

func report(level, component, msg string, kv []any) {
	rec := Record{Time: time.Now(), Level: level, Component: component, Msg: msg, Fields: kv}

	mu.Lock()
	fns := make([]func(Record), 0, len(observers))
	for _, fn := range observers {
		fns = append(fns, fn)
	}
	suppressed, allowed := admit(level + "|" + component + "|" + msg)
	l := current()
	mu.Unlock()

	for _, fn := range fns {
		fn(rec)
	}

	if !allowed {
		return
	}

	args := make([]any, 0, len(kv)+6)
	args = append(args, "msg", msg, "component", component)
	args = append(args, kv...)
	if suppressed > 0 {
		args = append(args, "suppressed", suppressed)
	}

	switch level {
	case LevelError:
		l.Error(args...)
	default:
		l.Warn(args...)
	}
}

// admit applies the per-key throttle. Caller holds mu.
func admit(key string) (int, bool) {
	e, ok := limiters[key]
	if !ok {
		if len(limiters) >= maxLimiters {
			limiters = make(map[string]*limiterEntry)
		}
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(interval), burst)}
		limiters[key] = e
	}
	if !e.limiter.Allow() {
		e.suppressed++
		return 0, false
	}
	n := e.suppressed
	e.suppressed = 0
	return n, true
}

// current returns the diagnostic logger, creating the default. Caller holds mu.
func current() *log.Logger {
	if logger != nil {
		return logger
	}
	l := log.NewLogger()
	err := l.ApplyConfigString(
		"disable_file=true",
		"enable_console=true",
		"console_target=stderr",
		"format=txt",
	)
	if err == nil {
		err = l.Start()
	}
	if err != nil {
		// Uninitialized logger drops output
		l = log.NewLogger()
	}
	logger = l
	return logger
}

// Logger returns the diagnostic logger, for adapters that need a *log.Logger.
func Logger() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	return current()
}
