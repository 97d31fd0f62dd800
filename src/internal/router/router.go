// FILE: logroute/src/internal/router/router.go
package router

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"logroute/src/internal/core"
	"logroute/src/internal/diag"
	"logroute/src/internal/sink"
)

// Route is the destination of one level.
type Route struct {
	TimestampFormat string
	Sink            sink.Sink
}

// table is an immutable routing snapshot. Writers copy, modify and swap it.
type table struct {
	defaultTsFormat string
	defaultLevel    core.Level
	defaultSink     sink.Sink
	routes          map[core.Level]Route
	active          map[string]sink.Sink
}

func (t *table) clone() *table {
	next := &table{
		defaultTsFormat: t.defaultTsFormat,
		defaultLevel:    t.defaultLevel,
		defaultSink:     t.defaultSink,
		routes:          make(map[core.Level]Route, len(t.routes)+1),
		active:          make(map[string]sink.Sink, len(t.active)+1),
	}
	for l, r := range t.routes {
		next.routes[l] = r
	}
	for k, s := range t.active {
		next.active[k] = s
	}
	return next
}

// Router owns the level routing table and the registry of active sinks.
// Reads are lock-free; configuration changes are serialized.
type Router struct {
	mu      sync.Mutex
	current atomic.Pointer[table]
	factory sink.Factory
}

// Option configures a Router at construction.
type Option func(*Router, *table)

// WithDefaultSink sets the sink used by levels without a route. It is not
// registered and is closed by Close.
func WithDefaultSink(s sink.Sink) Option {
	return func(_ *Router, t *table) {
		if s != nil {
			t.defaultSink = s
		}
	}
}

// WithDefaultTimestampFormat sets the pattern used by routes bound without one.
func WithDefaultTimestampFormat(format string) Option {
	return func(_ *Router, t *table) {
		if format != "" {
			t.defaultTsFormat = format
		}
	}
}

// WithDefaultLevel sets the level for routes configured without log_level
// and for messages logged without one.
func WithDefaultLevel(level core.Level) Option {
	return func(_ *Router, t *table) {
		if level.Valid() {
			t.defaultLevel = level
		}
	}
}

// WithFactory replaces the factory Configure builds sinks with.
func WithFactory(f sink.Factory) Option {
	return func(r *Router, _ *table) {
		if f != nil {
			r.factory = f
		}
	}
}

// New creates a router with no level bindings. Unbound levels resolve to
// the default console sink and default timestamp format.
func New(opts ...Option) *Router {
	r := &Router{factory: sink.DefaultRegistry()}
	t := &table{
		defaultTsFormat: core.DefaultTimestampFormat,
		defaultLevel:    core.DefaultLevel,
		defaultSink:     sink.NewConsoleSink(),
		routes:          make(map[core.Level]Route),
		active:          make(map[string]sink.Sink),
	}
	for _, opt := range opts {
		opt(r, t)
	}
	r.current.Store(t)
	return r
}

// Resolve returns the route for level, falling back to the defaults.
func (r *Router) Resolve(level core.Level) Route {
	t := r.current.Load()
	if route, ok := t.routes[level]; ok {
		return route
	}
	return Route{TimestampFormat: t.defaultTsFormat, Sink: t.defaultSink}
}

// DefaultLevel is the level used by callers that omit one.
func (r *Router) DefaultLevel() core.Level {
	return r.current.Load().defaultLevel
}

// DefaultTimestampFormat returns the fallback timestamp pattern.
func (r *Router) DefaultTimestampFormat() string {
	return r.current.Load().defaultTsFormat
}

// DefaultSink returns the fallback sink.
func (r *Router) DefaultSink() sink.Sink {
	return r.current.Load().defaultSink
}

// Routes returns a copy of the explicit level bindings.
func (r *Router) Routes() map[core.Level]Route {
	t := r.current.Load()
	out := make(map[core.Level]Route, len(t.routes))
	for l, route := range t.routes {
		out[l] = route
	}
	return out
}

// ListActive returns the registered sinks ordered by key.
func (r *Router) ListActive() []sink.Sink {
	t := r.current.Load()
	keys := make([]string, 0, len(t.active))
	for k := range t.active {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]sink.Sink, 0, len(keys))
	for _, k := range keys {
		out = append(out, t.active[k])
	}
	return out
}

// Bind routes level to candidate. An already registered sink with the same
// key is reused in place of candidate. The sink previously bound to level is
// closed and deregistered unless something else still routes to it.
// It returns the sink that is now bound.
func (r *Router) Bind(level core.Level, tsFormat string, candidate sink.Sink) (sink.Sink, error) {
	if !level.Valid() {
		return nil, core.NewConfigurationError(fmt.Sprintf("cannot bind level %s", level))
	}
	if candidate == nil {
		return nil, core.NewConfigurationError("cannot bind a nil sink")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bindLocked(level, tsFormat, candidate), nil
}

func (r *Router) bindLocked(level core.Level, tsFormat string, candidate sink.Sink) sink.Sink {
	t := r.current.Load()
	next := t.clone()

	effective := candidate
	if existing := findRegistered(t, candidate.Key()); existing != nil {
		effective = existing
	}

	if prev, ok := t.routes[level]; ok && prev.Sink != effective {
		r.retireLocked(next, prev.Sink, level, effective)
	}

	if tsFormat == "" {
		tsFormat = t.defaultTsFormat
	}
	next.active[effective.Key()] = effective
	next.routes[level] = Route{TimestampFormat: tsFormat, Sink: effective}
	r.current.Store(next)
	return effective
}

// Unbind removes the explicit route for level so it resolves to the defaults.
func (r *Router) Unbind(level core.Level) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.current.Load()
	prev, ok := t.routes[level]
	if !ok {
		return
	}
	next := t.clone()
	delete(next.routes, level)
	r.retireLocked(next, prev.Sink, level, nil)
	r.current.Store(next)
}

// retireLocked closes and deregisters old when nothing in next other than
// level, and other than the incoming sink, still depends on it. An async
// sink whose wrapped sink is still in use is stopped without closing it.
func (r *Router) retireLocked(next *table, old sink.Sink, level core.Level, incoming sink.Sink) {
	if referenced(next, old, level, incoming) {
		if !routedDirectly(next, old, level, incoming) {
			deregister(next, old)
		}
		return
	}

	var err error
	if w, ok := old.(detacher); ok && referenced(next, w.Wrapped(), level, incoming) {
		err = w.Detach()
	} else {
		err = old.Close()
		if w, ok := old.(wrapper); ok {
			inner := w.Wrapped()
			if inner.IsStarted() {
				if cerr := inner.Close(); cerr != nil && err == nil {
					err = cerr
				}
			}
			deregister(next, inner)
		}
	}
	if err != nil {
		diag.Warn("router", "Error closing replaced sink",
			"sink", old.Name(),
			"level", level.String(),
			"error", err)
	}
	deregister(next, old)
}

func deregister(t *table, s sink.Sink) {
	if registered, ok := t.active[s.Key()]; ok && registered == s {
		delete(t.active, s.Key())
	}
}

type wrapper interface {
	Wrapped() sink.Sink
}

// detacher is a wrapper that can stop forwarding without closing the sink
// it wraps.
type detacher interface {
	wrapper
	Detach() error
}

// referenced reports whether anything in t other than the route for except
// uses s, directly or through a wrapper. incoming is about to be bound.
func referenced(t *table, s sink.Sink, except core.Level, incoming sink.Sink) bool {
	if s == t.defaultSink {
		return true
	}
	if incoming != nil && (incoming == s || dependsOn(incoming, s)) {
		return true
	}
	for l, route := range t.routes {
		if l != except && (route.Sink == s || dependsOn(route.Sink, s)) {
			return true
		}
	}
	return false
}

// routedDirectly reports whether some level other than except, or incoming,
// is bound to s itself rather than to a wrapper of it.
func routedDirectly(t *table, s sink.Sink, except core.Level, incoming sink.Sink) bool {
	if incoming == s {
		return true
	}
	for l, route := range t.routes {
		if l != except && route.Sink == s {
			return true
		}
	}
	return false
}

// dependsOn reports whether outer forwards to inner.
func dependsOn(outer, inner sink.Sink) bool {
	w, ok := outer.(wrapper)
	return ok && w.Wrapped() == inner
}

// findRegistered returns the sink registered under key, including sinks
// reachable only as the wrapped sink of a registered async sink, or nil.
func findRegistered(t *table, key string) sink.Sink {
	if s, ok := t.active[key]; ok {
		return s
	}
	for _, s := range t.active {
		if w, ok := s.(wrapper); ok && w.Wrapped().Key() == key {
			return w.Wrapped()
		}
	}
	return nil
}

// lookupLocked returns the registered instance equal to s, or s itself.
func (r *Router) lookupLocked(s sink.Sink) sink.Sink {
	if existing := findRegistered(r.current.Load(), s.Key()); existing != nil {
		return existing
	}
	return s
}

// Close shuts down every registered sink and the default sink. Async
// sinks go first so they can drain into the sinks they wrap.
func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.current.Load()
	sinks := make([]sink.Sink, 0, len(t.active)+1)
	for _, s := range t.active {
		sinks = append(sinks, s)
	}
	sinks = append(sinks, t.defaultSink)
	sort.SliceStable(sinks, func(i, j int) bool {
		_, iw := sinks[i].(wrapper)
		_, jw := sinks[j].(wrapper)
		return iw && !jw
	})

	seen := make(map[sink.Sink]bool, len(sinks))
	var errs []error
	for _, s := range sinks {
		if seen[s] {
			continue
		}
		seen[s] = true
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing sink %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
