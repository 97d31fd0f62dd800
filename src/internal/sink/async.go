// FILE: logroute/src/internal/sink/async.go
package sink

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"logroute/src/internal/core"
	"logroute/src/internal/diag"
)

// AsyncSink decouples producers from a wrapped sink through a bounded queue
// drained by a fixed worker pool. Worker 0 leads shutdown: it drains what is
// left in the queue into the wrapped sink and then closes it, or only
// flushes it when the sink was detached.
type AsyncSink struct {
	name      string
	sink      Sink
	queueSize int
	workers   int
	maxFlush  time.Duration

	mu         sync.Mutex // lifecycle transitions
	queue      chan *core.Event
	stop       chan struct{}
	closed     chan struct{}
	leaderDone chan struct{}
	followers  sync.WaitGroup

	started      atomic.Bool
	terminated   atomic.Bool
	closeWrapped atomic.Bool
}

// AsyncOption configures an AsyncSink.
type AsyncOption func(*AsyncSink)

// WithQueueSize sets the queue capacity. Init rejects values below one.
func WithQueueSize(n int) AsyncOption {
	return func(a *AsyncSink) { a.queueSize = n }
}

// WithWorkers sets the number of goroutines writing to the wrapped sink.
func WithWorkers(n int) AsyncOption {
	return func(a *AsyncSink) { a.workers = n }
}

// WithMaxFlush bounds how long Close waits for the queue to drain.
func WithMaxFlush(d time.Duration) AsyncOption {
	return func(a *AsyncSink) { a.maxFlush = d }
}

// NewAsyncSink wraps s. Defaults: 256 slots, 1 worker, 1s drain budget.
func NewAsyncSink(s Sink, opts ...AsyncOption) *AsyncSink {
	a := &AsyncSink{
		sink:      s,
		queueSize: core.DefaultQueueSize,
		workers:   core.DefaultWorkers,
		maxFlush:  core.DefaultMaxFlushTime,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers < 1 {
		a.workers = 1
	}
	return a
}

func (a *AsyncSink) Name() string {
	if a.name == "" {
		return "async:" + a.sink.Name()
	}
	return a.name
}

func (a *AsyncSink) SetName(name string) { a.name = name }

// Key delegates identity to the wrapped sink.
func (a *AsyncSink) Key() string { return "async:" + a.sink.Key() }

func (a *AsyncSink) IsStarted() bool { return a.started.Load() }

// Wrapped returns the sink events are forwarded to.
func (a *AsyncSink) Wrapped() Sink { return a.sink }

// Workers returns the size of the worker pool.
func (a *AsyncSink) Workers() int { return a.workers }

// QueueSize returns the configured queue capacity.
func (a *AsyncSink) QueueSize() int { return a.queueSize }

// Pending returns the approximate number of queued events.
func (a *AsyncSink) Pending() int {
	a.mu.Lock()
	q := a.queue
	a.mu.Unlock()
	return len(q)
}

func (a *AsyncSink) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.started.Load() {
		return nil
	}
	if a.terminated.Load() {
		return core.NewConfigurationError(fmt.Sprintf("async sink %s cannot be restarted after close", a.Name()))
	}
	if a.queueSize < 1 {
		diag.Warn("async_sink", "Queue capacity must be at least 1, sink not started",
			"sink", a.Name(),
			"queue_size", a.queueSize)
		return core.NewConfigurationError(fmt.Sprintf("invalid queue size %d", a.queueSize))
	}

	if !a.sink.IsStarted() {
		if err := a.sink.Init(); err != nil {
			return err
		}
	}

	a.queue = make(chan *core.Event, a.queueSize)
	a.stop = make(chan struct{})
	a.closed = make(chan struct{})
	a.leaderDone = make(chan struct{})
	a.started.Store(true)

	a.followers.Add(a.workers - 1)
	for ordinal := 0; ordinal < a.workers; ordinal++ {
		go a.worker(ordinal)
	}
	return nil
}

func (a *AsyncSink) Write(ev *core.Event) {
	_ = a.WriteContext(context.Background(), ev)
}

// WriteContext blocks until ev is queued. Cancellation of ctx does not abort
// the enqueue; it is remembered and returned once the event is queued.
func (a *AsyncSink) WriteContext(ctx context.Context, ev *core.Event) error {
	if !a.started.Load() {
		diag.Error("async_sink", "Write on sink that is not started", "sink", a.Name())
		return nil
	}

	interrupted := false
	done := ctx.Done()
	for {
		// Closed takes precedence over a free slot
		select {
		case <-a.closed:
			return a.dropped(ctx, interrupted)
		default:
		}

		select {
		case a.queue <- ev:
			if !a.started.Load() {
				diag.Warn("async_sink", "Event queued during shutdown, may be discarded", "sink", a.Name())
			}
			if interrupted {
				return ctx.Err()
			}
			return nil
		case <-done:
			interrupted = true
			done = nil
		case <-a.closed:
			return a.dropped(ctx, interrupted)
		}
	}
}

func (a *AsyncSink) dropped(ctx context.Context, interrupted bool) error {
	diag.Warn("async_sink", "Event dropped, sink closed while enqueuing", "sink", a.Name())
	if interrupted {
		return ctx.Err()
	}
	return nil
}

func (a *AsyncSink) worker(ordinal int) {
	if ordinal == 0 {
		defer a.lead()
	} else {
		defer a.followers.Done()
	}

	for a.started.Load() {
		select {
		case <-a.stop:
			return
		case ev := <-a.queue:
			a.sink.Write(ev)
		}
	}
}

// lead waits for the other workers to finish their in-flight write, drains
// the queue synchronously and closes or flushes the wrapped sink.
func (a *AsyncSink) lead() {
	defer close(a.leaderDone)

	a.followers.Wait()

drain:
	for {
		select {
		case ev := <-a.queue:
			a.sink.Write(ev)
		default:
			break drain
		}
	}

	if !a.closeWrapped.Load() {
		if err := a.sink.Flush(); err != nil {
			diag.Error("async_sink", "Failed to flush wrapped sink",
				"sink", a.Name(),
				"error", err)
		}
		return
	}
	if err := a.sink.Close(); err != nil {
		diag.Error("async_sink", "Failed to close wrapped sink",
			"sink", a.Name(),
			"error", err)
	}
}

func (a *AsyncSink) Flush() error {
	return a.sink.Flush()
}

// Close stops the workers and waits for the leader's drain for at most the
// configured flush budget. Events still queued after that are discarded.
// The wrapped sink is closed after the drain.
func (a *AsyncSink) Close() error {
	return a.shutdown(true)
}

// Detach is Close without closing the wrapped sink, for a wrapped sink that
// is still written to directly. The wrapped sink is flushed instead.
func (a *AsyncSink) Detach() error {
	return a.shutdown(false)
}

func (a *AsyncSink) shutdown(closeWrapped bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.started.Swap(false) {
		return nil
	}
	a.terminated.Store(true)
	a.closeWrapped.Store(closeWrapped)
	close(a.closed)
	close(a.stop)

	timer := time.NewTimer(a.maxFlush)
	defer timer.Stop()

	select {
	case <-a.leaderDone:
		return nil
	case <-timer.C:
		err := &core.ShutdownTimeoutError{
			Sink:    a.Name(),
			Timeout: a.maxFlush,
			Pending: len(a.queue),
		}
		diag.Warn("async_sink", err.Error(),
			"sink", a.Name(),
			"pending", err.Pending)
		return err
	}
}
