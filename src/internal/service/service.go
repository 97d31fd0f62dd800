// FILE: logroute/src/internal/service/service.go
package service

import (
	"context"
	"sync/atomic"

	"logroute/src/internal/core"
	"logroute/src/internal/diag"
	"logroute/src/internal/format"
	"logroute/src/internal/router"
	"logroute/src/internal/sink"
)

// Service dispatches messages through a router to their sinks.
type Service struct {
	router *router.Router

	submitted    atomic.Uint64
	rejected     atomic.Uint64
	initFailures atomic.Uint64
}

// Stats holds dispatch counters.
type Stats struct {
	Submitted    uint64
	Rejected     uint64
	InitFailures uint64
}

// New creates a service bound to r. A nil router makes every submit fail.
func New(r *router.Router) *Service {
	return &Service{router: r}
}

// Router returns the router the service dispatches through.
func (s *Service) Router() *router.Router {
	return s.router
}

// Submit dispatches msg. Only validation failures are returned.
func (s *Service) Submit(msg core.Message) error {
	return s.SubmitContext(context.Background(), msg)
}

// SubmitContext dispatches msg, passing ctx to sinks whose write may block.
// Besides validation failures it returns only ctx's error when ctx was
// cancelled while the write was blocked; the event is still written.
func (s *Service) SubmitContext(ctx context.Context, msg core.Message) error {
	if s == nil || s.router == nil {
		return core.NewValidationError("configuration", "not established")
	}
	if err := msg.Validate(); err != nil {
		s.rejected.Add(1)
		return err
	}
	s.submitted.Add(1)

	route := s.router.Resolve(msg.Level)
	ev := core.NewEvent(msg, route.TimestampFormat)
	ev.SetFormatted(format.Format(ev))

	target := route.Sink
	if !target.IsStarted() {
		if err := target.Init(); err != nil {
			s.initFailures.Add(1)
			diag.Error("service", "Sink failed to start, event dropped",
				"sink", target.Name(),
				"level", msg.Level.String(),
				"error", err)
			return nil
		}
	}

	if cw, ok := target.(sink.ContextWriter); ok {
		return cw.WriteContext(ctx, ev)
	}
	target.Write(ev)
	return nil
}

// GetStats returns a snapshot of the dispatch counters.
func (s *Service) GetStats() Stats {
	return Stats{
		Submitted:    s.submitted.Load(),
		Rejected:     s.rejected.Load(),
		InitFailures: s.initFailures.Load(),
	}
}
