// FILE: logroute/src/internal/router/configure.go
package router

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"logroute/src/internal/core"
	"logroute/src/internal/diag"
	"logroute/src/internal/sink"
)

// Write modes
const (
	WriteModeSync  = "SYNC"
	WriteModeAsync = "ASYNC"
)

// Thread models
const (
	ThreadModelSingle = "SINGLE"
	ThreadModelMulti  = "MULTI"
)

// Configure builds a sink from one route's properties and binds it.
//
// Recognized keys: log_level (default level when absent), ts_format
// (default format when absent), sink_type, sink_class, write_mode
// (SYNC|ASYNC), thread_model (SINGLE|MULTI), queue_size, max_flush_ms, plus
// any sink parameters. For ASYNC the base sink is deduplicated first and then
// wrapped; the wrapper is deduplicated in turn when bound.
func (r *Router) Configure(props map[string]string) (sink.Sink, error) {
	p := sink.Properties(props)
	t := r.current.Load()

	level := t.defaultLevel
	if v, ok := p.Get(core.PropLogLevel); ok && v != "" {
		parsed, err := core.ParseLevel(v)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	tsFormat := t.defaultTsFormat
	if v, ok := p.Get(core.PropTsFormat); ok && v != "" {
		tsFormat = v
	}

	writeMode, err := parseWriteMode(p)
	if err != nil {
		return nil, err
	}
	workers, err := parseThreadModel(p)
	if err != nil {
		return nil, err
	}

	sinkType, _ := p.Get(core.PropSinkType)
	built, err := r.factory.Build(sinkType, p)
	if err != nil {
		diag.Error("router", "Failed to build sink",
			"sink_type", sinkType,
			"error", err)
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	candidate := built
	if writeMode == WriteModeAsync {
		base := r.lookupLocked(built)
		opts := append([]sink.AsyncOption{sink.WithWorkers(workers)}, asyncOptions(p)...)
		candidate = sink.NewAsyncSink(base, opts...)
	}

	return r.bindLocked(level, tsFormat, candidate), nil
}

func parseWriteMode(p sink.Properties) (string, error) {
	v, _ := p.Get(core.PropWriteMode)
	switch strings.ToUpper(v) {
	case "", WriteModeSync:
		return WriteModeSync, nil
	case WriteModeAsync:
		return WriteModeAsync, nil
	default:
		return "", core.NewConfigurationError(fmt.Sprintf("unknown write_mode %q", v))
	}
}

// parseThreadModel maps the thread model to an async worker count.
func parseThreadModel(p sink.Properties) (int, error) {
	v, _ := p.Get(core.PropThreadModel)
	switch strings.ToUpper(v) {
	case "", ThreadModelSingle:
		return core.DefaultWorkers, nil
	case ThreadModelMulti:
		return core.MultiThreadWorkers, nil
	default:
		return 0, core.NewConfigurationError(fmt.Sprintf("unknown thread_model %q", v))
	}
}

func asyncOptions(p sink.Properties) []sink.AsyncOption {
	var opts []sink.AsyncOption
	if v, ok := p.Get(core.PropQueueSize); ok {
		if n, err := strconv.Atoi(v); err == nil {
			opts = append(opts, sink.WithQueueSize(n))
		} else {
			diag.Error("router", "Invalid queue_size, default kept", "value", v, "error", err)
		}
	}
	if v, ok := p.Get(core.PropMaxFlushMS); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts = append(opts, sink.WithMaxFlush(time.Duration(n)*time.Millisecond))
		} else {
			diag.Error("router", "Invalid max_flush_ms, default kept", "value", v)
		}
	}
	return opts
}
