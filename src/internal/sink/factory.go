// FILE: logroute/src/internal/sink/factory.go
package sink

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"logroute/src/internal/core"
	"logroute/src/internal/diag"
)

// Properties are the raw string settings of one route.
type Properties map[string]string

// Get returns the trimmed value for key.
func (p Properties) Get(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Factory builds sinks by type name.
type Factory interface {
	Build(sinkType string, props Properties) (Sink, error)
}

// Kind is the target type of a property conversion.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindStrings
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindStrings:
		return "[]string"
	default:
		return "unknown"
	}
}

// Param maps one property key onto a typed setter.
type Param struct {
	Key   string
	Kind  Kind
	apply func(s Sink, v any) bool
}

// StringParam declares a string property applied through set.
func StringParam[S Sink](key string, set func(S, string)) Param {
	return typedParam(key, KindString, set)
}

func IntParam[S Sink](key string, set func(S, int)) Param {
	return typedParam(key, KindInt, set)
}

func BoolParam[S Sink](key string, set func(S, bool)) Param {
	return typedParam(key, KindBool, set)
}

func StringsParam[S Sink](key string, set func(S, []string)) Param {
	return typedParam(key, KindStrings, set)
}

func typedParam[S Sink, V any](key string, kind Kind, set func(S, V)) Param {
	return Param{
		Key:  key,
		Kind: kind,
		apply: func(s Sink, v any) bool {
			target, ok := s.(S)
			if !ok {
				return false
			}
			value, ok := v.(V)
			if !ok {
				return false
			}
			set(target, value)
			return true
		},
	}
}

// Convert turns a raw property string into the value for kind.
func Convert(kind Kind, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case KindString:
		return raw, nil
	case KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid int %q: %w", raw, err)
		}
		return n, nil
	case KindBool:
		switch strings.ToLower(raw) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("invalid bool %q", raw)
	case KindStrings:
		if raw == "" {
			return []string{}, nil
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	default:
		return nil, fmt.Errorf("unsupported kind %d", kind)
	}
}

// Entry describes one constructible sink implementation.
type Entry struct {
	Type   string
	Class  string
	New    func() Sink
	Params []Param
}

// Registry is the default Factory: an explicit table of sink types.
type Registry struct {
	mu      sync.RWMutex
	byType  map[string]Entry
	byClass map[string]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byType:  make(map[string]Entry),
		byClass: make(map[string]Entry),
	}
}

// Register adds e. The first entry registered for a type is its default class.
func (r *Registry) Register(e Entry) error {
	if e.Type == "" || e.Class == "" || e.New == nil {
		return fmt.Errorf("sink entry requires type, class and constructor")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byClass[e.Class]; exists {
		return fmt.Errorf("sink class %q already registered", e.Class)
	}
	r.byClass[e.Class] = e
	if _, exists := r.byType[e.Type]; !exists {
		r.byType[e.Type] = e
	}
	return nil
}

// Types returns the registered sink types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.byType))
	for t := range r.byType {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build constructs a sink of sinkType, applies known properties and names it
// after its type. sink_class, when present, selects a specific class that must
// be registered under the same type.
func (r *Registry) Build(sinkType string, props Properties) (Sink, error) {
	sinkType = strings.ToLower(strings.TrimSpace(sinkType))
	if sinkType == "" {
		return nil, core.NewConfigurationError("sink_type is required")
	}

	r.mu.RLock()
	entry, ok := r.byType[sinkType]
	if class, hasClass := props.Get(core.PropSinkClass); hasClass && class != "" {
		entry, ok = r.byClass[class]
		if !ok {
			r.mu.RUnlock()
			return nil, core.NewConfigurationError(fmt.Sprintf("unknown sink class %q", class))
		}
		if entry.Type != sinkType {
			r.mu.RUnlock()
			return nil, core.NewConfigurationError(
				fmt.Sprintf("sink class %q has type %q, not %q", class, entry.Type, sinkType))
		}
	}
	r.mu.RUnlock()

	if !ok {
		return nil, core.NewConfigurationError(fmt.Sprintf("unknown sink type %q", sinkType))
	}

	s := entry.New()
	for _, p := range entry.Params {
		raw, present := props[p.Key]
		if !present {
			continue
		}
		value, err := Convert(p.Kind, raw)
		if err != nil {
			diag.Error("sink_factory", "Invalid sink property, skipped",
				"sink_type", sinkType,
				"key", p.Key,
				"kind", p.Kind.String(),
				"error", err)
			continue
		}
		if !p.apply(s, value) {
			diag.Error("sink_factory", "Sink property setter does not match sink",
				"sink_type", sinkType,
				"key", p.Key)
		}
	}

	s.SetName(sinkType)
	return s, nil
}

// DefaultRegistry returns a registry with every built-in sink.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, e := range builtinEntries() {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
	return r
}

func builtinEntries() []Entry {
	return []Entry{
		{
			Type:  "console",
			Class: "ConsoleSink",
			New:   func() Sink { return NewConsoleSink() },
		},
		{
			Type:  "file",
			Class: "FileSink",
			New:   func() Sink { return NewFileSink("") },
			Params: []Param{
				StringParam("file_location", (*FileSink).SetLocation),
				BoolParam("append", (*FileSink).SetAppend),
				BoolParam("buffered", (*FileSink).SetBuffered),
			},
		},
		{
			Type:  "fileextra",
			Class: "FileExtraSink",
			New:   func() Sink { return NewFileExtraSink("", "") },
			Params: []Param{
				StringParam("file_location", func(f *FileExtraSink, v string) { f.SetLocation(v) }),
				StringParam("file_extra", (*FileExtraSink).SetExtra),
				BoolParam("append", func(f *FileExtraSink, v bool) { f.SetAppend(v) }),
				BoolParam("buffered", func(f *FileExtraSink, v bool) { f.SetBuffered(v) }),
			},
		},
		{
			Type:  "rolling",
			Class: "RollingSink",
			New:   func() Sink { return NewRollingSink("", "") },
			Params: []Param{
				StringParam("directory", (*RollingSink).SetDirectory),
				StringParam("name", (*RollingSink).SetFileName),
				IntParam("max_size_mb", (*RollingSink).SetMaxSizeMB),
				IntParam("max_total_size_mb", (*RollingSink).SetMaxTotalSizeMB),
				IntParam("retention_hours", (*RollingSink).SetRetentionHours),
			},
		},
		{
			Type:  "http",
			Class: "HTTPSink",
			New:   func() Sink { return NewHTTPSink("") },
			Params: []Param{
				StringParam("url", (*HTTPSink).SetURL),
				IntParam("timeout_ms", (*HTTPSink).SetTimeoutMS),
				StringParam("auth_secret", (*HTTPSink).SetAuthSecret),
				StringParam("content_type", (*HTTPSink).SetContentType),
			},
		},
		{
			Type:  "tcp",
			Class: "TCPSink",
			New:   func() Sink { return NewTCPSink("", 0) },
			Params: []Param{
				StringParam("host", (*TCPSink).SetHost),
				IntParam("port", (*TCPSink).SetPort),
			},
		},
	}
}
