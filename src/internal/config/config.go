// FILE: logroute/src/internal/config/config.go
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"logroute/src/internal/core"
)

type Config struct {
	// Application logging
	Logging *LogConfig `toml:"logging"`

	// Fallbacks for unrouted levels and routes that omit them
	Defaults DefaultsConfig `toml:"defaults"`

	// Level routes, applied in order
	Routes []RouteConfig `toml:"routes"`

	// Runtime behavior
	ConfigAutoReload      bool  `toml:"config_auto_reload"`
	DisableStatusReporter bool  `toml:"disable_status_reporter"`
	StatusIntervalSeconds int64 `toml:"status_interval_seconds"`
}

type DefaultsConfig struct {
	// Timestamp pattern, e.g. "dd-MM-yyyy-HH-mm-ss"
	TsFormat string `toml:"ts_format"`

	// Level used by callers that omit one
	Level string `toml:"level"`

	// Namespace attached to lines read from stdin
	Namespace string `toml:"namespace"`
}

// RouteConfig binds one level to a sink
type RouteConfig struct {
	LogLevel    string `toml:"log_level"`
	TsFormat    string `toml:"ts_format"`
	SinkType    string `toml:"sink_type"`
	SinkClass   string `toml:"sink_class"`
	WriteMode   string `toml:"write_mode"`
	ThreadModel string `toml:"thread_model"`

	// Sink-specific parameters, e.g. file_location, url, port
	Options map[string]any `toml:"options"`
}

// Properties flattens the route into the string map the router consumes.
// Named fields take precedence over options with the same key.
func (r RouteConfig) Properties() map[string]string {
	props := make(map[string]string, len(r.Options)+6)
	for k, v := range r.Options {
		props[k] = optionString(v)
	}

	named := map[string]string{
		core.PropLogLevel:    r.LogLevel,
		core.PropTsFormat:    r.TsFormat,
		core.PropSinkType:    r.SinkType,
		core.PropSinkClass:   r.SinkClass,
		core.PropWriteMode:   r.WriteMode,
		core.PropThreadModel: r.ThreadModel,
	}
	for k, v := range named {
		if v != "" {
			props[k] = v
		}
	}
	return props
}

// Level returns the parsed route level, or fallback when unset.
func (r RouteConfig) Level(fallback core.Level) (core.Level, error) {
	if r.LogLevel == "" {
		return fallback, nil
	}
	return core.ParseLevel(r.LogLevel)
}

// DefaultLevel parses Defaults.Level, falling back to INFO.
func (c *Config) DefaultLevel() core.Level {
	if l, err := core.ParseLevel(c.Defaults.Level); err == nil {
		return l
	}
	return core.DefaultLevel
}

// RoutedLevels returns the levels bound by Routes, sorted.
func (c *Config) RoutedLevels() []core.Level {
	seen := make(map[core.Level]bool)
	for _, r := range c.Routes {
		if l, err := r.Level(c.DefaultLevel()); err == nil {
			seen[l] = true
		}
	}
	levels := make([]core.Level, 0, len(seen))
	for l := range seen {
		levels = append(levels, l)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	return levels
}

func optionString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, optionString(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(val)
	}
}
