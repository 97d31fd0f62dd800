// FILE: logroute/src/internal/config/logging.go
package config

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/log"
)

// LogConfig controls logroute's own application log, not routed output
type LogConfig struct {
	Output  string            `toml:"output"` // file, stdout, stderr, both, none
	Level   string            `toml:"level"`  // debug, info, warn, error
	File    *LogFileConfig    `toml:"file"`
	Console *LogConsoleConfig `toml:"console"`
}

type LogFileConfig struct {
	Directory      string  `toml:"directory"`
	Name           string  `toml:"name"`
	MaxSizeMB      int64   `toml:"max_size_mb"`
	MaxTotalSizeMB int64   `toml:"max_total_size_mb"`
	RetentionHours float64 `toml:"retention_hours"` // 0 keeps files forever
}

type LogConsoleConfig struct {
	Target string `toml:"target"` // stdout, stderr, split
	Format string `toml:"format"` // txt, json
}

func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Output: "stderr",
		Level:  "info",
		File: &LogFileConfig{
			Directory:      "./log",
			Name:           "logroute",
			MaxSizeMB:      100,
			MaxTotalSizeMB: 1000,
			RetentionHours: 168,
		},
		Console: &LogConsoleConfig{Target: "stderr", Format: "txt"},
	}
}

// ParseLogLevel maps an application log level name to a log package level.
func ParseLogLevel(level string) (int64, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int64(log.LevelDebug), nil
	case "info":
		return int64(log.LevelInfo), nil
	case "warn", "warning":
		return int64(log.LevelWarn), nil
	case "error":
		return int64(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}

// LoggerConfig builds the log.Logger configuration for c.
// Quiet disables every output regardless of c.
func (c *LogConfig) LoggerConfig(quiet bool) (*log.Config, error) {
	lc := log.DefaultConfig()
	if quiet {
		lc.DisableFile = true
		lc.EnableConsole = false
		lc.Level = 255
		return lc, nil
	}

	level, err := ParseLogLevel(c.Level)
	if err != nil {
		return nil, err
	}
	lc.Level = level

	switch c.Output {
	case "none":
		lc.DisableFile = true
		lc.EnableConsole = false
	case "stdout", "stderr":
		lc.DisableFile = true
		lc.EnableConsole = true
		lc.ConsoleTarget = c.Output
	case "file":
		lc.EnableConsole = false
		c.applyFile(lc)
	case "both":
		lc.EnableConsole = true
		c.applyFile(lc)
		lc.ConsoleTarget = c.consoleTarget()
	default:
		return nil, fmt.Errorf("invalid log output mode: %s", c.Output)
	}

	if c.Console != nil && c.Console.Format != "" {
		lc.Format = c.Console.Format
	}
	return lc, nil
}

func (c *LogConfig) applyFile(lc *log.Config) {
	f := c.File
	if f == nil {
		return
	}
	lc.Directory = f.Directory
	lc.Name = f.Name
	lc.MaxSizeKB = f.MaxSizeMB * 1000
	lc.MaxTotalSizeKB = f.MaxTotalSizeMB * 1000
	if f.RetentionHours > 0 {
		lc.RetentionPeriodHrs = f.RetentionHours
	}
}

func (c *LogConfig) consoleTarget() string {
	if c.Console != nil && c.Console.Target != "" {
		return c.Console.Target
	}
	return "stderr"
}
