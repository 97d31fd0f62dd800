// FILE: logroute/src/cmd/logroute/flags.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"logroute/src/internal/config"
	"logroute/src/internal/core"
)

// FlagConfig holds command-line flags. Settings that also exist in the
// config file are passed on to the config loader as overrides.
type FlagConfig struct {
	ConfigFile  string
	ShowVersion bool
	Quiet       bool

	// Input
	Level     string
	Namespace string

	// Runtime
	ConfigAutoReload      bool
	DisableStatusReporter bool

	// Application logging
	LogOutput string
	LogLevel  string
}

func ParseFlags(args []string) (*FlagConfig, error) {
	fc := &FlagConfig{}
	fs := flag.NewFlagSet("logroute", flag.ContinueOnError)
	fs.Usage = func() { customUsage(fs) }

	fs.StringVar(&fc.ConfigFile, "config", "", "Config file path")
	fs.BoolVar(&fc.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&fc.Quiet, "quiet", false, "Suppress all console output")

	fs.StringVar(&fc.Level, "level", "", "Level for input lines without a level prefix (overrides defaults.level)")
	fs.StringVar(&fc.Namespace, "namespace", "", "Namespace for input lines (overrides defaults.namespace)")

	fs.BoolVar(&fc.ConfigAutoReload, "config-auto-reload", false, "Reload routes when the config file changes")
	fs.BoolVar(&fc.DisableStatusReporter, "disable-status-reporter", false, "Disable the periodic status reporter")

	fs.StringVar(&fc.LogOutput, "log-output", "", "Log output: file, stdout, stderr, both, none (overrides config)")
	fs.StringVar(&fc.LogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return fc, fc.validate()
}

func (fc *FlagConfig) validate() error {
	if fc.LogOutput != "" {
		validOutputs := map[string]bool{
			"file": true, "stdout": true, "stderr": true,
			"both": true, "none": true,
		}
		if !validOutputs[fc.LogOutput] {
			return fmt.Errorf("invalid log-output: %s (valid: file, stdout, stderr, both, none)", fc.LogOutput)
		}
	}

	if fc.LogLevel != "" {
		if _, err := config.ParseLogLevel(fc.LogLevel); err != nil {
			return fmt.Errorf("invalid log-level: %s (valid: debug, info, warn, error)", fc.LogLevel)
		}
	}

	if fc.Level != "" {
		if _, err := core.ParseLevel(fc.Level); err != nil {
			return fmt.Errorf("invalid level: %s (valid: DEBUG, INFO, WARN, ERROR, FATAL)", fc.Level)
		}
	}

	return nil
}

// Overrides renders the flags that map onto config keys as loader arguments.
func (fc *FlagConfig) Overrides() []string {
	var args []string
	if fc.LogOutput != "" {
		args = append(args, "--logging.output="+fc.LogOutput)
	}
	if fc.LogLevel != "" {
		args = append(args, "--logging.level="+strings.ToLower(fc.LogLevel))
	}
	if fc.Level != "" {
		args = append(args, "--defaults.level="+strings.ToUpper(fc.Level))
	}
	if fc.Namespace != "" {
		args = append(args, "--defaults.namespace="+fc.Namespace)
	}
	if fc.ConfigAutoReload {
		args = append(args, "--config_auto_reload=true")
	}
	if fc.DisableStatusReporter {
		args = append(args, "--disable_status_reporter=true")
	}
	return args
}

func customUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, "logroute - Level-routed log dispatcher\n\n")
	fmt.Fprintf(os.Stderr, "Usage: %s [command] [options] < input\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	fs.PrintDefaults()

	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  # Route lines from a process through the configured sinks\n")
	fmt.Fprintf(os.Stderr, "  myapp 2>&1 | %s --config /etc/logroute.toml --namespace myapp\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "  # Quick routes without a config file\n")
	fmt.Fprintf(os.Stderr, "  LOGROUTE_ROUTES=ERROR:file:/var/log/err.log %s\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "Environment Variables:\n")
	fmt.Fprintf(os.Stderr, "  LOGROUTE_CONFIG_FILE   Config file path\n")
	fmt.Fprintf(os.Stderr, "  LOGROUTE_CONFIG_DIR    Config directory\n")
	fmt.Fprintf(os.Stderr, "  LOGROUTE_ROUTES        Routes as LEVEL:TYPE[:TARGET],... (replaces [[routes]])\n")
}
