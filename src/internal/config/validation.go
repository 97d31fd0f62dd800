// FILE: logroute/src/internal/config/validation.go
package config

import (
	"fmt"
	"strconv"
	"strings"

	"logroute/src/internal/core"

	lconfig "github.com/lixenwraith/config"
)

var (
	validWriteModes   = map[string]bool{"": true, "SYNC": true, "ASYNC": true}
	validThreadModels = map[string]bool{"": true, "SINGLE": true, "MULTI": true}
)

func validateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.Logging == nil {
		cfg.Logging = DefaultLogConfig()
	}
	if err := validateLogConfig(cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if cfg.Defaults.Level != "" {
		if _, err := core.ParseLevel(cfg.Defaults.Level); err != nil {
			return fmt.Errorf("defaults: %w", err)
		}
	}
	if cfg.StatusIntervalSeconds < 0 {
		return fmt.Errorf("status_interval_seconds must not be negative: %d", cfg.StatusIntervalSeconds)
	}

	for i := range cfg.Routes {
		if err := validateRoute(i, &cfg.Routes[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateLogConfig(cfg *LogConfig) error {
	validOutputs := map[string]bool{
		"file": true, "stdout": true, "stderr": true,
		"both": true, "none": true,
	}
	if !validOutputs[cfg.Output] {
		return fmt.Errorf("invalid log output mode: %s", cfg.Output)
	}

	if _, err := ParseLogLevel(cfg.Level); err != nil {
		return err
	}

	if cfg.Console != nil {
		validTargets := map[string]bool{
			"stdout": true, "stderr": true, "split": true, "": true,
		}
		if !validTargets[cfg.Console.Target] {
			return fmt.Errorf("invalid console target: %s", cfg.Console.Target)
		}

		validFormats := map[string]bool{
			"txt": true, "json": true, "": true,
		}
		if !validFormats[cfg.Console.Format] {
			return fmt.Errorf("invalid console format: %s", cfg.Console.Format)
		}
	}

	return nil
}

func validateRoute(index int, r *RouteConfig) error {
	if err := lconfig.NonEmpty(r.SinkType); err != nil {
		return fmt.Errorf("route %d: missing sink_type", index)
	}

	if r.LogLevel != "" {
		if _, err := core.ParseLevel(r.LogLevel); err != nil {
			return fmt.Errorf("route %d: %w", index, err)
		}
	}

	if !validWriteModes[strings.ToUpper(r.WriteMode)] {
		return fmt.Errorf("route %d: invalid write_mode %q (valid: SYNC, ASYNC)", index, r.WriteMode)
	}
	if !validThreadModels[strings.ToUpper(r.ThreadModel)] {
		return fmt.Errorf("route %d: invalid thread_model %q (valid: SINGLE, MULTI)", index, r.ThreadModel)
	}

	switch strings.ToLower(r.SinkType) {
	case "file", "fileextra":
		loc := optionString(r.Options["file_location"])
		if err := lconfig.NonEmpty(loc); err != nil {
			return fmt.Errorf("route %d: %s sink requires 'file_location' option", index, r.SinkType)
		}
		if strings.Contains(loc, "..") {
			return fmt.Errorf("route %d: file_location contains directory traversal", index)
		}
	case "http":
		if err := lconfig.NonEmpty(optionString(r.Options["url"])); err != nil {
			return fmt.Errorf("route %d: http sink requires 'url' option", index)
		}
	case "tcp":
		port, err := strconv.Atoi(optionString(r.Options["port"]))
		if err != nil {
			return fmt.Errorf("route %d: tcp sink requires numeric 'port' option", index)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("route %d: tcp port %d out of range", index, port)
		}
		if host := optionString(r.Options["host"]); host != "" && host != "0.0.0.0" {
			if err := lconfig.IPAddress(host); err != nil {
				return fmt.Errorf("route %d: %w", index, err)
			}
		}
	}

	return nil
}
