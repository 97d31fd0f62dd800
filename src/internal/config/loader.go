// FILE: logroute/src/internal/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"logroute/src/internal/core"

	lconfig "github.com/lixenwraith/config"
)

func defaults() *Config {
	return &Config{
		Logging: DefaultLogConfig(),
		Defaults: DefaultsConfig{
			TsFormat:  core.DefaultTimestampFormat,
			Level:     core.DefaultLevel.String(),
			Namespace: "stdin",
		},
		Routes:                []RouteConfig{},
		StatusIntervalSeconds: 30,
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaults()
}

// LoadWithCLI loads defaults, the TOML file, LOGROUTE_ environment variables
// and CLI overrides, highest precedence last in that list.
func LoadWithCLI(cliArgs []string) (*Config, error) {
	configPath := GetConfigPath()

	cfg, err := lconfig.NewBuilder().
		WithDefaults(defaults()).
		WithEnvPrefix("LOGROUTE_").
		WithFile(configPath).
		WithArgs(cliArgs).
		WithEnvTransform(customEnvTransform).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := handleRoutesEnv(cfg); err != nil {
		return nil, err
	}

	finalConfig := &Config{}
	if err := cfg.Scan(finalConfig, ""); err != nil {
		return nil, fmt.Errorf("failed to scan config: %w", err)
	}

	return finalConfig, validateConfig(finalConfig)
}

// SaveToFile validates c and writes it as TOML.
func (c *Config) SaveToFile(path string) error {
	if err := lconfig.NonEmpty(path); err != nil {
		return fmt.Errorf("cannot save config: path is empty")
	}
	if err := validateConfig(c); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}

	lcfg, err := lconfig.NewBuilder().
		WithTarget(c).
		WithFile(path).
		WithFileFormat("toml").
		Build()
	if err != nil {
		return fmt.Errorf("failed to create config builder: %w", err)
	}
	return lcfg.Save(path)
}

func customEnvTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	env = strings.ToUpper(env)
	env = "LOGROUTE_" + env
	return env
}

func GetConfigPath() string {
	if configFile := os.Getenv("LOGROUTE_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("LOGROUTE_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("LOGROUTE_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "logroute.toml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "logroute.toml")
	}

	return "logroute.toml"
}

// handleRoutesEnv replaces routes from LOGROUTE_ROUTES, a comma separated
// list of LEVEL:TYPE[:TARGET] entries, e.g. "INFO:file:/var/log/app.log".
func handleRoutesEnv(cfg *lconfig.Config) error {
	routesStr := os.Getenv("LOGROUTE_ROUTES")
	if routesStr == "" {
		return nil
	}

	routes, err := ParseRoutesSpec(routesStr)
	if err != nil {
		return fmt.Errorf("LOGROUTE_ROUTES: %w", err)
	}

	cfg.Set("routes", []RouteConfig{})
	for i, r := range routes {
		cfg.Set(fmt.Sprintf("routes.%d.log_level", i), r.LogLevel)
		cfg.Set(fmt.Sprintf("routes.%d.sink_type", i), r.SinkType)
		cfg.Set(fmt.Sprintf("routes.%d.options", i), r.Options)
	}
	return nil
}

// ParseRoutesSpec parses the compact LEVEL:TYPE[:TARGET] route syntax.
// TARGET maps to the sink's primary option.
func ParseRoutesSpec(spec string) ([]RouteConfig, error) {
	var routes []RouteConfig
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		fields := strings.SplitN(part, ":", 3)
		if len(fields) < 2 || fields[0] == "" || fields[1] == "" {
			return nil, fmt.Errorf("route %q: expected LEVEL:TYPE[:TARGET]", part)
		}
		if _, err := core.ParseLevel(fields[0]); err != nil {
			return nil, fmt.Errorf("route %q: %w", part, err)
		}

		r := RouteConfig{
			LogLevel: strings.ToUpper(fields[0]),
			SinkType: strings.ToLower(fields[1]),
			Options:  map[string]any{},
		}
		if len(fields) == 3 && fields[2] != "" {
			key, ok := primaryOption[r.SinkType]
			if !ok {
				return nil, fmt.Errorf("route %q: sink type %s takes no target", part, r.SinkType)
			}
			r.Options[key] = fields[2]
		}
		routes = append(routes, r)
	}
	return routes, nil
}

var primaryOption = map[string]string{
	"file":      "file_location",
	"fileextra": "file_location",
	"rolling":   "directory",
	"http":      "url",
	"tcp":       "port",
}
