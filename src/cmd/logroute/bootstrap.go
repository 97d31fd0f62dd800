// FILE: logroute/src/cmd/logroute/bootstrap.go
package main

import (
	"errors"
	"fmt"

	"logroute/src/internal/config"
	"logroute/src/internal/core"
	"logroute/src/internal/router"
	"logroute/src/internal/version"

	"github.com/lixenwraith/log"
)

// buildRouter creates a router from the defaults and routes in cfg.
func buildRouter(cfg *config.Config) (*router.Router, error) {
	r := router.New(
		router.WithDefaultTimestampFormat(cfg.Defaults.TsFormat),
		router.WithDefaultLevel(cfg.DefaultLevel()),
	)

	count, err := applyRoutes(r, cfg)
	if err != nil {
		return nil, errors.Join(err, r.Close())
	}

	logger.Info("msg", "Router configured",
		"version", version.Short(),
		"routes", count,
		"active_sinks", len(r.ListActive()),
		"default_level", r.DefaultLevel().String(),
		"ts_format", r.DefaultTimestampFormat())

	return r, nil
}

// applyRoutes configures every route on r, then unbinds levels that are no
// longer routed. Nothing is unbound when a route fails.
func applyRoutes(r *router.Router, cfg *config.Config) (int, error) {
	bound := make(map[core.Level]bool)
	var errs []error

	for i, route := range cfg.Routes {
		s, err := r.Configure(route.Properties())
		if err != nil {
			logger.Error("msg", "Failed to configure route",
				"component", "bootstrap",
				"route", i,
				"sink_type", route.SinkType,
				"error", err)
			errs = append(errs, fmt.Errorf("route %d: %w", i, err))
			continue
		}

		level, _ := route.Level(r.DefaultLevel())
		bound[level] = true
		logger.Info("msg", "Route configured",
			"component", "bootstrap",
			"level", level.String(),
			"sink", s.Name(),
			"key", s.Key())
	}

	if len(errs) > 0 {
		return len(bound), errors.Join(errs...)
	}

	for level := range r.Routes() {
		if !bound[level] {
			r.Unbind(level)
			logger.Info("msg", "Route removed",
				"component", "bootstrap",
				"level", level.String())
		}
	}

	return len(bound), nil
}

// initializeLogger creates the application logger from cfg.Logging
func initializeLogger(cfg *config.Config, quiet bool) error {
	lc, err := cfg.Logging.LoggerConfig(quiet)
	if err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}
	logger = log.NewLogger()
	if err := logger.ApplyConfig(lc); err != nil {
		return err
	}
	return logger.Start()
}
