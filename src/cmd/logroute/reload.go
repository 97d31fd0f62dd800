// FILE: logroute/src/cmd/logroute/reload.go
package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"logroute/src/internal/config"
	"logroute/src/internal/source"
	routelog "logroute/src/logger"

	lconfig "github.com/lixenwraith/config"
	"github.com/lixenwraith/log"
)

// ReloadManager owns the installed router and applies configuration changes
type ReloadManager struct {
	configPath string
	cliArgs    []string
	cfg        *config.Config
	lcfg       *lconfig.Config
	logger     *log.Logger
	src        source.Source
	mu         sync.RWMutex
	reloading  atomic.Bool
	shutdownCh chan struct{}
	shutdownMu sync.Once
	wg         sync.WaitGroup

	reporterMu     sync.Mutex
	reporterCancel context.CancelFunc
}

func NewReloadManager(configPath string, cliArgs []string, initialCfg *config.Config, logger *log.Logger) *ReloadManager {
	return &ReloadManager{
		configPath: configPath,
		cliArgs:    cliArgs,
		cfg:        initialCfg,
		logger:     logger,
		shutdownCh: make(chan struct{}),
	}
}

// SetSource attaches the input source reported by the status reporter.
func (rm *ReloadManager) SetSource(src source.Source) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.src = src
}

// Start installs the initial router and, when enabled, watches the config file.
func (rm *ReloadManager) Start(ctx context.Context) error {
	r, err := buildRouter(rm.cfg)
	if err != nil {
		return fmt.Errorf("failed to build initial router: %w", err)
	}
	if err := routelog.Init(r); err != nil {
		return fmt.Errorf("failed to install router: %w", err)
	}

	if !rm.cfg.DisableStatusReporter {
		rm.startStatusReporter(ctx)
	}

	if !rm.cfg.ConfigAutoReload {
		return nil
	}

	lcfg, err := lconfig.NewBuilder().
		WithFile(rm.configPath).
		WithTarget(rm.cfg).
		WithFileFormat("toml").
		WithSecurityOptions(lconfig.SecurityOptions{
			PreventPathTraversal: true,
			MaxFileSize:          10 * 1024 * 1024,
		}).
		Build()
	if err != nil {
		rm.logger.Warn("msg", "Configuration hot reload disabled",
			"config_file", rm.configPath,
			"error", err)
		return nil
	}

	rm.lcfg = lcfg

	watchOpts := lconfig.WatchOptions{
		PollInterval:      time.Second,
		Debounce:          500 * time.Millisecond,
		ReloadTimeout:     30 * time.Second,
		VerifyPermissions: true,
	}
	lcfg.AutoUpdateWithOptions(watchOpts)

	rm.wg.Add(1)
	go rm.watchLoop(ctx)

	rm.logger.Info("msg", "Configuration hot reload enabled",
		"config_file", rm.configPath)

	return nil
}

// Watcher notifications that are not config paths. None of them reloads.
var watchEvents = map[string]string{
	"file_deleted":        "Configuration file deleted",
	"permissions_changed": "Configuration file permissions changed, reload blocked",
	"reload_timeout":      "Configuration reload timed out",
}

func (rm *ReloadManager) watchLoop(ctx context.Context) {
	defer rm.wg.Done()

	changes := rm.lcfg.Watch()
	for {
		var path string
		select {
		case <-ctx.Done():
			return
		case <-rm.shutdownCh:
			return
		case path = <-changes:
		}

		if msg, ok := watchEvents[path]; ok {
			rm.logger.Error("msg", msg,
				"component", "reload",
				"action", "keeping current routes")
			continue
		}
		if reason, ok := strings.CutPrefix(path, "reload_error:"); ok {
			rm.logger.Error("msg", "Configuration reload error",
				"component", "reload",
				"error", reason,
				"action", "keeping current routes")
			continue
		}
		if shouldReload(path) {
			rm.triggerReload(ctx)
		}
	}
}

// shouldReload reports whether a changed config path affects routing
func shouldReload(path string) bool {
	for _, prefix := range []string{"routes", "defaults"} {
		if path == prefix || strings.HasPrefix(path, prefix+".") {
			return true
		}
	}

	// Logging changes need a restart
	if strings.HasPrefix(path, "logging.") {
		return false
	}

	return path == "disable_status_reporter" || path == "status_interval_seconds"
}

// triggerReload runs one reload at a time. Overlapping requests are dropped.
func (rm *ReloadManager) triggerReload(ctx context.Context) {
	if !rm.reloading.CompareAndSwap(false, true) {
		rm.logger.Debug("msg", "Reload already in progress, skipping",
			"component", "reload")
		return
	}
	defer rm.reloading.Store(false)

	start := time.Now()
	if err := rm.performReload(ctx); err != nil {
		rm.logger.Error("msg", "Reload failed",
			"component", "reload",
			"error", err,
			"action", "keeping current routes")
		return
	}

	rm.logger.Info("msg", "Routes reloaded",
		"component", "reload",
		"duration", time.Since(start))
}

// performReload applies route changes to the live router. A change of
// defaults needs a new router, which replaces and closes the old one.
func (rm *ReloadManager) performReload(ctx context.Context) error {
	newCfg, err := config.LoadWithCLI(rm.cliArgs)
	if err != nil {
		return fmt.Errorf("failed to load updated config: %w", err)
	}

	rm.mu.RLock()
	oldCfg := rm.cfg
	rm.mu.RUnlock()

	current := routelog.Current()
	if current == nil || defaultsChanged(oldCfg, newCfg) {
		rm.logger.Debug("msg", "Defaults changed, building new router")
		r, err := buildRouter(newCfg)
		if err != nil {
			return fmt.Errorf("failed to build new router (old router still active): %w", err)
		}
		if err := routelog.Init(r); err != nil {
			rm.logger.Warn("msg", "Error closing previous router", "error", err)
		}
	} else if _, err := applyRoutes(current, newCfg); err != nil {
		return err
	}

	rm.mu.Lock()
	rm.cfg = newCfg
	rm.mu.Unlock()

	rm.restartStatusReporter(ctx)
	return nil
}

func defaultsChanged(a, b *config.Config) bool {
	return a.Defaults.TsFormat != b.Defaults.TsFormat || a.DefaultLevel() != b.DefaultLevel()
}

func (rm *ReloadManager) startStatusReporter(ctx context.Context) {
	rm.reporterMu.Lock()
	defer rm.reporterMu.Unlock()

	reporterCtx, cancel := context.WithCancel(ctx)
	rm.reporterCancel = cancel

	go statusReporter(reporterCtx, rm.statusInterval(), rm.currentSource)
	rm.logger.Debug("msg", "Started status reporter")
}

func (rm *ReloadManager) restartStatusReporter(ctx context.Context) {
	rm.mu.RLock()
	disabled := rm.cfg.DisableStatusReporter
	rm.mu.RUnlock()

	rm.stopStatusReporter()
	if !disabled {
		rm.startStatusReporter(ctx)
	}
}

func (rm *ReloadManager) stopStatusReporter() {
	rm.reporterMu.Lock()
	defer rm.reporterMu.Unlock()

	if rm.reporterCancel != nil {
		rm.reporterCancel()
		rm.reporterCancel = nil
		rm.logger.Debug("msg", "Stopped status reporter")
	}
}

func (rm *ReloadManager) statusInterval() time.Duration {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	if rm.cfg.StatusIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(rm.cfg.StatusIntervalSeconds) * time.Second
}

func (rm *ReloadManager) currentSource() source.Source {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.src
}

// Shutdown stops watching and closes every sink
func (rm *ReloadManager) Shutdown() error {
	var err error
	rm.shutdownMu.Do(func() {
		rm.logger.Info("msg", "Shutting down reload manager")

		rm.stopStatusReporter()

		close(rm.shutdownCh)
		rm.wg.Wait()

		if rm.lcfg != nil {
			rm.lcfg.StopAutoUpdate()
		}

		rm.logger.Info("msg", "Closing router")
		err = routelog.Close()
	})
	return err
}
