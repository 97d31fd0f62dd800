// FILE: logroute/src/cmd/logroute/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"logroute/src/cmd/logroute/commands"
	"logroute/src/internal/config"
	"logroute/src/internal/core"
	"logroute/src/internal/source"
	"logroute/src/internal/version"

	"github.com/lixenwraith/log"
)

var logger *log.Logger

func main() {
	router := commands.NewCommandRouter()
	handled, err := router.Route(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if handled {
		os.Exit(0)
	}

	flagCfg, err := ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	InitOutputHandler(flagCfg.Quiet)

	if flagCfg.ShowVersion {
		Print("%s\n", version.String())
		os.Exit(0)
	}

	if flagCfg.ConfigFile != "" {
		os.Setenv("LOGROUTE_CONFIG_FILE", flagCfg.ConfigFile)
	}

	cliArgs := flagCfg.Overrides()
	cfg, err := config.LoadWithCLI(cliArgs)
	if err != nil {
		if flagCfg.ConfigFile != "" && strings.Contains(err.Error(), "not found") {
			FatalError(2, "Config file not found: %s\n", flagCfg.ConfigFile)
		}
		FatalError(1, "Failed to load config: %v\n", err)
	}

	if err := initializeLogger(cfg, flagCfg.Quiet); err != nil {
		FatalError(1, "Failed to initialize logger: %v\n", err)
	}
	defer shutdownLogger()

	logger.Info("msg", "logroute starting",
		"version", version.String(),
		"config_file", config.GetConfigPath(),
		"log_output", cfg.Logging.Output,
		"routes", len(cfg.Routes))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rm := NewReloadManager(config.GetConfigPath(), cliArgs, cfg, logger)
	if err := rm.Start(ctx); err != nil {
		logger.Error("msg", "Failed to start", "error", err)
		shutdownLogger()
		os.Exit(1)
	}

	sh := NewSignalHandler(rm, logger)
	defer sh.Stop()

	defaultLevel, _ := core.ParseLevel(cfg.Defaults.Level)
	src := source.NewStdinSource(source.StdinOptions{
		Namespace: cfg.Defaults.Namespace,
		Level:     defaultLevel,
	}, logger)
	rm.SetSource(src)
	messages := src.Subscribe()
	if err := src.Start(); err != nil {
		logger.Error("msg", "Failed to start input", "error", err)
		os.Exit(1)
	}

	pumpDone := make(chan uint64, 1)
	go func() { pumpDone <- pumpMessages(ctx, messages) }()

	sigDone := make(chan os.Signal, 1)
	go func() { sigDone <- sh.Handle(ctx) }()

	select {
	case sig := <-sigDone:
		logger.Info("msg", "Shutdown signal received, starting graceful shutdown...",
			"signal", sig)
	case n := <-pumpDone:
		logger.Info("msg", "Input exhausted, shutting down", "dispatched", n)
	}

	src.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	done := make(chan error, 1)
	go func() { done <- rm.Shutdown() }()

	select {
	case err := <-done:
		if err != nil {
			logger.Warn("msg", "Sinks closed with errors", "error", err)
		}
		logger.Info("msg", "Shutdown complete")
	case <-shutdownCtx.Done():
		logger.Error("msg", "Shutdown timeout exceeded - forcing exit")
		shutdownLogger()
		os.Exit(1)
	}
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			Error("Logger shutdown error: %v\n", err)
		}
	}
}
