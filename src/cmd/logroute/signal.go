// FILE: logroute/src/cmd/logroute/signal.go
package main

import (
	"context"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/lixenwraith/log"
)

var (
	reloadSignals = []os.Signal{syscall.SIGHUP, syscall.SIGUSR1}
	stopSignals   = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
)

// SignalHandler reloads routes on SIGHUP/SIGUSR1 and reports the first stop signal.
type SignalHandler struct {
	rm     *ReloadManager
	logger *log.Logger
	ch     chan os.Signal
}

func NewSignalHandler(rm *ReloadManager, logger *log.Logger) *SignalHandler {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, append(slices.Clone(stopSignals), reloadSignals...)...)
	return &SignalHandler{rm: rm, logger: logger, ch: ch}
}

// Handle blocks until a stop signal arrives or ctx ends. It returns nil when ctx ends.
func (sh *SignalHandler) Handle(ctx context.Context) os.Signal {
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-sh.ch:
			if !slices.Contains(reloadSignals, sig) {
				return sig
			}
			sh.logger.Info("msg", "Reloading routes",
				"component", "signal",
				"signal", sig.String())
			go sh.rm.triggerReload(ctx)
		}
	}
}

func (sh *SignalHandler) Stop() {
	signal.Stop(sh.ch)
}
