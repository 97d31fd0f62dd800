// FILE: logroute/src/internal/sink/rolling.go
package sink

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"logroute/src/internal/core"
	"logroute/src/internal/diag"

	"github.com/lixenwraith/log"
)

// RollingSink writes lines through a size- and age-rotated log writer.
type RollingSink struct {
	name           string
	directory      string
	fileName       string
	maxSizeMB      int64
	maxTotalSizeMB int64
	retentionHours int64

	mu      sync.Mutex
	writer  *log.Logger
	started atomic.Bool
}

// NewRollingSink creates a sink writing to fileName under directory, rotated
// by size and age. Empty arguments select the defaults.
func NewRollingSink(directory, fileName string) *RollingSink {
	return &RollingSink{
		name:      "rolling",
		directory: directory,
		fileName:  fileName,
	}
}

func (r *RollingSink) Name() string        { return r.name }
func (r *RollingSink) SetName(name string) { r.name = name }
func (r *RollingSink) IsStarted() bool     { return r.started.Load() }

func (r *RollingSink) Key() string {
	return "rolling:" + filepath.Join(r.dirOrDefault(), r.nameOrDefault())
}

// Setters are only valid before Init. Sizes are in megabytes; zero keeps
// the writer default.
func (r *RollingSink) SetDirectory(dir string)     { r.directory = dir }
func (r *RollingSink) SetFileName(name string)     { r.fileName = name }
func (r *RollingSink) SetMaxSizeMB(mb int)         { r.maxSizeMB = int64(mb) }
func (r *RollingSink) SetMaxTotalSizeMB(mb int)    { r.maxTotalSizeMB = int64(mb) }
func (r *RollingSink) SetRetentionHours(hours int) { r.retentionHours = int64(hours) }

func (r *RollingSink) dirOrDefault() string {
	if r.directory == "" {
		return "./"
	}
	return r.directory
}

func (r *RollingSink) nameOrDefault() string {
	if r.fileName == "" {
		return "logroute.output"
	}
	return r.fileName
}

func (r *RollingSink) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started.Load() {
		return nil
	}

	writer := log.NewLogger()
	if err := writer.ApplyConfig(r.writerConfig()); err != nil {
		err = core.WithSinkIO(fmt.Errorf("failed to initialize file writer: %w", err), r.name, "init")
		diag.Error("rolling_sink", "Cannot configure writer", "sink", r.name, "error", err)
		return err
	}
	if err := writer.Start(); err != nil {
		err = core.WithSinkIO(fmt.Errorf("failed to start file writer: %w", err), r.name, "init")
		diag.Error("rolling_sink", "Cannot start writer", "sink", r.name, "error", err)
		return err
	}

	r.writer = writer
	r.started.Store(true)
	return nil
}

// writerConfig maps the sink settings onto the rotating writer. Unset limits
// keep the writer's defaults.
func (r *RollingSink) writerConfig() *log.Config {
	wc := log.DefaultConfig()
	wc.Directory = r.dirOrDefault()
	wc.Name = r.nameOrDefault()
	wc.EnableConsole = false // File only
	wc.ShowTimestamp = false // Lines are already formatted
	wc.ShowLevel = false

	if r.maxSizeMB > 0 {
		wc.MaxSizeKB = r.maxSizeMB * 1000
	}
	if r.maxTotalSizeMB > 0 {
		wc.MaxTotalSizeKB = r.maxTotalSizeMB * 1000
	}
	if r.retentionHours > 0 {
		wc.RetentionPeriodHrs = float64(r.retentionHours)
	}
	return wc
}

// Write is serialized with Close so no line reaches a writer being shut down.
func (r *RollingSink) Write(ev *core.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.writer == nil {
		diag.Error("rolling_sink", "Write on sink that is not started", "sink", r.name)
		return
	}
	r.writer.Message(lineOf(ev))
}

func (r *RollingSink) Flush() error {
	return nil
}

func (r *RollingSink) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	writer := r.writer
	r.writer = nil
	r.started.Store(false)
	if writer == nil {
		return nil
	}
	if err := writer.Shutdown(2 * time.Second); err != nil {
		err = core.WithSinkIO(err, r.name, "close")
		diag.Error("rolling_sink", "Error shutting down file writer", "sink", r.name, "error", err)
		return err
	}
	return nil
}
