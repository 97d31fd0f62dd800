// FILE: logroute/src/internal/sink/file.go
package sink

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"logroute/src/internal/core"
	"logroute/src/internal/diag"
)

const fileBufferSize = 64 * 1024

// FileSink writes lines to a single file path.
// One mutex guards the stream across init, write, flush and close.
type FileSink struct {
	name     string
	location string
	append   bool
	buffered bool

	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	opened bool // reopen after close always appends

	started atomic.Bool
}

// NewFileSink creates a file sink. Append is on and buffering off by default.
func NewFileSink(location string) *FileSink {
	return &FileSink{
		name:     "file",
		location: strings.TrimSpace(location),
		append:   true,
	}
}

func (f *FileSink) Name() string        { return f.name }
func (f *FileSink) SetName(name string) { f.name = name }
func (f *FileSink) IsStarted() bool     { return f.started.Load() }

func (f *FileSink) Key() string {
	return "file:" + cleanLocation(f.location)
}

// Location returns the configured path.
func (f *FileSink) Location() string { return f.location }

// SetLocation trims and stores the path. Only valid before Init.
func (f *FileSink) SetLocation(location string) { f.location = strings.TrimSpace(location) }

// SetAppend selects append or truncate on first open.
func (f *FileSink) SetAppend(on bool) { f.append = on }

// SetBuffered enables a write buffer flushed on Flush and Close.
func (f *FileSink) SetBuffered(on bool) { f.buffered = on }

func (f *FileSink) Init() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started.Load() {
		return nil
	}

	if f.location == "" {
		err := core.WithSinkIO(fmt.Errorf("file_location is empty"), f.name, "init")
		diag.Error("file_sink", "Cannot open file", "sink", f.name, "error", err)
		return err
	}

	if dir := filepath.Dir(f.location); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			err = core.WithSinkIO(err, f.name, "init")
			diag.Error("file_sink", "Failed to create parent directories",
				"sink", f.name,
				"path", f.location,
				"error", err)
			return err
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if f.append || f.opened {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(f.location, flags, 0o644)
	if err != nil {
		err = core.WithSinkIO(err, f.name, "init")
		diag.Error("file_sink", "Failed to open file",
			"sink", f.name,
			"path", f.location,
			"error", err)
		return err
	}

	f.file = file
	if f.buffered {
		f.writer = bufio.NewWriterSize(file, fileBufferSize)
	}
	f.opened = true
	f.started.Store(true)
	return nil
}

func (f *FileSink) Write(ev *core.Event) {
	f.writeLine(lineOf(ev))
}

func (f *FileSink) writeLine(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		diag.Error("file_sink", "Write on closed or unopened stream",
			"sink", f.name,
			"path", f.location)
		return
	}

	var err error
	if f.writer != nil {
		_, err = f.writer.WriteString(line + "\n")
	} else {
		_, err = f.file.WriteString(line + "\n")
	}
	if err != nil {
		diag.Error("file_sink", "Failed to write event",
			"sink", f.name,
			"path", f.location,
			"error", core.WithSinkIO(err, f.name, "write"))
	}
}

func (f *FileSink) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writer == nil || f.file == nil {
		return nil
	}
	if err := f.writer.Flush(); err != nil {
		err = core.WithSinkIO(err, f.name, "flush")
		diag.Error("file_sink", "Failed to flush", "sink", f.name, "error", err)
		return err
	}
	return nil
}

func (f *FileSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.started.Store(false)
	if f.file == nil {
		return nil
	}

	var errs []error
	if f.writer != nil {
		if err := f.writer.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := f.file.Close(); err != nil {
		errs = append(errs, err)
	}
	f.file = nil
	f.writer = nil

	if len(errs) > 0 {
		err := core.WithSinkIO(errs[0], f.name, "close")
		diag.Error("file_sink", "Failed to close file",
			"sink", f.name,
			"path", f.location,
			"error", err)
		return err
	}
	return nil
}

func cleanLocation(location string) string {
	if location == "" {
		return ""
	}
	return filepath.Clean(location)
}
