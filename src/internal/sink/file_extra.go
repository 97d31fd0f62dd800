// FILE: logroute/src/internal/sink/file_extra.go
package sink

import "logroute/src/internal/core"

// FileExtraSink is a FileSink that appends a fixed suffix to every line.
type FileExtraSink struct {
	*FileSink
	extra string
}

// NewFileExtraSink creates a file sink that appends extra to every line.
func NewFileExtraSink(location, extra string) *FileExtraSink {
	fs := NewFileSink(location)
	fs.SetName("fileextra")
	return &FileExtraSink{FileSink: fs, extra: extra}
}

func (f *FileExtraSink) Key() string {
	return "fileextra:" + cleanLocation(f.location) + "|" + f.extra
}

// SetExtra sets the suffix appended after a single space.
func (f *FileExtraSink) SetExtra(extra string) { f.extra = extra }

// Extra returns the configured suffix.
func (f *FileExtraSink) Extra() string { return f.extra }

func (f *FileExtraSink) Write(ev *core.Event) {
	f.writeLine(lineOf(ev) + " " + f.extra)
}
