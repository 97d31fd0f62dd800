// FILE: logroute/src/internal/source/source.go
package source

import (
	"time"

	"logroute/src/internal/core"
)

// Source produces messages for dispatch
type Source interface {
	// Returns a channel that receives messages. It is closed when the
	// source is exhausted or stopped.
	Subscribe() <-chan core.Message

	// Begins reading from the source
	Start() error

	// Stops reading
	Stop()

	// Returns source statistics
	GetStats() SourceStats
}

// Contains statistics about a source
type SourceStats struct {
	Type          string
	TotalEntries  uint64
	SkippedLines  uint64
	StartTime     time.Time
	LastEntryTime time.Time
	Details       map[string]any
}
