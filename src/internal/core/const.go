// FILE: logroute/src/internal/core/const.go
package core

import "time"

// Routing defaults
const (
	DefaultTimestampFormat = "dd-MM-yyyy-HH-mm-ss"
	DefaultLevel           = LevelInfo
	DefaultSinkName        = "console"
)

// Async engine defaults
const (
	DefaultQueueSize    = 256
	DefaultWorkers      = 1
	MultiThreadWorkers  = 2
	DefaultMaxFlushTime = 1000 * time.Millisecond
)

// Route property keys
const (
	PropLogLevel    = "log_level"
	PropTsFormat    = "ts_format"
	PropSinkType    = "sink_type"
	PropSinkClass   = "sink_class"
	PropThreadModel = "thread_model"
	PropWriteMode   = "write_mode"
	PropQueueSize   = "queue_size"
	PropMaxFlushMS  = "max_flush_ms"
)
