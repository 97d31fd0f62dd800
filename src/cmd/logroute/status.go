// FILE: logroute/src/cmd/logroute/status.go
package main

import (
	"context"
	"time"

	"logroute/src/internal/sink"
	"logroute/src/internal/source"
	routelog "logroute/src/logger"
)

// Periodically logs router and input status
func statusReporter(ctx context.Context, interval time.Duration, src func() source.Source) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Error("msg", "Panic in status reporter",
							"component", "status_reporter",
							"panic", r)
					}
				}()
				reportStatus(src())
			}()
		}
	}
}

func reportStatus(src source.Source) {
	r := routelog.Current()
	if r == nil {
		logger.Warn("msg", "Status reporter: no router installed",
			"component", "status_reporter")
		return
	}

	stats := routelog.Stats()
	active := r.ListActive()
	statusFields := []any{
		"msg", "Status report",
		"component", "status_reporter",
		"routes", len(r.Routes()),
		"active_sinks", len(active),
		"submitted", stats.Submitted,
		"rejected", stats.Rejected,
		"init_failures", stats.InitFailures,
	}
	if src != nil {
		srcStats := src.GetStats()
		statusFields = append(statusFields,
			"input_entries", srcStats.TotalEntries,
			"input_skipped", srcStats.SkippedLines)
	}
	logger.Debug(statusFields...)

	for _, s := range active {
		logSinkStatus(s)
	}
}

// Logs the status of one active sink
func logSinkStatus(s sink.Sink) {
	fields := []any{
		"msg", "Sink status",
		"component", "status_reporter",
		"sink", s.Name(),
		"key", s.Key(),
		"started", s.IsStarted(),
	}

	switch v := s.(type) {
	case *sink.AsyncSink:
		fields = append(fields,
			"workers", v.Workers(),
			"queue_size", v.QueueSize(),
			"pending", v.Pending())
		if tcp, ok := v.Wrapped().(*sink.TCPSink); ok {
			fields = append(fields, "tcp_connections", tcp.ActiveConnections())
		}
	case *sink.TCPSink:
		fields = append(fields, "tcp_connections", v.ActiveConnections())
	}

	logger.Debug(fields...)
}
