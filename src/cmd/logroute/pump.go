// FILE: logroute/src/cmd/logroute/pump.go
package main

import (
	"context"
	"errors"

	"logroute/src/internal/core"
	routelog "logroute/src/logger"
)

// pumpMessages submits messages from ch until it closes or ctx ends and
// returns how many were dispatched.
func pumpMessages(ctx context.Context, ch <-chan core.Message) uint64 {
	var dispatched uint64
	for {
		select {
		case <-ctx.Done():
			return dispatched
		case msg, ok := <-ch:
			if !ok {
				return dispatched
			}
			err := routelog.Submit(ctx, msg)
			switch {
			case err == nil:
				dispatched++
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				// Written, but shutdown started while the queue was full
				dispatched++
				return dispatched
			default:
				logger.Warn("msg", "Message rejected",
					"component", "pump",
					"level", msg.Level.String(),
					"error", err)
			}
		}
	}
}
