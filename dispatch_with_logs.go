package dispatch

import (
	"log/slog"

	"github.com/atlas-rt/dispatch/executor"
)

// AddLogs configures q and its underlying executor to log through handler,
// replacing whatever handler either was already using. Returns q as-is if
// handler is nil.
func AddLogs(q *Queue, handler slog.Handler) *Queue {
	if handler == nil {
		return q
	}

	q.logger = slog.New(handler)
	q.exec = executor.AddLogs(q.exec, handler)

	return q
}
