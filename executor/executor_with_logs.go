package executor

import (
	"context"
	"log/slog"
	"os"

	"github.com/atlas-rt/dispatch/log"
	"github.com/atlas-rt/dispatch/workitem"
)

type withLogs struct {
	e      Executor
	logger *slog.Logger
}

// Enqueue links item into the executor's queue and logs the outcome.
func (e withLogs) Enqueue(ctx context.Context, item *workitem.Item) (workitem.JobID, error) {
	id, err := e.e.Enqueue(ctx, item)
	if err != nil {
		e.logger.WarnContext(ctx, "enqueue failed",
			slog.String("id", e.e.ID()),
			slog.String("error", err.Error()),
		)

		return id, err
	}

	e.logger.InfoContext(ctx, "enqueued work item",
		slog.String("id", e.e.ID()),
		slog.Uint64("job_id", uint64(id)),
		slog.Bool("realtime", item.Realtime),
	)

	return id, nil
}

// Close enqueues the shutdown item and waits for every worker to return.
func (e withLogs) Close() error {
	e.logger.Info("closing executor", slog.String("id", e.e.ID()))

	err := e.e.Close()
	if err != nil {
		e.logger.Warn("executor close raised an error", slog.String("id", e.e.ID()), slog.String("error", err.Error()))
	}

	return err
}

// ID returns this Executor's label.
func (e withLogs) ID() string {
	return e.e.ID()
}

// AddLogs decorates the input Executor with logging, using the input
// slog.Handler.
//
// If the input Executor is nil or a no-op Executor, a no-op Executor is
// returned. If the input slog.Handler is nil or a no-op handler, a default
// handler is configured (a text handler printing to standard-error).
//
// If the input Executor is already a logged Executor, this logged Executor
// is returned with the new handler as its logger's handler.
func AddLogs(e Executor, handler slog.Handler) Executor {
	if e == nil || e == NoOp() {
		return NoOp()
	}

	if handler == nil || handler == log.NoOp() {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}

	if logs, ok := e.(withLogs); ok {
		logs.logger = slog.New(handler)

		return logs
	}

	return withLogs{
		e:      e,
		logger: slog.New(handler),
	}
}
