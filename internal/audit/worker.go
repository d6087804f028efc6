package audit

import (
	"context"
	"log/slog"
)

// Worker drains mirrored entries and writes them to the process log, so
// operators can tail decisions without querying the store. It is a secondary
// sink: the durable append has already happened by the time an entry arrives,
// but when that append rides a SQL transaction the commit may still be
// pending, so a rolled-back operation can surface here without a matching
// row in the store. The store is the record; this log is a tail.
type Worker struct {
	logger *slog.Logger
	inbox  <-chan Entry
}

func NewWorker(logger *slog.Logger, inbox <-chan Entry) *Worker {
	return &Worker{logger: logger, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case entry := <-w.inbox:
			w.logger.InfoContext(ctx, entry.Action,
				"log_type", "audit",
				"module", entry.Module,
				"actor_id", entry.ActorID,
				"actor_name", entry.ActorName,
				"severity", entry.Severity,
				"details", entry.Details,
			)
		}
	}
}
