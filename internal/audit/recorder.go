package audit

import (
	"context"
	"fmt"
	"log/slog"

	"mutuelle/pkg/domain"
	"mutuelle/pkg/requestcontext"
)

// Recorder emits audit entries with fail-closed semantics: the caller blocks
// until the append succeeds, and if it fails the calling operation MUST fail.
// No state change is observable without a corresponding entry.
type Recorder struct {
	store  Store
	logger *slog.Logger
	mirror chan<- Entry
}

// Option configures the Recorder.
type Option func(*Recorder)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithMirror also pushes every recorded entry onto a channel for secondary
// sinks. The push is best-effort: a full mirror never blocks or fails the
// primary append. It fires when the append returns, which inside a SQL
// transaction precedes commit; mirror consumers must treat entries as
// tentative until they appear in the store.
func WithMirror(mirror chan<- Entry) Option {
	return func(r *Recorder) {
		r.mirror = mirror
	}
}

func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record validates, timestamps, and durably appends one entry.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	if entry.ActorID.IsNil() {
		return fmt.Errorf("audit entry requires an actor")
	}
	if entry.Action == "" {
		return fmt.Errorf("audit entry requires an action")
	}
	if entry.Severity == "" {
		entry.Severity = SeverityInfo
	}
	if entry.ID.IsNil() {
		entry.ID = domain.NewEntryID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = requestcontext.Now(ctx)
	}

	if err := r.store.Append(ctx, entry); err != nil {
		if r.logger != nil {
			r.logger.ErrorContext(ctx, "audit append failed",
				"action", entry.Action,
				"module", entry.Module,
				"actor_id", entry.ActorID,
				"error", err,
			)
		}
		return fmt.Errorf("audit append failed: %w", err)
	}

	if r.mirror != nil {
		select {
		case r.mirror <- entry:
		default:
		}
	}
	return nil
}
