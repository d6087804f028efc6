package audit

import "context"

// Store persists audit entries. Append must be durable before the mutating
// operation that produced the entry is considered complete; implementations
// joining a SQL transaction via pkg/platform/tx get this for free.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByModule(ctx context.Context, module Module, limit int) ([]Entry, error)
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}
