package benefit

import (
	"context"

	"mutuelle/pkg/domain"
)

// Store is the persistence surface for benefit requests. Implementations
// return sentinel errors for infrastructure facts; services translate them.
type Store interface {
	Get(ctx context.Context, id domain.RequestID) (*Request, error)
	Insert(ctx context.Context, req *Request) error
	Update(ctx context.Context, req *Request) error
	ListByMember(ctx context.Context, memberID domain.MemberID) ([]Request, error)
	ListAll(ctx context.Context) ([]Request, error)
}

// TxRunner serializes mutations of one request. The store handed to fn reads
// and writes inside the transaction, so a status re-read observes any
// concurrently committed transition.
type TxRunner interface {
	RunInTx(ctx context.Context, id domain.RequestID, fn func(ctx context.Context, store Store) error) error
}
