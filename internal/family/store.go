package family

import (
	"context"

	"mutuelle/pkg/domain"
)

// Store persists family member records.
type Store interface {
	Get(ctx context.Context, id domain.FamilyMemberID) (*Member, error)
	ListByOwner(ctx context.Context, ownerID domain.MemberID) ([]Member, error)
	Insert(ctx context.Context, member *Member) error
	Update(ctx context.Context, member *Member) error
}

// TxRunner serializes mutations per owner so the eligibility re-check and the
// write commit as one unit. The in-memory runner uses sharded locks; the
// Postgres runner wraps a database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, ownerID domain.MemberID, fn func(ctx context.Context, store Store) error) error
}
