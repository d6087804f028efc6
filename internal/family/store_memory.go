package family

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"mutuelle/pkg/domain"
	"mutuelle/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	members map[domain.FamilyMemberID]Member
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{members: make(map[domain.FamilyMemberID]Member)}
}

func (s *InMemoryStore) Get(_ context.Context, id domain.FamilyMemberID) (*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &m, nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID domain.MemberID) ([]Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Member
	for _, m := range s.members {
		if m.OwnerID == ownerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Insert(_ context.Context, member *Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.members[member.ID]; exists {
		return sentinel.ErrConflict
	}
	s.members[member.ID] = *member
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, member *Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.members[member.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.members[member.ID] = *member
	return nil
}

const numFamilyShards = 64

// ShardedTx serializes family mutations per owner using sharded mutexes, so
// two concurrent inserts for the same owner cannot both pass the eligibility
// check against the same stale snapshot. Writes made inside fn are staged and
// applied only if fn succeeds, matching the rollback semantics of the SQL
// runner.
type ShardedTx struct {
	shards [numFamilyShards]sync.Mutex
	store  Store
}

func NewShardedTx(store Store) *ShardedTx {
	return &ShardedTx{store: store}
}

func (t *ShardedTx) RunInTx(ctx context.Context, ownerID domain.MemberID, fn func(ctx context.Context, store Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	shard := shardFor(ownerID.String())
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	staged := newStagedStore(t.store)
	if err := fn(ctx, staged); err != nil {
		return err
	}
	return staged.flush(ctx)
}

// stagedStore overlays pending writes on the backing store. Reads see the
// overlay so fn observes its own writes.
type stagedStore struct {
	base    Store
	pending map[domain.FamilyMemberID]Member
}

func newStagedStore(base Store) *stagedStore {
	return &stagedStore{base: base, pending: make(map[domain.FamilyMemberID]Member)}
}

func (s *stagedStore) Get(ctx context.Context, id domain.FamilyMemberID) (*Member, error) {
	if m, ok := s.pending[id]; ok {
		return &m, nil
	}
	return s.base.Get(ctx, id)
}

func (s *stagedStore) ListByOwner(ctx context.Context, ownerID domain.MemberID) ([]Member, error) {
	members, err := s.base.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range members {
		if m, ok := s.pending[members[i].ID]; ok {
			members[i] = m
		}
	}
	for _, m := range s.pending {
		if m.OwnerID != ownerID {
			continue
		}
		if _, err := s.base.Get(ctx, m.ID); errors.Is(err, sentinel.ErrNotFound) {
			members = append(members, m)
		}
	}
	return members, nil
}

func (s *stagedStore) Insert(ctx context.Context, member *Member) error {
	if _, ok := s.pending[member.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, err := s.base.Get(ctx, member.ID); err == nil {
		return sentinel.ErrConflict
	}
	s.pending[member.ID] = *member
	return nil
}

func (s *stagedStore) Update(ctx context.Context, member *Member) error {
	if _, ok := s.pending[member.ID]; ok {
		s.pending[member.ID] = *member
		return nil
	}
	if _, err := s.base.Get(ctx, member.ID); err != nil {
		return err
	}
	s.pending[member.ID] = *member
	return nil
}

func (s *stagedStore) flush(ctx context.Context) error {
	for id, m := range s.pending {
		member := m
		if _, err := s.base.Get(ctx, id); errors.Is(err, sentinel.ErrNotFound) {
			if err := s.base.Insert(ctx, &member); err != nil {
				return err
			}
			continue
		}
		if err := s.base.Update(ctx, &member); err != nil {
			return err
		}
	}
	return nil
}

func shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % numFamilyShards)
}
