package benefit

import (
	"context"
	"errors"
	"hash/fnv"
	"sort"
	"sync"

	"mutuelle/pkg/domain"
	"mutuelle/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	requests map[domain.RequestID]Request
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{requests: make(map[domain.RequestID]Request)}
}

func (s *InMemoryStore) Get(_ context.Context, id domain.RequestID) (*Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

func (s *InMemoryStore) Insert(_ context.Context, req *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[req.ID]; exists {
		return sentinel.ErrConflict
	}
	s.requests[req.ID] = *req
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, req *Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[req.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.requests[req.ID] = *req
	return nil
}

func (s *InMemoryStore) ListByMember(_ context.Context, memberID domain.MemberID) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Request
	for _, r := range s.requests {
		if r.MemberID == memberID {
			out = append(out, r)
		}
	}
	sortBySubmission(out)
	return out, nil
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Request, 0, len(s.requests))
	for _, r := range s.requests {
		out = append(out, r)
	}
	sortBySubmission(out)
	return out, nil
}

func sortBySubmission(requests []Request) {
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].SubmittedAt.Before(requests[j].SubmittedAt)
	})
}

const numRequestShards = 64

// ShardedTx serializes transitions per request id with sharded mutexes, so a
// second writer re-reads the already-applied status instead of a stale one.
// Writes made inside fn are staged and applied only if fn succeeds, matching
// the rollback semantics of the SQL runner.
type ShardedTx struct {
	shards [numRequestShards]sync.Mutex
	store  Store
}

func NewShardedTx(store Store) *ShardedTx {
	return &ShardedTx{store: store}
}

func (t *ShardedTx) RunInTx(ctx context.Context, id domain.RequestID, fn func(ctx context.Context, store Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	shard := shardFor(id.String())
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
	pending map[domain.RequestID]Request
}

func newStagedStore(base Store) *stagedStore {
	return &stagedStore{base: base, pending: make(map[domain.RequestID]Request)}
}

func (s *stagedStore) Get(ctx context.Context, id domain.RequestID) (*Request, error) {
	if r, ok := s.pending[id]; ok {
		return &r, nil
	}
	return s.base.Get(ctx, id)
}

func (s *stagedStore) Insert(ctx context.Context, req *Request) error {
	if _, ok := s.pending[req.ID]; ok {
		return sentinel.ErrConflict
	}
	if _, err := s.base.Get(ctx, req.ID); err == nil {
		return sentinel.ErrConflict
	}
	s.pending[req.ID] = *req
	return nil
}

func (s *stagedStore) Update(ctx context.Context, req *Request) error {
	if _, ok := s.pending[req.ID]; ok {
		s.pending[req.ID] = *req
		return nil
	}
	if _, err := s.base.Get(ctx, req.ID); err != nil {
		return err
	}
	s.pending[req.ID] = *req
	return nil
}

func (s *stagedStore) ListByMember(ctx context.Context, memberID domain.MemberID) ([]Request, error) {
	return s.base.ListByMember(ctx, memberID)
}

func (s *stagedStore) ListAll(ctx context.Context) ([]Request, error) {
	return s.base.ListAll(ctx)
}

func (s *stagedStore) flush(ctx context.Context) error {
	for id, r := range s.pending {
		req := r
		if _, err := s.base.Get(ctx, id); errors.Is(err, sentinel.ErrNotFound) {
			if err := s.base.Insert(ctx, &req); err != nil {
				return err
			}
			continue
		}
		if err := s.base.Update(ctx, &req); err != nil {
			return err
		}
	}
	return nil
}

func shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % numRequestShards)
}
