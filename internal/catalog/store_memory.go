package catalog

import (
	"context"
	"sort"
	"sync"

	"mutuelle/pkg/domain"
	"mutuelle/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	services map[domain.BenefitType]Service
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{services: make(map[domain.BenefitType]Service)}
}

func (s *InMemoryStore) Get(_ context.Context, benefitType domain.BenefitType) (*Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[benefitType]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &svc, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Service, 0, len(s.services))
	for _, svc := range s.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

func (s *InMemoryStore) Upsert(_ context.Context, service Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[service.Type] = service
	return nil
}
