package catalog

import (
	"context"
	"encoding/json"
	"time"

	platformredis "mutuelle/internal/platform/redis"
	"mutuelle/pkg/domain"
)

// CachedStore is a read-through Redis cache in front of a catalog store.
// Amount resolution hits the catalog on every submission, so the fixed-amount
// table is cached with a short TTL; updates invalidate eagerly. Cache failures
// degrade to the backing store, never to an error.
type CachedStore struct {
	inner Store
	redis *platformredis.Client
	ttl   time.Duration
}

func NewCachedStore(inner Store, redis *platformredis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, redis: redis, ttl: ttl}
}

func cacheKey(benefitType domain.BenefitType) string {
	return "catalog:" + benefitType.String()
}

func (c *CachedStore) Get(ctx context.Context, benefitType domain.BenefitType) (*Service, error) {
	if cached, err := c.redis.Get(ctx, cacheKey(benefitType)).Result(); err == nil {
		var svc Service
		if err := json.Unmarshal([]byte(cached), &svc); err == nil {
			return &svc, nil
		}
	}

	svc, err := c.inner.Get(ctx, benefitType)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(svc); err == nil {
		_ = c.redis.Set(ctx, cacheKey(benefitType), payload, c.ttl).Err()
	}
	return svc, nil
}

func (c *CachedStore) List(ctx context.Context) ([]Service, error) {
	return c.inner.List(ctx)
}

func (c *CachedStore) Upsert(ctx context.Context, service Service) error {
	if err := c.inner.Upsert(ctx, service); err != nil {
		return err
	}
	_ = c.redis.Del(ctx, cacheKey(service.Type)).Err()
	return nil
}
