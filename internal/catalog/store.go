package catalog

import (
	"context"

	"mutuelle/pkg/domain"
)

// Store persists the service catalog.
type Store interface {
	Get(ctx context.Context, benefitType domain.BenefitType) (*Service, error)
	List(ctx context.Context) ([]Service, error)
	Upsert(ctx context.Context, service Service) error
}
