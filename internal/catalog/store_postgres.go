package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"mutuelle/pkg/domain"
	"mutuelle/pkg/platform/sentinel"
)

// PostgresStore persists the catalog in the benefit_services table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, benefitType domain.BenefitType) (*Service, error) {
	query := `
		SELECT benefit_type, label, fixed_amount, ceiling, enabled, updated_at
		FROM benefit_services
		WHERE benefit_type = $1
	`
	svc, err := scanService(s.db.QueryRowContext(ctx, query, benefitType.String()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get catalog service: %w", err)
	}
	return svc, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Service, error) {
	query := `
		SELECT benefit_type, label, fixed_amount, ceiling, enabled, updated_at
		FROM benefit_services
		ORDER BY benefit_type
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list catalog services: %w", err)
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog service: %w", err)
		}
		services = append(services, *svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog services: %w", err)
	}
	return services, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, service Service) error {
	query := `
		INSERT INTO benefit_services (benefit_type, label, fixed_amount, ceiling, enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (benefit_type) DO UPDATE SET
			label = EXCLUDED.label,
			fixed_amount = EXCLUDED.fixed_amount,
			ceiling = EXCLUDED.ceiling,
			enabled = EXCLUDED.enabled,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		service.Type.String(),
		service.Label,
		service.FixedAmount,
		service.Ceiling,
		service.Enabled,
		service.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert catalog service: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanService(row rowScanner) (*Service, error) {
	var (
		svc         Service
		benefitType string
	)
	if err := row.Scan(&benefitType, &svc.Label, &svc.FixedAmount, &svc.Ceiling, &svc.Enabled, &svc.UpdatedAt); err != nil {
		return nil, err
	}
	svc.Type = domain.BenefitType(benefitType)
	return &svc, nil
}
