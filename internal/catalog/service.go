package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mutuelle/internal/audit"
	"mutuelle/pkg/domain"
	dErrors "mutuelle/pkg/domain-errors"
	"mutuelle/pkg/platform/sentinel"
	"mutuelle/pkg/requestcontext"
)

// AuditRecorder is the narrow audit sink the catalog needs.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Catalog answers amount questions for the benefit engine and lets
// administrators edit the table at runtime.
type Catalog struct {
	store    Store
	logger   *slog.Logger
	recorder AuditRecorder
}

type Option func(*Catalog)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(c *Catalog) {
		c.recorder = recorder
	}
}

func New(store Store, opts ...Option) *Catalog {
	c := &Catalog{store: store}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Seed installs defaults for any benefit type not yet configured. Existing
// rows are left alone so runtime edits survive restarts.
func (c *Catalog) Seed(ctx context.Context, defaults []Service) error {
	for _, svc := range defaults {
		_, err := c.store.Get(ctx, svc.Type)
		if err == nil {
			continue
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return fmt.Errorf("seed catalog: %w", err)
		}
		svc.UpdatedAt = requestcontext.Now(ctx)
		if err := c.store.Upsert(ctx, svc); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}
	return nil
}

// FixedAmount returns the configured amount for an allowance type.
func (c *Catalog) FixedAmount(ctx context.Context, benefitType domain.BenefitType) (int64, error) {
	svc, err := c.get(ctx, benefitType)
	if err != nil {
		return 0, err
	}
	return svc.FixedAmount, nil
}

// Ceiling returns the configured upper bound for a loan type.
func (c *Catalog) Ceiling(ctx context.Context, benefitType domain.BenefitType) (int64, error) {
	svc, err := c.get(ctx, benefitType)
	if err != nil {
		return 0, err
	}
	return svc.Ceiling, nil
}

// List returns the full catalog.
func (c *Catalog) List(ctx context.Context) ([]Service, error) {
	services, err := c.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list catalog")
	}
	return services, nil
}

// Update rewrites one catalog row. Administrators only.
func (c *Catalog) Update(ctx context.Context, service Service) (*Service, error) {
	actor := requestcontext.Actor(ctx)
	if actor.Role != domain.RoleAdministrator {
		return nil, dErrors.New(dErrors.CodeForbidden, "only administrators may edit the catalog")
	}
	if !service.Type.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid benefit type")
	}
	if service.Type.IsLoan() && service.Ceiling <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "loan ceiling must be positive")
	}
	if service.Type.IsAllowance() && service.FixedAmount <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "allowance amount must be positive")
	}

	service.UpdatedAt = requestcontext.Now(ctx)
	if err := c.store.Upsert(ctx, service); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update catalog")
	}

	if c.logger != nil {
		c.logger.InfoContext(ctx, "catalog updated",
			"request_id", requestcontext.RequestID(ctx),
			"benefit_type", service.Type,
			"actor_id", actor.ID,
		)
	}
	if c.recorder != nil {
		entry := audit.Entry{
			ActorID:   actor.ID,
			ActorName: actor.Name,
			Action:    audit.ActionCatalogUpdated,
			Details:   fmt.Sprintf("type=%s fixed_amount=%d ceiling=%d enabled=%t", service.Type, service.FixedAmount, service.Ceiling, service.Enabled),
			Severity:  audit.SeveritySuccess,
			Module:    audit.ModuleCatalog,
		}
		if err := c.recorder.Record(ctx, entry); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit catalog update")
		}
	}
	return &service, nil
}

func (c *Catalog) get(ctx context.Context, benefitType domain.BenefitType) (*Service, error) {
	svc, err := c.store.Get(ctx, benefitType)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "benefit type not configured")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load catalog")
	}
	if !svc.Enabled {
		return nil, dErrors.New(dErrors.CodeValidation, "benefit type is disabled")
	}
	return svc, nil
}
