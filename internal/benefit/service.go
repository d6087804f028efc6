package benefit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mutuelle/internal/audit"
	"mutuelle/internal/benefit/metrics"
	"mutuelle/pkg/domain"
	dErrors "mutuelle/pkg/domain-errors"
	"mutuelle/pkg/platform/sentinel"
	"mutuelle/pkg/requestcontext"
)

// AuditRecorder is the narrow audit sink the benefit service needs.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Service owns the benefit-request lifecycle: submission through the amount
// and recency policies, then role-gated transitions to a final disposition.
type Service struct {
	store    Store
	tx       TxRunner
	catalog  AmountCatalog
	logger   *slog.Logger
	recorder AuditRecorder
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditRecorder(recorder AuditRecorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(store Store, tx TxRunner, catalog AmountCatalog, opts ...Option) *Service {
	s := &Service{store: store, tx: tx, catalog: catalog}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitInput carries the caller-supplied fields for a new request.
type SubmitInput struct {
	Type                  domain.BenefitType
	Beneficiary           Beneficiary
	ProposedAmount        *int64
	EventDate             *time.Time
	JustificationDocument string
	Payment               PaymentInstructions
}

// Submit creates a pending request for the acting member. The amount policy
// and the recency window both run here; a request that fails either is never
// stored.
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*Request, error) {
	actor := requestcontext.Actor(ctx)
	if actor.Role != domain.RoleMember {
		return nil, dErrors.New(dErrors.CodeForbidden, "only members may submit benefit requests")
	}
	if !input.Type.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid benefit type")
	}
	if err := input.Payment.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if !IsEventClaimable(input.Type, input.EventDate, now) {
		return nil, dErrors.New(dErrors.CodeEventNotClaimable,
			"the claimed event is in the future or older than one year")
	}

	amount, err := ResolveAmount(ctx, s.catalog, input.Type, input.ProposedAmount)
	if err != nil {
		return nil, err
	}

	req := &Request{
		ID:                    domain.NewRequestID(),
		MemberID:              actor.ID,
		MemberName:            actor.Name,
		Type:                  input.Type,
		Beneficiary:           input.Beneficiary,
		Amount:                &amount,
		EventDate:             input.EventDate,
		Status:                domain.StatusPending,
		SubmittedAt:           now,
		JustificationDocument: input.JustificationDocument,
		Payment:               input.Payment,
	}

	err = s.tx.RunInTx(ctx, req.ID, func(ctx context.Context, store Store) error {
		if err := store.Insert(ctx, req); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to insert benefit request")
		}
		return s.record(ctx, actor, audit.ActionRequestSubmitted, audit.SeverityInfo,
			fmt.Sprintf("request=%s type=%s amount=%d", req.ID, req.Type, amount))
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncSubmitted(input.Type.String())
	s.metrics.ObserveAmount(input.Type.String(), amount)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "benefit request submitted",
			"request_id", requestcontext.RequestID(ctx),
			"benefit_request_id", req.ID,
			"type", req.Type,
			"amount", amount,
		)
	}
	return req, nil
}

// Accept moves a pending request to accepted. Controllers only.
func (s *Service) Accept(ctx context.Context, id domain.RequestID) (*Request, error) {
	return s.transition(ctx, id, ActionAccept, "", audit.ActionRequestAccepted, audit.SeveritySuccess)
}

// Reject moves a pending or accepted request to rejected. A comment is
// mandatory; the refusal reason travels with the request.
func (s *Service) Reject(ctx context.Context, id domain.RequestID, comment string) (*Request, error) {
	return s.transition(ctx, id, ActionReject, comment, audit.ActionRequestRejected, audit.SeverityWarning)
}

// Validate moves an accepted request to validated. Administrators only.
func (s *Service) Validate(ctx context.Context, id domain.RequestID) (*Request, error) {
	return s.transition(ctx, id, ActionValidate, "", audit.ActionRequestValidated, audit.SeveritySuccess)
}

// transition re-reads the request inside the transaction before applying the
// move, so a concurrently committed transition surfaces as an illegal one
// rather than being silently overwritten. The audit append joins the same
// transaction; if it fails, the transition did not happen.
func (s *Service) transition(ctx context.Context, id domain.RequestID, action Action, comment, auditAction string, severity audit.Severity) (*Request, error) {
	actor := requestcontext.Actor(ctx)
	now := requestcontext.Now(ctx)

	var applied Request
	err := s.tx.RunInTx(ctx, id, func(ctx context.Context, store Store) error {
		current, err := store.Get(ctx, id)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "benefit request not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load benefit request")
		}
		if err := ApplyTransition(current, action, actor, comment, now); err != nil {
			return err
		}
		if err := store.Update(ctx, current); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store transition")
		}
		if err := s.record(ctx, actor, auditAction, severity,
			fmt.Sprintf("request=%s action=%s status=%s", id, action, current.Status)); err != nil {
			return err
		}
		applied = *current
		return nil
	})
	if err != nil {
		if code := dErrors.CodeOf(err); code == dErrors.CodeIllegalTransition || code == dErrors.CodeCommentRequired {
			s.metrics.IncRefused(string(action), string(code))
			s.auditRefusal(ctx, actor, audit.ActionRequestRefused,
				fmt.Sprintf("request=%s action=%s code=%s", id, action, code))
		}
		return nil, err
	}

	s.metrics.IncTransition(string(action), applied.Status.String())
	if s.logger != nil {
		s.logger.InfoContext(ctx, "benefit request transitioned",
			"request_id", requestcontext.RequestID(ctx),
			"benefit_request_id", id,
			"action", action,
			"status", applied.Status,
		)
	}
	return &applied, nil
}

// Get returns one request. Members may read only their own.
func (s *Service) Get(ctx context.Context, id domain.RequestID) (*Request, error) {
	actor := requestcontext.Actor(ctx)
	req, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "benefit request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load benefit request")
	}
	if actor.Role == domain.RoleMember && req.MemberID != actor.ID {
		return nil, dErrors.New(dErrors.CodeForbidden, "members may only read their own requests")
	}
	return req, nil
}

// List returns requests scoped by role: members see their own, controllers
// and administrators see everything.
func (s *Service) List(ctx context.Context) ([]Request, error) {
	actor := requestcontext.Actor(ctx)
	var (
		requests []Request
		err      error
	)
	if actor.Role == domain.RoleMember {
		requests, err = s.store.ListByMember(ctx, actor.ID)
	} else {
		requests, err = s.store.ListAll(ctx)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list benefit requests")
	}
	return requests, nil
}

func (s *Service) record(ctx context.Context, actor requestcontext.ActorInfo, action string, severity audit.Severity, details string) error {
	if s.recorder == nil {
		return nil
	}
	entry := audit.Entry{
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Action:    action,
		Details:   details,
		Severity:  severity,
		Module:    audit.ModuleBenefit,
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit benefit decision")
	}
	return nil
}

// auditRefusal is best-effort: the refusal itself already failed the caller.
func (s *Service) auditRefusal(ctx context.Context, actor requestcontext.ActorInfo, action, details string) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.Record(ctx, audit.Entry{
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Action:    action,
		Details:   details,
		Severity:  audit.SeverityWarning,
		Module:    audit.ModuleBenefit,
	})
}
