package family

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mutuelle/internal/audit"
	"mutuelle/internal/family/metrics"
	"mutuelle/pkg/domain"
	dErrors "mutuelle/pkg/domain-errors"
	"mutuelle/pkg/platform/sentinel"
	"mutuelle/pkg/requestcontext"
)

// AuditRecorder is the narrow audit sink the family service needs.
type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Service registers and edits family members under the eligibility caps.
type Service struct {
	store    Store
	tx       TxRunner
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

func NewService(store Store, tx TxRunner, opts ...Option) *Service {
	s := &Service{store: store, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddInput carries the caller-supplied fields for a new family member.
type AddInput struct {
	OwnerID               domain.MemberID
	FirstName             string
	LastName              string
	NationalID            string
	BirthCertificateRef   string
	BirthDate             time.Time
	Relation              domain.Relation
	JustificationDocument string
}

// Add registers a family member for an owner. Members register against their
// own record; administrators may register on any member's behalf.
//
// The eligibility check runs inside the transaction against a fresh snapshot
// so a concurrent writer cannot slip a second spouse past a stale read.
func (s *Service) Add(ctx context.Context, input AddInput) (*Member, error) {
	actor := requestcontext.Actor(ctx)
	if actor.Role != domain.RoleAdministrator && actor.ID != input.OwnerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "members may only register their own family")
	}
	if !input.Relation.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid relation")
	}

	member := &Member{
		ID:                    domain.NewFamilyMemberID(),
		OwnerID:               input.OwnerID,
		FirstName:             input.FirstName,
		LastName:              input.LastName,
		NationalID:            input.NationalID,
		BirthCertificateRef:   input.BirthCertificateRef,
		BirthDate:             input.BirthDate,
		Relation:              input.Relation,
		CreatedAt:             requestcontext.Now(ctx),
		JustificationDocument: input.JustificationDocument,
	}

	err := s.tx.RunInTx(ctx, input.OwnerID, func(ctx context.Context, store Store) error {
		existing, err := store.ListByOwner(ctx, input.OwnerID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load family snapshot")
		}
		if !CanAssignRelation(existing, input.Relation, domain.FamilyMemberID{}) {
			return dErrors.New(dErrors.CodeCardinalityExceeded, cardinalityMessage(input.Relation))
		}
		if err := store.Insert(ctx, member); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.New(dErrors.CodeCardinalityExceeded, cardinalityMessage(input.Relation))
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to insert family member")
		}
		return s.record(ctx, actor, audit.ActionFamilyMemberAdded, audit.SeveritySuccess,
			fmt.Sprintf("owner=%s relation=%s member=%s", input.OwnerID, input.Relation, member.ID))
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeCardinalityExceeded) {
			s.metrics.IncRefused(input.Relation.String())
			s.auditRefusal(ctx, actor, audit.ActionFamilyMemberRefused,
				fmt.Sprintf("owner=%s relation=%s cap reached", input.OwnerID, input.Relation))
		}
		return nil, err
	}

	s.metrics.IncRegistered(input.Relation.String())
	if s.logger != nil {
		s.logger.InfoContext(ctx, "family member registered",
			"request_id", requestcontext.RequestID(ctx),
			"owner_id", input.OwnerID,
			"relation", input.Relation,
		)
	}
	return member, nil
}

// UpdateInput carries editable fields; zero-value fields keep their current
// value except Relation, which is always re-validated.
type UpdateInput struct {
	ID                    domain.FamilyMemberID
	FirstName             string
	LastName              string
	NationalID            string
	BirthCertificateRef   string
	BirthDate             time.Time
	Relation              domain.Relation
	JustificationDocument string
}

// Update edits an existing record. Administrators only; a record re-validated
// against its own current relation always keeps its slot.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*Member, error) {
	actor := requestcontext.Actor(ctx)
	if actor.Role != domain.RoleAdministrator {
		return nil, dErrors.New(dErrors.CodeForbidden, "only administrators may edit family members")
	}
	if !input.Relation.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "invalid relation")
	}

	current, err := s.store.Get(ctx, input.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "family member not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load family member")
	}

	updated := *current
	updated.FirstName = input.FirstName
	updated.LastName = input.LastName
	updated.NationalID = input.NationalID
	updated.BirthCertificateRef = input.BirthCertificateRef
	updated.BirthDate = input.BirthDate
	updated.Relation = input.Relation
	updated.JustificationDocument = input.JustificationDocument

	err = s.tx.RunInTx(ctx, current.OwnerID, func(ctx context.Context, store Store) error {
		existing, err := store.ListByOwner(ctx, current.OwnerID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load family snapshot")
		}
		if !CanAssignRelation(existing, input.Relation, input.ID) {
			return dErrors.New(dErrors.CodeCardinalityExceeded, cardinalityMessage(input.Relation))
		}
		if err := store.Update(ctx, &updated); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "family member not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update family member")
		}
		return s.record(ctx, actor, audit.ActionFamilyMemberUpdated, audit.SeveritySuccess,
			fmt.Sprintf("owner=%s relation=%s member=%s", current.OwnerID, input.Relation, input.ID))
	})
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeCardinalityExceeded) {
			s.metrics.IncRefused(input.Relation.String())
			s.auditRefusal(ctx, actor, audit.ActionFamilyMemberRefused,
				fmt.Sprintf("owner=%s relation=%s cap reached on edit", current.OwnerID, input.Relation))
		}
		return nil, err
	}
	return &updated, nil
}

// ListByOwner returns the owner's family. Members may list only their own;
// controllers and administrators may list anyone's.
func (s *Service) ListByOwner(ctx context.Context, ownerID domain.MemberID) ([]Member, error) {
	actor := requestcontext.Actor(ctx)
	if actor.Role == domain.RoleMember && actor.ID != ownerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "members may only list their own family")
	}
	members, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list family members")
	}
	return members, nil
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
		Module:    audit.ModuleFamily,
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit family change")
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
		Module:    audit.ModuleFamily,
	})
}

func cardinalityMessage(relation domain.Relation) string {
	switch relation.CardinalityClass() {
	case domain.ClassSpouse:
		return "a spouse is already registered"
	case domain.ClassChild:
		return "the maximum of six children is already registered"
	}
	return fmt.Sprintf("a %s is already registered", relation)
}
