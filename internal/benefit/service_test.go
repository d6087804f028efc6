package benefit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mutuelle/internal/audit"
	"mutuelle/pkg/domain"
	dErrors "mutuelle/pkg/domain-errors"
	"mutuelle/pkg/requestcontext"
)

// BenefitServiceSuite exercises the full lifecycle against real in-memory
// stores and a real fail-closed recorder, no mocks.
type BenefitServiceSuite struct {
	suite.Suite
	store      *InMemoryStore
	auditStore *audit.InMemoryStore
	service    *Service

	member        requestcontext.ActorInfo
	controller    requestcontext.ActorInfo
	administrator requestcontext.ActorInfo
}

func TestBenefitServiceSuite(t *testing.T) {
	suite.Run(t, new(BenefitServiceSuite))
}

func (s *BenefitServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.auditStore = audit.NewInMemoryStore()
	recorder := audit.NewRecorder(s.auditStore)

	s.service = NewService(s.store, NewShardedTx(s.store), newStubCatalog(),
		WithAuditRecorder(recorder),
	)

	s.member = requestcontext.ActorInfo{ID: domain.NewMemberID(), Name: "Awa Diallo", Role: domain.RoleMember}
	s.controller = requestcontext.ActorInfo{ID: domain.NewMemberID(), Name: "Moussa Traoré", Role: domain.RoleController}
	s.administrator = requestcontext.ActorInfo{ID: domain.NewMemberID(), Name: "Fatou Kone", Role: domain.RoleAdministrator}
}

func (s *BenefitServiceSuite) ctxFor(actor requestcontext.ActorInfo) context.Context {
	return requestcontext.WithActor(context.Background(), actor)
}

func (s *BenefitServiceSuite) submitInput() SubmitInput {
	eventDate := time.Now().UTC().AddDate(0, -1, 0)
	return SubmitInput{
		Type: domain.BenefitBirthAllowance,
		Beneficiary: Beneficiary{
			ID:       domain.NewFamilyMemberID().String(),
			Name:     "Aminata Diallo",
			Relation: domain.RelationChild,
		},
		EventDate: &eventDate,
		Payment: PaymentInstructions{
			Method:   PaymentMobileMoney,
			Operator: "orange",
			Phone:    "+22370000000",
		},
	}
}

func (s *BenefitServiceSuite) TestSubmit() {
	s.Run("allowance submission resolves fixed amount", func() {
		req, err := s.service.Submit(s.ctxFor(s.member), s.submitInput())
		s.Require().NoError(err)
		s.Equal(domain.StatusPending, req.Status)
		s.Require().NotNil(req.Amount)
		s.Equal(int64(25000), *req.Amount)
		s.Equal(s.member.ID, req.MemberID)
		s.False(req.SubmittedAt.IsZero())
	})

	s.Run("submission writes one audit entry", func() {
		before, _ := s.auditStore.ListByModule(context.Background(), audit.ModuleBenefit, 100)
		_, err := s.service.Submit(s.ctxFor(s.member), s.submitInput())
		s.Require().NoError(err)
		after, _ := s.auditStore.ListByModule(context.Background(), audit.ModuleBenefit, 100)
		s.Len(after, len(before)+1)
		s.Equal(audit.ActionRequestSubmitted, after[0].Action)
	})

	s.Run("controller cannot submit", func() {
		_, err := s.service.Submit(s.ctxFor(s.controller), s.submitInput())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("stale event date fails", func() {
		input := s.submitInput()
		stale := time.Now().UTC().AddDate(-2, 0, 0)
		input.EventDate = &stale
		_, err := s.service.Submit(s.ctxFor(s.member), input)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeEventNotClaimable))
	})

	s.Run("loan without amount fails", func() {
		input := s.submitInput()
		input.Type = domain.BenefitSocialLoan
		input.EventDate = nil
		_, err := s.service.Submit(s.ctxFor(s.member), input)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeMissingAmount))
	})

	s.Run("invalid payment shape fails", func() {
		input := s.submitInput()
		input.Payment = PaymentInstructions{Method: PaymentBankTransfer, BankName: "BDM"}
		_, err := s.service.Submit(s.ctxFor(s.member), input)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *BenefitServiceSuite) TestFullLifecycle() {
	req, err := s.service.Submit(s.ctxFor(s.member), s.submitInput())
	s.Require().NoError(err)

	accepted, err := s.service.Accept(s.ctxFor(s.controller), req.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusAccepted, accepted.Status)
	s.Equal(s.controller.ID, accepted.ControllerID)
	s.Require().NotNil(accepted.ProcessedAt)

	validated, err := s.service.Validate(s.ctxFor(s.administrator), req.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusValidated, validated.Status)
	s.Equal(s.administrator.ID, validated.AdministratorID)
	s.Require().NotNil(validated.ValidatedAt)

	entries, err := s.auditStore.ListByModule(context.Background(), audit.ModuleBenefit, 100)
	s.Require().NoError(err)
	s.Len(entries, 3)

	stored, err := s.store.Get(context.Background(), req.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusValidated, stored.Status)
}

func (s *BenefitServiceSuite) TestReject() {
	s.Run("controller rejection requires a comment", func() {
		req, err := s.service.Submit(s.ctxFor(s.member), s.submitInput())
		s.Require().NoError(err)

		_, err = s.service.Reject(s.ctxFor(s.controller), req.ID, "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeCommentRequired))

		stored, err := s.store.Get(context.Background(), req.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusPending, stored.Status)
	})

	s.Run("administrator rejects an accepted request", func() {
		req, err := s.service.Submit(s.ctxFor(s.member), s.submitInput())
		s.Require().NoError(err)
		_, err = s.service.Accept(s.ctxFor(s.controller), req.ID)
		s.Require().NoError(err)

		rejected, err := s.service.Reject(s.ctxFor(s.administrator), req.ID, "justification document is illegible")
		s.Require().NoError(err)
		s.Equal(domain.StatusRejected, rejected.Status)
		s.Equal("justification document is illegible", rejected.Comment)
	})
}

func (s *BenefitServiceSuite) TestIllegalTransitions() {
	req, err := s.service.Submit(s.ctxFor(s.member), s.submitInput())
	s.Require().NoError(err)

	s.Run("double accept fails and leaves state intact", func() {
		_, err := s.service.Accept(s.ctxFor(s.controller), req.ID)
		s.Require().NoError(err)

		_, err = s.service.Accept(s.ctxFor(s.controller), req.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeIllegalTransition))

		stored, err := s.store.Get(context.Background(), req.ID)
		s.Require().NoError(err)
		s.Equal(domain.StatusAccepted, stored.Status)
	})

	s.Run("refusal is audited with warning severity", func() {
		entries, err := s.auditStore.ListByModule(context.Background(), audit.ModuleBenefit, 10)
		s.Require().NoError(err)
		s.Equal(audit.ActionRequestRefused, entries[0].Action)
		s.Equal(audit.SeverityWarning, entries[0].Severity)
	})

	s.Run("unknown request id", func() {
		_, err := s.service.Accept(s.ctxFor(s.controller), domain.NewRequestID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *BenefitServiceSuite) TestGetAndList() {
	req, err := s.service.Submit(s.ctxFor(s.member), s.submitInput())
	s.Require().NoError(err)

	s.Run("member reads own request", func() {
		got, err := s.service.Get(s.ctxFor(s.member), req.ID)
		s.Require().NoError(err)
		s.Equal(req.ID, got.ID)
	})

	s.Run("another member cannot read it", func() {
		other := requestcontext.ActorInfo{ID: domain.NewMemberID(), Name: "Ibrahim Sow", Role: domain.RoleMember}
		_, err := s.service.Get(s.ctxFor(other), req.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("member listing is scoped to own requests", func() {
		other := requestcontext.ActorInfo{ID: domain.NewMemberID(), Name: "Ibrahim Sow", Role: domain.RoleMember}
		_, err := s.service.Submit(s.ctxFor(other), s.submitInput())
		s.Require().NoError(err)

		mine, err := s.service.List(s.ctxFor(s.member))
		s.Require().NoError(err)
		for _, r := range mine {
			s.Equal(s.member.ID, r.MemberID)
		}

		all, err := s.service.List(s.ctxFor(s.controller))
		s.Require().NoError(err)
		s.Greater(len(all), len(mine))
	})
}

// failingAuditStore simulates an unavailable audit sink.
type failingAuditStore struct{}

func (failingAuditStore) Append(context.Context, audit.Entry) error {
	return errors.New("audit sink unavailable")
}

func (failingAuditStore) ListByModule(context.Context, audit.Module, int) ([]audit.Entry, error) {
	return nil, nil
}

func (failingAuditStore) ListRecent(context.Context, int) ([]audit.Entry, error) {
	return nil, nil
}

func (s *BenefitServiceSuite) TestAuditFailureRollsBackTransition() {
	req, err := s.service.Submit(s.ctxFor(s.member), s.submitInput())
	s.Require().NoError(err)

	broken := NewService(s.store, NewShardedTx(s.store), newStubCatalog(),
		WithAuditRecorder(audit.NewRecorder(failingAuditStore{})),
	)

	_, err = broken.Accept(s.ctxFor(s.controller), req.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	// The transition must not be observable without its audit entry.
	stored, err := s.store.Get(context.Background(), req.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, stored.Status)
}

func (s *BenefitServiceSuite) TestConcurrentAcceptsSingleWinner() {
	req, err := s.service.Submit(s.ctxFor(s.member), s.submitInput())
	s.Require().NoError(err)

	const writers = 8
	start := make(chan struct{})
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.service.Accept(s.ctxFor(s.controller), req.ID)
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var applied, refused int
	for err := range errs {
		if err == nil {
			applied++
			continue
		}
		s.True(dErrors.HasCode(err, dErrors.CodeIllegalTransition))
		refused++
	}
	s.Equal(1, applied)
	s.Equal(writers-1, refused)

	stored, err := s.store.Get(context.Background(), req.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusAccepted, stored.Status)
	s.Equal(s.controller.ID, stored.ControllerID)
}

func (s *BenefitServiceSuite) TestConcurrentAcceptAndRejectSingleWinner() {
	req, err := s.service.Submit(s.ctxFor(s.member), s.submitInput())
	s.Require().NoError(err)

	start := make(chan struct{})
	type outcome struct {
		status domain.RequestStatus
		err    error
	}
	results := make(chan outcome, 2)
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		_, err := s.service.Accept(s.ctxFor(s.controller), req.ID)
		results <- outcome{status: domain.StatusAccepted, err: err}
	}()
	go func() {
		defer wg.Done()
		<-start
		_, err := s.service.Reject(s.ctxFor(s.controller), req.ID, "missing justification")
		results <- outcome{status: domain.StatusRejected, err: err}
	}()
	close(start)
	wg.Wait()
	close(results)

	var winner domain.RequestStatus
	var refused int
	for res := range results {
		if res.err == nil {
			s.Empty(winner, "both transitions committed")
			winner = res.status
			continue
		}
		s.True(dErrors.HasCode(res.err, dErrors.CodeIllegalTransition))
		refused++
	}
	s.Equal(1, refused)

	stored, err := s.store.Get(context.Background(), req.ID)
	s.Require().NoError(err)
	s.Equal(winner, stored.Status)
}
