package benefit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mutuelle/pkg/domain"
	dErrors "mutuelle/pkg/domain-errors"
	"mutuelle/pkg/requestcontext"
)

func actorWithRole(role domain.Role) requestcontext.ActorInfo {
	return requestcontext.ActorInfo{
		ID:   domain.NewMemberID(),
		Name: "Test Actor",
		Role: role,
	}
}

func pendingRequest() *Request {
	return &Request{
		ID:          domain.NewRequestID(),
		MemberID:    domain.NewMemberID(),
		MemberName:  "Awa Diallo",
		Type:        domain.BenefitBirthAllowance,
		Status:      domain.StatusPending,
		SubmittedAt: time.Now().UTC(),
	}
}

func TestApplyTransition_LegalMoves(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("controller accepts a pending request", func(t *testing.T) {
		req := pendingRequest()
		controller := actorWithRole(domain.RoleController)

		require.NoError(t, ApplyTransition(req, ActionAccept, controller, "", now))
		assert.Equal(t, domain.StatusAccepted, req.Status)
		assert.Equal(t, controller.ID, req.ControllerID)
		assert.Equal(t, controller.Name, req.ControllerName)
		require.NotNil(t, req.ProcessedAt)
		assert.Equal(t, now, *req.ProcessedAt)
	})

	t.Run("controller rejects a pending request with a comment", func(t *testing.T) {
		req := pendingRequest()

		require.NoError(t, ApplyTransition(req, ActionReject, actorWithRole(domain.RoleController), "missing birth certificate", now))
		assert.Equal(t, domain.StatusRejected, req.Status)
		assert.Equal(t, "missing birth certificate", req.Comment)
	})

	t.Run("administrator validates an accepted request", func(t *testing.T) {
		req := pendingRequest()
		require.NoError(t, ApplyTransition(req, ActionAccept, actorWithRole(domain.RoleController), "", now))

		admin := actorWithRole(domain.RoleAdministrator)
		require.NoError(t, ApplyTransition(req, ActionValidate, admin, "", now.Add(time.Hour)))
		assert.Equal(t, domain.StatusValidated, req.Status)
		assert.Equal(t, admin.ID, req.AdministratorID)
		require.NotNil(t, req.ValidatedAt)
	})

	t.Run("administrator rejects an accepted request", func(t *testing.T) {
		req := pendingRequest()
		require.NoError(t, ApplyTransition(req, ActionAccept, actorWithRole(domain.RoleController), "", now))

		require.NoError(t, ApplyTransition(req, ActionReject, actorWithRole(domain.RoleAdministrator), "amount exceeds remaining budget", now))
		assert.Equal(t, domain.StatusRejected, req.Status)
		require.NotNil(t, req.ValidatedAt)
	})
}

func TestApplyTransition_IllegalMoves(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name   string
		status domain.RequestStatus
		action Action
		role   domain.Role
	}{
		{name: "member cannot accept", status: domain.StatusPending, action: ActionAccept, role: domain.RoleMember},
		{name: "administrator cannot accept", status: domain.StatusPending, action: ActionAccept, role: domain.RoleAdministrator},
		{name: "controller cannot validate", status: domain.StatusAccepted, action: ActionValidate, role: domain.RoleController},
		{name: "validate from pending", status: domain.StatusPending, action: ActionValidate, role: domain.RoleAdministrator},
		{name: "accept an accepted request twice", status: domain.StatusAccepted, action: ActionAccept, role: domain.RoleController},
		{name: "validate a validated request", status: domain.StatusValidated, action: ActionValidate, role: domain.RoleAdministrator},
		{name: "no way out of rejected", status: domain.StatusRejected, action: ActionAccept, role: domain.RoleController},
		{name: "administrator cannot reject from pending", status: domain.StatusPending, action: ActionReject, role: domain.RoleAdministrator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := pendingRequest()
			req.Status = tt.status

			err := ApplyTransition(req, tt.action, actorWithRole(tt.role), "a comment", now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeIllegalTransition))
			assert.Equal(t, tt.status, req.Status)
		})
	}
}

func TestApplyTransition_CommentRequired(t *testing.T) {
	now := time.Now().UTC()

	for _, comment := range []string{"", "   ", "\t\n"} {
		req := pendingRequest()
		err := ApplyTransition(req, ActionReject, actorWithRole(domain.RoleController), comment, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeCommentRequired))
		assert.Equal(t, domain.StatusPending, req.Status)
		assert.Empty(t, req.Comment)
		assert.Nil(t, req.ProcessedAt)
	}
}
