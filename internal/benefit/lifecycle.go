package benefit

import (
	"strings"
	"time"

	"mutuelle/pkg/domain"
	dErrors "mutuelle/pkg/domain-errors"
	"mutuelle/pkg/requestcontext"
)

// Action is a lifecycle verb applied to an existing request.
type Action string

const (
	ActionAccept   Action = "accept"
	ActionReject   Action = "reject"
	ActionValidate Action = "validate"
)

// ParseAction constructs an Action from external input.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionAccept, ActionReject, ActionValidate:
		return Action(s), nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "invalid action")
}

type transitionKey struct {
	from   domain.RequestStatus
	action Action
	role   domain.Role
}

type transitionRule struct {
	to              domain.RequestStatus
	requiresComment bool
}

// transitions is the full legal move set. Anything not listed is an illegal
// transition, including repeats of an already-applied action.
var transitions = map[transitionKey]transitionRule{
	{domain.StatusPending, ActionAccept, domain.RoleController}:       {to: domain.StatusAccepted},
	{domain.StatusPending, ActionReject, domain.RoleController}:       {to: domain.StatusRejected, requiresComment: true},
	{domain.StatusAccepted, ActionValidate, domain.RoleAdministrator}: {to: domain.StatusValidated},
	{domain.StatusAccepted, ActionReject, domain.RoleAdministrator}:   {to: domain.StatusRejected, requiresComment: true},
}

// ApplyTransition moves a request along the lifecycle in place. The request
// is left untouched on any failure.
//
// Errors: CodeIllegalTransition when the current status, action, and actor
// role do not form a legal move; CodeCommentRequired when a rejection carries
// no comment.
func ApplyTransition(req *Request, action Action, actor requestcontext.ActorInfo, comment string, now time.Time) error {
	rule, ok := transitions[transitionKey{req.Status, action, actor.Role}]
	if !ok {
		return dErrors.New(dErrors.CodeIllegalTransition,
			"transition "+string(action)+" is not permitted from status "+req.Status.String()+" for role "+actor.Role.String())
	}
	if rule.requiresComment && strings.TrimSpace(comment) == "" {
		return dErrors.New(dErrors.CodeCommentRequired, "a rejection requires a comment")
	}

	switch actor.Role {
	case domain.RoleController:
		req.ControllerID = actor.ID
		req.ControllerName = actor.Name
		t := now
		req.ProcessedAt = &t
	case domain.RoleAdministrator:
		req.AdministratorID = actor.ID
		req.AdministratorName = actor.Name
		t := now
		req.ValidatedAt = &t
	}
	if rule.requiresComment {
		req.Comment = comment
	}
	req.Status = rule.to
	return nil
}
