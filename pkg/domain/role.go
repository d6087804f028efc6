package domain

import dErrors "mutuelle/pkg/domain-errors"

// Role is the actor role carried by a session token. Roles are immutable for
// the lifetime of a session; the identity provider owns assignment.
//
// Usage: construct via ParseRole at trust boundaries to enforce the allowlist;
// direct casting bypasses validation.
type Role string

const (
	RoleMember        Role = "member"
	RoleController    Role = "controller"
	RoleAdministrator Role = "administrator"
)

// validRoles is the single source of truth for supported roles.
var validRoles = map[Role]bool{
	RoleMember:        true,
	RoleController:    true,
	RoleAdministrator: true,
}

// ParseRole constructs a Role from external input.
//
// Errors: returns CodeValidation when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid role")
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return validRoles[r]
}

func (r Role) String() string {
	return string(r)
}
