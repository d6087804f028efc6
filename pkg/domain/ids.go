package domain

import (
	"github.com/google/uuid"

	dErrors "mutuelle/pkg/domain-errors"
)

// Typed IDs prevent cross-entity assignment at compile time. Construct via the
// New*/Parse* helpers; direct casting bypasses validation.

type MemberID uuid.UUID

func NewMemberID() MemberID { return MemberID(uuid.New()) }

func (id MemberID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id MemberID) String() string { return uuid.UUID(id).String() }

// ParseMemberID constructs a MemberID from external input.
func ParseMemberID(s string) (MemberID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return MemberID{}, dErrors.New(dErrors.CodeValidation, "invalid member id")
	}
	return MemberID(u), nil
}

type FamilyMemberID uuid.UUID

func NewFamilyMemberID() FamilyMemberID { return FamilyMemberID(uuid.New()) }

func (id FamilyMemberID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id FamilyMemberID) String() string { return uuid.UUID(id).String() }

func ParseFamilyMemberID(s string) (FamilyMemberID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return FamilyMemberID{}, dErrors.New(dErrors.CodeValidation, "invalid family member id")
	}
	return FamilyMemberID(u), nil
}

type RequestID uuid.UUID

func NewRequestID() RequestID { return RequestID(uuid.New()) }

func (id RequestID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id RequestID) String() string { return uuid.UUID(id).String() }

func ParseRequestID(s string) (RequestID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return RequestID{}, dErrors.New(dErrors.CodeValidation, "invalid request id")
	}
	return RequestID(u), nil
}

// EntryID identifies one audit entry.
type EntryID uuid.UUID

func NewEntryID() EntryID { return EntryID(uuid.New()) }

func (id EntryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id EntryID) String() string { return uuid.UUID(id).String() }
