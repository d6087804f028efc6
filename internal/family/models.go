package family

import (
	"time"

	"mutuelle/pkg/domain"
)

// Member is one registered family member of a portal member. Created by the
// owning member (or an administrator on their behalf); after creation only
// administrators may change it.
type Member struct {
	ID                    domain.FamilyMemberID
	OwnerID               domain.MemberID
	FirstName             string
	LastName              string
	NationalID            string
	BirthCertificateRef   string
	BirthDate             time.Time
	Relation              domain.Relation
	CreatedAt             time.Time
	JustificationDocument string
}
