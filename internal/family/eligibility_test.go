package family

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mutuelle/pkg/domain"
)

func membersWith(relations ...domain.Relation) []Member {
	members := make([]Member, 0, len(relations))
	for _, rel := range relations {
		members = append(members, Member{
			ID:       domain.NewFamilyMemberID(),
			Relation: rel,
		})
	}
	return members
}

func TestCanAssignRelation(t *testing.T) {
	tests := []struct {
		name     string
		existing []Member
		relation domain.Relation
		want     bool
	}{
		{
			name:     "first spouse allowed",
			existing: nil,
			relation: domain.RelationSpouseWife,
			want:     true,
		},
		{
			name:     "second spouse refused",
			existing: membersWith(domain.RelationSpouseHusband),
			relation: domain.RelationSpouseWife,
			want:     false,
		},
		{
			name:     "spouse cap is combined across husband and wife",
			existing: membersWith(domain.RelationSpouseWife),
			relation: domain.RelationSpouseWife,
			want:     false,
		},
		{
			name:     "second father refused",
			existing: membersWith(domain.RelationFather),
			relation: domain.RelationFather,
			want:     false,
		},
		{
			name:     "father does not block step-father",
			existing: membersWith(domain.RelationFather),
			relation: domain.RelationStepFather,
			want:     true,
		},
		{
			name:     "mother and step-mother are separate slots",
			existing: membersWith(domain.RelationMother, domain.RelationStepMother),
			relation: domain.RelationMother,
			want:     false,
		},
		{
			name:     "sixth child allowed",
			existing: membersWith(domain.RelationChild, domain.RelationChild, domain.RelationChild, domain.RelationChild, domain.RelationChild),
			relation: domain.RelationChild,
			want:     true,
		},
		{
			name:     "seventh child refused",
			existing: membersWith(domain.RelationChild, domain.RelationChild, domain.RelationChild, domain.RelationChild, domain.RelationChild, domain.RelationChild),
			relation: domain.RelationChild,
			want:     false,
		},
		{
			name:     "children do not block a spouse",
			existing: membersWith(domain.RelationChild, domain.RelationChild),
			relation: domain.RelationSpouseHusband,
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanAssignRelation(tt.existing, tt.relation, domain.FamilyMemberID{})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanAssignRelation_ExcludeSelf(t *testing.T) {
	existing := membersWith(domain.RelationSpouseWife)

	t.Run("re-validating own relation keeps the slot", func(t *testing.T) {
		assert.True(t, CanAssignRelation(existing, domain.RelationSpouseWife, existing[0].ID))
	})

	t.Run("excluding an unrelated id changes nothing", func(t *testing.T) {
		assert.False(t, CanAssignRelation(existing, domain.RelationSpouseHusband, domain.NewFamilyMemberID()))
	})

	t.Run("exclude frees the slot for a different record", func(t *testing.T) {
		full := membersWith(
			domain.RelationChild, domain.RelationChild, domain.RelationChild,
			domain.RelationChild, domain.RelationChild, domain.RelationChild,
		)
		assert.True(t, CanAssignRelation(full, domain.RelationChild, full[2].ID))
	})
}
