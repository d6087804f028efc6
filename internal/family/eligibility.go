package family

import "mutuelle/pkg/domain"

// CanAssignRelation decides whether assigning relation to a (possibly new)
// record would keep the owner's family within the cardinality caps: one
// spouse (husband or wife combined), one of each parent and step-parent, six
// children.
//
// The snapshot must already be scoped to one owner; this function does not
// filter by owner. excludeID, when non-nil, removes that record from the
// count so an edit re-validating its own current relation always keeps its
// slot.
//
// This is pure domain logic - no I/O, no side effects. The snapshot may be
// stale by the time the caller commits, so callers re-run this check inside
// the same transaction as the write.
func CanAssignRelation(existing []Member, relation domain.Relation, excludeID domain.FamilyMemberID) bool {
	class := relation.CardinalityClass()
	count := 0
	for _, m := range existing {
		if !excludeID.IsNil() && m.ID == excludeID {
			continue
		}
		if m.Relation.CardinalityClass() == class {
			count++
		}
	}
	return count < class.Cap()
}
