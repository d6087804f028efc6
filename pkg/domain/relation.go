package domain

import dErrors "mutuelle/pkg/domain-errors"

// Relation describes how a family member relates to the owning member. The set
// is closed: eligibility caps are defined per cardinality class, so an unknown
// relation must never slip past parsing.
type Relation string

const (
	RelationSpouseHusband Relation = "spouse_husband"
	RelationSpouseWife    Relation = "spouse_wife"
	RelationChild         Relation = "child"
	RelationFather        Relation = "father"
	RelationMother        Relation = "mother"
	RelationStepFather    Relation = "step_father"
	RelationStepMother    Relation = "step_mother"
)

var validRelations = map[Relation]bool{
	RelationSpouseHusband: true,
	RelationSpouseWife:    true,
	RelationChild:         true,
	RelationFather:        true,
	RelationMother:        true,
	RelationStepFather:    true,
	RelationStepMother:    true,
}

// ParseRelation constructs a Relation from external input.
//
// Errors: returns CodeValidation when the value is empty or unsupported.
func ParseRelation(s string) (Relation, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "relation cannot be empty")
	}
	r := Relation(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid relation")
	}
	return r, nil
}

// IsValid checks if the relation is one of the supported enum values.
func (r Relation) IsValid() bool {
	return validRelations[r]
}

func (r Relation) String() string {
	return string(r)
}

// CardinalityClass groups relations that share one occupancy cap.
type CardinalityClass string

const (
	// ClassSpouse covers both spouse relations, capped at one combined.
	ClassSpouse CardinalityClass = "spouse"
	// ClassChild is capped at six records per owner.
	ClassChild CardinalityClass = "child"
	// Each parent relation is its own singleton class, capped at one.
	ClassFather     CardinalityClass = "father"
	ClassMother     CardinalityClass = "mother"
	ClassStepFather CardinalityClass = "step_father"
	ClassStepMother CardinalityClass = "step_mother"
)

// CardinalityClass returns the occupancy class for the relation. The switch is
// exhaustive over valid relations; unknown values map to their own class so a
// bad cast never borrows another relation's slot.
func (r Relation) CardinalityClass() CardinalityClass {
	switch r {
	case RelationSpouseHusband, RelationSpouseWife:
		return ClassSpouse
	case RelationChild:
		return ClassChild
	case RelationFather:
		return ClassFather
	case RelationMother:
		return ClassMother
	case RelationStepFather:
		return ClassStepFather
	case RelationStepMother:
		return ClassStepMother
	}
	return CardinalityClass(r)
}

// Cap returns the maximum number of records allowed in the class.
func (c CardinalityClass) Cap() int {
	if c == ClassChild {
		return 6
	}
	return 1
}
