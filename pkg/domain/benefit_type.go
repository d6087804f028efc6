package domain

import dErrors "mutuelle/pkg/domain-errors"

// BenefitType identifies what a request claims. Allowances pay a fixed amount
// tied to a life event; loans carry a member-chosen amount under a ceiling.
type BenefitType string

const (
	BenefitMarriageAllowance BenefitType = "marriage_allowance"
	BenefitBirthAllowance    BenefitType = "birth_allowance"
	BenefitDeathAllowance    BenefitType = "death_allowance"
	BenefitSocialLoan        BenefitType = "social_loan"
	BenefitEconomicLoan      BenefitType = "economic_loan"
)

var validBenefitTypes = map[BenefitType]bool{
	BenefitMarriageAllowance: true,
	BenefitBirthAllowance:    true,
	BenefitDeathAllowance:    true,
	BenefitSocialLoan:        true,
	BenefitEconomicLoan:      true,
}

// ParseBenefitType constructs a BenefitType from external input.
//
// Errors: returns CodeValidation when the value is empty or unsupported.
func ParseBenefitType(s string) (BenefitType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "benefit type cannot be empty")
	}
	t := BenefitType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid benefit type")
	}
	return t, nil
}

// IsValid checks if the benefit type is one of the supported enum values.
func (t BenefitType) IsValid() bool {
	return validBenefitTypes[t]
}

// IsLoan reports whether the type carries a member-chosen amount.
func (t BenefitType) IsLoan() bool {
	return t == BenefitSocialLoan || t == BenefitEconomicLoan
}

// IsAllowance reports whether the type is tied to a life event.
func (t BenefitType) IsAllowance() bool {
	return t.IsValid() && !t.IsLoan()
}

func (t BenefitType) String() string {
	return string(t)
}
