package benefit

import (
	"context"

	"mutuelle/pkg/domain"
	dErrors "mutuelle/pkg/domain-errors"
)

// AmountCatalog supplies the configured amounts the policy applies. Fixed
// allowances read FixedAmount; loans read Ceiling.
type AmountCatalog interface {
	FixedAmount(ctx context.Context, benefitType domain.BenefitType) (int64, error)
	Ceiling(ctx context.Context, benefitType domain.BenefitType) (int64, error)
}

// ResolveAmount determines the amount a request of the given type carries.
//
// Allowance types pay the catalog's fixed amount; a caller-proposed amount is
// ignored, never an error. Loan types require a proposed amount within
// (0, ceiling].
//
// Errors: CodeMissingAmount when a loan is submitted without an amount,
// CodeAmountOutOfRange when the proposal falls outside the loan's bounds.
func ResolveAmount(ctx context.Context, catalog AmountCatalog, benefitType domain.BenefitType, proposed *int64) (int64, error) {
	if !benefitType.IsValid() {
		return 0, dErrors.New(dErrors.CodeValidation, "invalid benefit type")
	}

	if benefitType.IsAllowance() {
		amount, err := catalog.FixedAmount(ctx, benefitType)
		if err != nil {
			return 0, err
		}
		return amount, nil
	}

	if proposed == nil {
		return 0, dErrors.New(dErrors.CodeMissingAmount, "a loan request requires an amount")
	}
	ceiling, err := catalog.Ceiling(ctx, benefitType)
	if err != nil {
		return 0, err
	}
	if *proposed <= 0 || *proposed > ceiling {
		return 0, dErrors.New(dErrors.CodeAmountOutOfRange, "loan amount must be positive and within the ceiling")
	}
	return *proposed, nil
}
