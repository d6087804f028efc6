package catalog

import (
	"time"

	"mutuelle/pkg/domain"
)

// Service is one configured benefit: the fixed amount paid for an allowance,
// or the ceiling bounding a loan. The amount policy reads this table; the
// policy itself (fixed types ignore proposals, loans bound them) lives in the
// benefit module.
type Service struct {
	Type        domain.BenefitType
	Label       string
	FixedAmount int64
	Ceiling     int64
	Enabled     bool
	UpdatedAt   time.Time
}
