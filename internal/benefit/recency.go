package benefit

import (
	"time"

	"mutuelle/pkg/domain"
)

// IsEventClaimable reports whether a claimed life event is still inside the
// claim window at submission time. Loan types carry no event date and are
// always claimable. Allowance types require an event date no older than one
// calendar year: a date exactly one year before now is already out.
//
// The window uses calendar-year arithmetic, so February 29 and month-length
// rollovers follow time.AddDate semantics rather than a fixed 365 days.
func IsEventClaimable(benefitType domain.BenefitType, eventDate *time.Time, now time.Time) bool {
	if benefitType.IsLoan() {
		return true
	}
	if eventDate == nil || eventDate.IsZero() {
		return false
	}
	if eventDate.After(now) {
		return false
	}
	cutoff := now.AddDate(-1, 0, 0)
	return eventDate.After(cutoff)
}
