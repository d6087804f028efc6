package benefit

import (
	"strings"
	"time"

	"mutuelle/pkg/domain"
	dErrors "mutuelle/pkg/domain-errors"
)

// PaymentMethod selects how a paid-out benefit reaches the member.
type PaymentMethod string

const (
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentMobileMoney  PaymentMethod = "mobile_money"
	PaymentCashPickup   PaymentMethod = "cash_pickup"
)

// ParsePaymentMethod constructs a PaymentMethod from external input.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentBankTransfer, PaymentMobileMoney, PaymentCashPickup:
		return PaymentMethod(s), nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "invalid payment method")
}

func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentInstructions tells the treasurer where the money goes. Exactly the
// fields of the selected method's shape are populated; the rest stay empty.
type PaymentInstructions struct {
	Method PaymentMethod `json:"method"`

	// bank_transfer
	BankName string `json:"bank_name,omitempty"`
	IBAN     string `json:"iban,omitempty"`

	// mobile_money
	Operator string `json:"operator,omitempty"`
	Phone    string `json:"phone,omitempty"`

	// cash_pickup
	Office string `json:"office,omitempty"`
}

// Validate checks that the instructions carry the selected shape's fields and
// none of the other shapes'.
func (p PaymentInstructions) Validate() error {
	switch p.Method {
	case PaymentBankTransfer:
		if strings.TrimSpace(p.BankName) == "" || strings.TrimSpace(p.IBAN) == "" {
			return dErrors.New(dErrors.CodeValidation, "bank transfer requires bank_name and iban")
		}
		if p.Operator != "" || p.Phone != "" || p.Office != "" {
			return dErrors.New(dErrors.CodeValidation, "bank transfer accepts only bank_name and iban")
		}
	case PaymentMobileMoney:
		if strings.TrimSpace(p.Operator) == "" || strings.TrimSpace(p.Phone) == "" {
			return dErrors.New(dErrors.CodeValidation, "mobile money requires operator and phone")
		}
		if p.BankName != "" || p.IBAN != "" || p.Office != "" {
			return dErrors.New(dErrors.CodeValidation, "mobile money accepts only operator and phone")
		}
	case PaymentCashPickup:
		if strings.TrimSpace(p.Office) == "" {
			return dErrors.New(dErrors.CodeValidation, "cash pickup requires office")
		}
		if p.BankName != "" || p.IBAN != "" || p.Operator != "" || p.Phone != "" {
			return dErrors.New(dErrors.CodeValidation, "cash pickup accepts only office")
		}
	default:
		return dErrors.New(dErrors.CodeValidation, "invalid payment method")
	}
	return nil
}

// Beneficiary identifies who the claimed benefit is for. The member may claim
// for themselves or for a registered family member.
type Beneficiary struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Relation domain.Relation `json:"relation,omitempty"`
}

// Request is one benefit claim. Created once by a member and never deleted;
// controller and administrator actions only append fields and move the status.
type Request struct {
	ID         domain.RequestID
	MemberID   domain.MemberID
	MemberName string

	Type        domain.BenefitType
	Beneficiary Beneficiary

	// Amount is nil only between submission intent and amount resolution;
	// every stored request carries the resolved amount.
	Amount    *int64
	EventDate *time.Time

	Status      domain.RequestStatus
	SubmittedAt time.Time

	ControllerID   domain.MemberID
	ControllerName string
	ProcessedAt    *time.Time

	AdministratorID   domain.MemberID
	AdministratorName string
	ValidatedAt       *time.Time

	Comment               string
	JustificationDocument string
	Payment               PaymentInstructions
}
