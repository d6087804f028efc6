package handler

import (
	"strings"
	"time"

	"mutuelle/internal/benefit"
	"mutuelle/pkg/domain"
	dErrors "mutuelle/pkg/domain-errors"
)

// BeneficiaryPayload identifies who the benefit is claimed for.
type BeneficiaryPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Relation string `json:"relation,omitempty"`
}

// SubmitRequest is the HTTP request body for POST /benefit-requests.
type SubmitRequest struct {
	Type                  string                      `json:"type"`
	Beneficiary           BeneficiaryPayload          `json:"beneficiary"`
	Amount                *int64                      `json:"amount,omitempty"`
	EventDate             string                      `json:"event_date,omitempty"`
	JustificationDocument string                      `json:"justification_document,omitempty"`
	Payment               benefit.PaymentInstructions `json:"payment"`

	parsedType      domain.BenefitType
	parsedRelation  domain.Relation
	parsedEventDate *time.Time
}

// Validate validates and parses the request. Amount and recency policy stay
// with the service; this only checks shape.
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	benefitType, err := domain.ParseBenefitType(strings.TrimSpace(r.Type))
	if err != nil {
		return err
	}
	r.parsedType = benefitType

	if strings.TrimSpace(r.Beneficiary.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "beneficiary name is required")
	}
	if r.Beneficiary.Relation != "" {
		relation, err := domain.ParseRelation(r.Beneficiary.Relation)
		if err != nil {
			return err
		}
		r.parsedRelation = relation
	}

	if r.EventDate != "" {
		eventDate, err := time.Parse("2006-01-02", r.EventDate)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "event_date must be YYYY-MM-DD")
		}
		r.parsedEventDate = &eventDate
	}

	return r.Payment.Validate()
}

func (r *SubmitRequest) ParsedType() domain.BenefitType  { return r.parsedType }
func (r *SubmitRequest) ParsedRelation() domain.Relation { return r.parsedRelation }
func (r *SubmitRequest) ParsedEventDate() *time.Time     { return r.parsedEventDate }

// RejectRequest is the HTTP request body for POST /benefit-requests/{id}/reject.
type RejectRequest struct {
	Comment string `json:"comment"`
}

func (r *RejectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	// Empty comment is a lifecycle decision (comment_required), not a shape
	// error, so it passes through to the state machine.
	return nil
}
