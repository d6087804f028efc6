package handler

import (
	"strings"
	"time"

	"mutuelle/pkg/domain"
	dErrors "mutuelle/pkg/domain-errors"
)

// AddMemberRequest is the HTTP request body for POST /family-members.
type AddMemberRequest struct {
	OwnerID               string `json:"owner_id,omitempty"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	NationalID            string `json:"national_id"`
	BirthCertificateRef   string `json:"birth_certificate_ref"`
	BirthDate             string `json:"birth_date"`
	Relation              string `json:"relation"`
	JustificationDocument string `json:"justification_document,omitempty"`

	// Parsed values (populated by Validate)
	parsedOwnerID   domain.MemberID
	parsedRelation  domain.Relation
	parsedBirthDate time.Time
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *AddMemberRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if r.FirstName == "" || r.LastName == "" {
		return dErrors.New(dErrors.CodeValidation, "first_name and last_name are required")
	}

	relation, err := domain.ParseRelation(strings.TrimSpace(r.Relation))
	if err != nil {
		return err
	}
	r.parsedRelation = relation

	if r.BirthDate == "" {
		return dErrors.New(dErrors.CodeValidation, "birth_date is required")
	}
	birthDate, err := time.Parse("2006-01-02", r.BirthDate)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "birth_date must be YYYY-MM-DD")
	}
	r.parsedBirthDate = birthDate

	// owner_id is optional: administrators register on behalf of a member,
	// everyone else defaults to themselves (resolved in the handler).
	if r.OwnerID != "" {
		ownerID, err := domain.ParseMemberID(r.OwnerID)
		if err != nil {
			return err
		}
		r.parsedOwnerID = ownerID
	}
	return nil
}

func (r *AddMemberRequest) ParsedOwnerID() domain.MemberID  { return r.parsedOwnerID }
func (r *AddMemberRequest) ParsedRelation() domain.Relation { return r.parsedRelation }
func (r *AddMemberRequest) ParsedBirthDate() time.Time      { return r.parsedBirthDate }

// UpdateMemberRequest is the HTTP request body for PUT /family-members/{id}.
type UpdateMemberRequest struct {
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	NationalID            string `json:"national_id"`
	BirthCertificateRef   string `json:"birth_certificate_ref"`
	BirthDate             string `json:"birth_date"`
	Relation              string `json:"relation"`
	JustificationDocument string `json:"justification_document,omitempty"`

	parsedRelation  domain.Relation
	parsedBirthDate time.Time
}

func (r *UpdateMemberRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	if r.FirstName == "" || r.LastName == "" {
		return dErrors.New(dErrors.CodeValidation, "first_name and last_name are required")
	}

	relation, err := domain.ParseRelation(strings.TrimSpace(r.Relation))
	if err != nil {
		return err
	}
	r.parsedRelation = relation

	if r.BirthDate == "" {
		return dErrors.New(dErrors.CodeValidation, "birth_date is required")
	}
	birthDate, err := time.Parse("2006-01-02", r.BirthDate)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "birth_date must be YYYY-MM-DD")
	}
	r.parsedBirthDate = birthDate
	return nil
}

func (r *UpdateMemberRequest) ParsedRelation() domain.Relation { return r.parsedRelation }
func (r *UpdateMemberRequest) ParsedBirthDate() time.Time      { return r.parsedBirthDate }
