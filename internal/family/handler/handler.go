package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mutuelle/internal/family"
	"mutuelle/pkg/domain"
	"mutuelle/pkg/platform/httputil"
	"mutuelle/pkg/requestcontext"
)

// Service defines the family operations the handler depends on.
type Service interface {
	Add(ctx context.Context, input family.AddInput) (*family.Member, error)
	Update(ctx context.Context, input family.UpdateInput) (*family.Member, error)
	ListByOwner(ctx context.Context, ownerID domain.MemberID) ([]family.Member, error)
}

// Handler handles family-member endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new family Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register registers the family routes with the chi router. Authentication
// middleware is installed by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/family-members", h.handleAdd)
	r.Put("/family-members/{memberID}", h.handleUpdate)
	r.Get("/family-members", h.handleList)
}

// MemberResponse is the API shape of a family member.
type MemberResponse struct {
	ID                    string `json:"id"`
	OwnerID               string `json:"owner_id"`
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	NationalID            string `json:"national_id,omitempty"`
	BirthCertificateRef   string `json:"birth_certificate_ref,omitempty"`
	BirthDate             string `json:"birth_date"`
	Relation              string `json:"relation"`
	CreatedAt             string `json:"created_at"`
	JustificationDocument string `json:"justification_document,omitempty"`
}

func toMemberResponse(m *family.Member) MemberResponse {
	return MemberResponse{
		ID:                    m.ID.String(),
		OwnerID:               m.OwnerID.String(),
		FirstName:             m.FirstName,
		LastName:              m.LastName,
		NationalID:            m.NationalID,
		BirthCertificateRef:   m.BirthCertificateRef,
		BirthDate:             m.BirthDate.Format("2006-01-02"),
		Relation:              m.Relation.String(),
		CreatedAt:             m.CreatedAt.Format(time.RFC3339),
		JustificationDocument: m.JustificationDocument,
	}
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AddMemberRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	ownerID := req.ParsedOwnerID()
	if ownerID.IsNil() {
		ownerID = requestcontext.Actor(ctx).ID
	}

	member, err := h.service.Add(ctx, family.AddInput{
		OwnerID:               ownerID,
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		NationalID:            req.NationalID,
		BirthCertificateRef:   req.BirthCertificateRef,
		BirthDate:             req.ParsedBirthDate(),
		Relation:              req.ParsedRelation(),
		JustificationDocument: req.JustificationDocument,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "failed to add family member",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toMemberResponse(member))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	memberID, err := domain.ParseFamilyMemberID(chi.URLParam(r, "memberID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateMemberRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	member, err := h.service.Update(ctx, family.UpdateInput{
		ID:                    memberID,
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		NationalID:            req.NationalID,
		BirthCertificateRef:   req.BirthCertificateRef,
		BirthDate:             req.ParsedBirthDate(),
		Relation:              req.ParsedRelation(),
		JustificationDocument: req.JustificationDocument,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "failed to update family member",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toMemberResponse(member))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.Actor(ctx)

	ownerID := actor.ID
	if raw := r.URL.Query().Get("owner_id"); raw != "" {
		parsed, err := domain.ParseMemberID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		ownerID = parsed
	}

	members, err := h.service.ListByOwner(ctx, ownerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list family members",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	resp := make([]MemberResponse, 0, len(members))
	for i := range members {
		resp = append(resp, toMemberResponse(&members[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
