package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mutuelle/internal/benefit"
	"mutuelle/pkg/domain"
	"mutuelle/pkg/platform/httputil"
	"mutuelle/pkg/requestcontext"
)

// Service defines the benefit operations the handler depends on.
type Service interface {
	Submit(ctx context.Context, input benefit.SubmitInput) (*benefit.Request, error)
	Accept(ctx context.Context, id domain.RequestID) (*benefit.Request, error)
	Reject(ctx context.Context, id domain.RequestID, comment string) (*benefit.Request, error)
	Validate(ctx context.Context, id domain.RequestID) (*benefit.Request, error)
	Get(ctx context.Context, id domain.RequestID) (*benefit.Request, error)
	List(ctx context.Context) ([]benefit.Request, error)
}

// Handler handles benefit-request endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new benefit Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register registers the benefit routes with the chi router. Authentication
// middleware is installed by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/benefit-requests", h.handleSubmit)
	r.Get("/benefit-requests", h.handleList)
	r.Get("/benefit-requests/{requestID}", h.handleGet)
	r.Post("/benefit-requests/{requestID}/accept", h.handleAccept)
	r.Post("/benefit-requests/{requestID}/reject", h.handleReject)
	r.Post("/benefit-requests/{requestID}/validate", h.handleValidate)
}

// RequestResponse is the API shape of a benefit request.
type RequestResponse struct {
	ID                    string                      `json:"id"`
	MemberID              string                      `json:"member_id"`
	MemberName            string                      `json:"member_name"`
	Type                  string                      `json:"type"`
	Beneficiary           BeneficiaryPayload          `json:"beneficiary"`
	Amount                *int64                      `json:"amount,omitempty"`
	EventDate             string                      `json:"event_date,omitempty"`
	Status                string                      `json:"status"`
	SubmittedAt           string                      `json:"submitted_at"`
	ControllerID          string                      `json:"controller_id,omitempty"`
	ControllerName        string                      `json:"controller_name,omitempty"`
	ProcessedAt           string                      `json:"processed_at,omitempty"`
	AdministratorID       string                      `json:"administrator_id,omitempty"`
	AdministratorName     string                      `json:"administrator_name,omitempty"`
	ValidatedAt           string                      `json:"validated_at,omitempty"`
	Comment               string                      `json:"comment,omitempty"`
	JustificationDocument string                      `json:"justification_document,omitempty"`
	Payment               benefit.PaymentInstructions `json:"payment"`
}

func toRequestResponse(req *benefit.Request) RequestResponse {
	resp := RequestResponse{
		ID:         req.ID.String(),
		MemberID:   req.MemberID.String(),
		MemberName: req.MemberName,
		Type:       req.Type.String(),
		Beneficiary: BeneficiaryPayload{
			ID:       req.Beneficiary.ID,
			Name:     req.Beneficiary.Name,
			Relation: req.Beneficiary.Relation.String(),
		},
		Amount:                req.Amount,
		Status:                req.Status.String(),
		SubmittedAt:           req.SubmittedAt.Format(time.RFC3339),
		ControllerName:        req.ControllerName,
		AdministratorName:     req.AdministratorName,
		Comment:               req.Comment,
		JustificationDocument: req.JustificationDocument,
		Payment:               req.Payment,
	}
	if req.EventDate != nil {
		resp.EventDate = req.EventDate.Format("2006-01-02")
	}
	if !req.ControllerID.IsNil() {
		resp.ControllerID = req.ControllerID.String()
	}
	if req.ProcessedAt != nil {
		resp.ProcessedAt = req.ProcessedAt.Format(time.RFC3339)
	}
	if !req.AdministratorID.IsNil() {
		resp.AdministratorID = req.AdministratorID.String()
	}
	if req.ValidatedAt != nil {
		resp.ValidatedAt = req.ValidatedAt.Format(time.RFC3339)
	}
	return resp
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.Submit(ctx, benefit.SubmitInput{
		Type: req.ParsedType(),
		Beneficiary: benefit.Beneficiary{
			ID:       req.Beneficiary.ID,
			Name:     req.Beneficiary.Name,
			Relation: req.ParsedRelation(),
		},
		ProposedAmount:        req.Amount,
		EventDate:             req.ParsedEventDate(),
		JustificationDocument: req.JustificationDocument,
		Payment:               req.Payment,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "failed to submit benefit request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toRequestResponse(created))
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, func(ctx context.Context, id domain.RequestID) (*benefit.Request, error) {
		return h.service.Accept(ctx, id)
	})
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, func(ctx context.Context, id domain.RequestID) (*benefit.Request, error) {
		return h.service.Validate(ctx, id)
	})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RejectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	h.applyTransition(w, r, func(ctx context.Context, id domain.RequestID) (*benefit.Request, error) {
		return h.service.Reject(ctx, id, req.Comment)
	})
}

func (h *Handler) applyTransition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id domain.RequestID) (*benefit.Request, error)) {
	ctx := r.Context()

	id, err := domain.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	updated, err := apply(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "benefit transition failed",
			"request_id", requestcontext.RequestID(ctx),
			"benefit_request_id", id,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(updated))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, err := h.service.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(req))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requests, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list benefit requests",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	resp := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		resp = append(resp, toRequestResponse(&requests[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
