package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"mutuelle/internal/catalog"
	"mutuelle/pkg/domain"
	dErrors "mutuelle/pkg/domain-errors"
	"mutuelle/pkg/platform/httputil"
	"mutuelle/pkg/requestcontext"
)

// Service defines the catalog operations the handler depends on.
type Service interface {
	List(ctx context.Context) ([]catalog.Service, error)
	Update(ctx context.Context, service catalog.Service) (*catalog.Service, error)
}

// Handler handles catalog endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new catalog Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register registers the catalog routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/catalog", h.handleList)
	r.Put("/catalog/{benefitType}", h.handleUpdate)
}

// ServiceResponse is the API shape of one catalog row.
type ServiceResponse struct {
	Type        string `json:"type"`
	Label       string `json:"label"`
	FixedAmount int64  `json:"fixed_amount,omitempty"`
	Ceiling     int64  `json:"ceiling,omitempty"`
	Enabled     bool   `json:"enabled"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

func toServiceResponse(svc *catalog.Service) ServiceResponse {
	resp := ServiceResponse{
		Type:        svc.Type.String(),
		Label:       svc.Label,
		FixedAmount: svc.FixedAmount,
		Ceiling:     svc.Ceiling,
		Enabled:     svc.Enabled,
	}
	if !svc.UpdatedAt.IsZero() {
		resp.UpdatedAt = svc.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

// UpdateServiceRequest is the HTTP request body for PUT /catalog/{type}.
type UpdateServiceRequest struct {
	Label       string `json:"label"`
	FixedAmount int64  `json:"fixed_amount"`
	Ceiling     int64  `json:"ceiling"`
	Enabled     bool   `json:"enabled"`
}

func (r *UpdateServiceRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Label) == "" {
		return dErrors.New(dErrors.CodeValidation, "label is required")
	}
	return nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	services, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list catalog",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	resp := make([]ServiceResponse, 0, len(services))
	for i := range services {
		resp = append(resp, toServiceResponse(&services[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	benefitType, err := domain.ParseBenefitType(chi.URLParam(r, "benefitType"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateServiceRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	updated, err := h.service.Update(ctx, catalog.Service{
		Type:        benefitType,
		Label:       req.Label,
		FixedAmount: req.FixedAmount,
		Ceiling:     req.Ceiling,
		Enabled:     req.Enabled,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "failed to update catalog",
			"request_id", requestID,
			"benefit_type", benefitType,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toServiceResponse(updated))
}
