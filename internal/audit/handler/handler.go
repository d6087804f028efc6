package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"mutuelle/internal/audit"
	"mutuelle/pkg/domain"
	dErrors "mutuelle/pkg/domain-errors"
	"mutuelle/pkg/platform/httputil"
	"mutuelle/pkg/requestcontext"
)

const defaultLimit = 100

// Handler exposes the audit trail to administrators.
type Handler struct {
	logger *slog.Logger
	store  audit.Store
}

// New creates a new audit Handler.
func New(store audit.Store, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		store:  store,
	}
}

// Register registers the audit routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/entries", h.handleList)
}

// EntryResponse is the API shape of one audit entry.
type EntryResponse struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actor_id"`
	ActorName string `json:"actor_name"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	Severity  string `json:"severity"`
	Module    string `json:"module"`
}

func toEntryResponse(e *audit.Entry) EntryResponse {
	return EntryResponse{
		ID:        e.ID.String(),
		Timestamp: e.Timestamp.Format(time.RFC3339),
		ActorID:   e.ActorID.String(),
		ActorName: e.ActorName,
		Action:    e.Action,
		Details:   e.Details,
		Severity:  string(e.Severity),
		Module:    string(e.Module),
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor := requestcontext.Actor(ctx)
	if actor.Role != domain.RoleAdministrator {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "only administrators may read the audit trail"))
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	var (
		entries []audit.Entry
		err     error
	)
	if raw := r.URL.Query().Get("module"); raw != "" {
		entries, err = h.store.ListByModule(ctx, audit.Module(raw), limit)
	} else {
		entries, err = h.store.ListRecent(ctx, limit)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit entries",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit entries"))
		return
	}

	resp := make([]EntryResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, toEntryResponse(&entries[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
