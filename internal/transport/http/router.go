package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	auditHandler "mutuelle/internal/audit/handler"
	benefitHandler "mutuelle/internal/benefit/handler"
	catalogHandler "mutuelle/internal/catalog/handler"
	familyHandler "mutuelle/internal/family/handler"
	"mutuelle/internal/platform/metrics"
	"mutuelle/pkg/platform/middleware/actor"
	"mutuelle/pkg/platform/middleware/request"
	"mutuelle/pkg/platform/middleware/requesttime"
)

// Registrar is anything that can attach its routes to the router.
type Registrar interface {
	Register(r chi.Router)
}

// Deps carries everything the router wires together.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	TokenValidator actor.TokenValidator

	Family  *familyHandler.Handler
	Benefit *benefitHandler.Handler
	Catalog *catalogHandler.Handler
	Audit   *auditHandler.Handler

	Health http.HandlerFunc
}

// NewRouter wires the public ops endpoints and the authenticated API. Every
// authenticated request gets a request id, a pinned request time, and an
// actor resolved from its bearer token before reaching a handler.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(deps.Metrics.Middleware)

	if deps.Health != nil {
		r.Get("/healthz", deps.Health)
	} else {
		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(api chi.Router) {
		api.Use(request.WithRequestID)
		api.Use(requesttime.WithRequestTime)
		api.Use(actor.RequireActor(deps.TokenValidator, deps.Logger))

		for _, h := range []Registrar{deps.Family, deps.Benefit, deps.Catalog, deps.Audit} {
			h.Register(api)
		}
	})

	return r
}
