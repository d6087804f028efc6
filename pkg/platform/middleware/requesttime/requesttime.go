package requesttime

import (
	"net/http"
	"time"

	"mutuelle/pkg/requestcontext"
)

// WithRequestTime pins one clock reading per request. Every recency and
// timestamp decision downstream reads this value, so a single request is
// internally consistent even across slow handlers.
func WithRequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
