package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"mutuelle/pkg/requestcontext"
)

// HeaderRequestID is honored when a gateway in front of us already assigned
// a correlation id.
const HeaderRequestID = "X-Request-Id"

// WithRequestID assigns a request ID to every request, reusing an inbound
// header value when present, and echoes it back to the caller.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(HeaderRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
