package actor

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"mutuelle/pkg/domain"
	request "mutuelle/pkg/platform/middleware/request"
	"mutuelle/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns the actor it identifies.
type TokenValidator interface {
	Validate(tokenString string) (*ActorClaims, error)
}

// ActorClaims is the validated token content this middleware consumes.
type ActorClaims struct {
	ActorID   string
	ActorName string
	Role      string
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireActor validates the bearer token and establishes the actor identity
// in the request context. Role checks stay in the domain layer; this only
// answers "who is calling".
func RequireActor(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			actorID, err := domain.ParseMemberID(claims.ActorID)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid actor identity")
				return
			}
			role, err := domain.ParseRole(claims.Role)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid actor role")
				return
			}

			ctx = requestcontext.WithActor(ctx, requestcontext.ActorInfo{
				ID:   actorID,
				Name: claims.ActorName,
				Role: role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
