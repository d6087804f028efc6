// Package token validates the bearer tokens minted by the identity provider.
// This service only consumes tokens; login, refresh, and revocation live with
// the provider.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mutuelle/pkg/domain"
	dErrors "mutuelle/pkg/domain-errors"
)

// Claims carries the actor identity the portal needs: who is calling, their
// display name, and the role that gates lifecycle actions.
type Claims struct {
	ActorName string `json:"actor_name"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Service validates HS256 bearer tokens against a shared signing key.
type Service struct {
	signingKey []byte
	issuer     string
}

func NewService(signingKey, issuer string) *Service {
	return &Service{signingKey: []byte(signingKey), issuer: issuer}
}

// Mint issues a token for the given actor. Used by tests and local tooling;
// production tokens come from the identity provider with the same claims.
func (s *Service) Mint(actorID domain.MemberID, actorName string, role domain.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ActorName: actorName,
		Role:      role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return t.SignedString(s.signingKey)
}

// Validate parses and verifies a token, returning the actor it identifies.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if s.issuer != "" {
		if iss, err := claims.GetIssuer(); err != nil || iss != s.issuer {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token issuer")
		}
	}
	return claims, nil
}
