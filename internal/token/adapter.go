package token

import actormw "mutuelle/pkg/platform/middleware/actor"

// MiddlewareAdapter exposes the token service through the middleware's
// validator interface without the middleware importing jwt types.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) Validate(tokenString string) (*actormw.ActorClaims, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	subject, err := claims.GetSubject()
	if err != nil {
		return nil, err
	}
	return &actormw.ActorClaims{
		ActorID:   subject,
		ActorName: claims.ActorName,
		Role:      claims.Role,
	}, nil
}
