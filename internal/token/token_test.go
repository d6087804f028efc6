package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mutuelle/pkg/domain"
	dErrors "mutuelle/pkg/domain-errors"
)

func TestMintAndValidate(t *testing.T) {
	svc := NewService("test-signing-key", "mutuelle")
	actorID := domain.NewMemberID()

	raw, err := svc.Mint(actorID, "Awa Diallo", domain.RoleController, time.Hour)
	require.NoError(t, err)

	claims, err := svc.Validate(raw)
	require.NoError(t, err)

	subject, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, actorID.String(), subject)
	assert.Equal(t, "Awa Diallo", claims.ActorName)
	assert.Equal(t, "controller", claims.Role)
}

func TestValidate_Rejections(t *testing.T) {
	svc := NewService("test-signing-key", "mutuelle")

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Validate("not.a.token")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := NewService("a-different-key", "mutuelle")
		raw, err := other.Mint(domain.NewMemberID(), "Awa Diallo", domain.RoleMember, time.Hour)
		require.NoError(t, err)

		_, err = svc.Validate(raw)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("expired token", func(t *testing.T) {
		raw, err := svc.Mint(domain.NewMemberID(), "Awa Diallo", domain.RoleMember, -time.Minute)
		require.NoError(t, err)

		_, err = svc.Validate(raw)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewService("test-signing-key", "someone-else")
		raw, err := other.Mint(domain.NewMemberID(), "Awa Diallo", domain.RoleMember, time.Hour)
		require.NoError(t, err)

		_, err = svc.Validate(raw)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
