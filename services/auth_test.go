package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cast-press/models"
	"cast-press/services"
)

func TestIssueAndParseToken(t *testing.T) {
	admin := &models.Admin{
		ID:           42,
		Username:     "editor",
		IsSuperAdmin: true,
	}

	t.Run("round trip preserves claims", func(t *testing.T) {
		token, err := services.IssueToken(admin, "test-secret", time.Hour)
		require.NoError(t, err)

		claims, err := services.ParseToken(token, "test-secret")
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.AdminID)
		assert.Equal(t, "editor", claims.Username)
		assert.True(t, claims.IsSuperAdmin)
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		token, err := services.IssueToken(admin, "test-secret", time.Hour)
		require.NoError(t, err)

		_, err = services.ParseToken(token, "other-secret")
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		token, err := services.IssueToken(admin, "test-secret", -time.Minute)
		require.NoError(t, err)

		_, err = services.ParseToken(token, "test-secret")
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := services.ParseToken("not.a.token", "test-secret")
		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})
}

func TestAdminPasswordHashing(t *testing.T) {
	var admin models.Admin
	require.NoError(t, admin.SetPassword("hunter22", 4))
	assert.NotEqual(t, "hunter22", admin.Password)
	assert.True(t, admin.ComparePassword("hunter22"))
	assert.False(t, admin.ComparePassword("hunter23"))
}
