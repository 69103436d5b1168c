package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	s := New("secret", time.Hour)

	token, err := s.GenerateToken(12, RoleBusiness)
	require.NoError(t, err)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.UserID)
	assert.Equal(t, RoleBusiness, claims.Role)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := New("secret", time.Hour).GenerateToken(12, RoleAdmin)
	require.NoError(t, err)

	_, err = New("other", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	token, err := New("secret", -time.Minute).GenerateToken(12, RoleAdmin)
	require.NoError(t, err)

	_, err = New("secret", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
