package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	signed, err := tokens.Issue("user-1", RoleDonor)
	require.NoError(t, err)

	principal, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.ID)
	assert.Equal(t, RoleDonor, principal.Role)
}

func TestTokensParse_WrongSecret(t *testing.T) {
	signed, err := NewTokens("secret", time.Hour).Issue("user-1", RoleDonor)
	require.NoError(t, err)

	_, err = NewTokens("other", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensParse_Expired(t *testing.T) {
	signed, err := NewTokens("secret", -time.Minute).Issue("user-1", RoleDonor)
	require.NoError(t, err)

	_, err = NewTokens("secret", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensParse_Garbage(t *testing.T) {
	_, err := NewTokens("secret", time.Hour).Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
