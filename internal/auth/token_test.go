package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bh1mart/bh1mart/internal/auth"
)

func TestTokenManager_GenerateAndValidate(t *testing.T) {
	tm := auth.NewTokenManager("test-secret-that-is-long-enough-0123456789", time.Hour)

	token, err := tm.Generate("admin-1", "owner@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.AdminID)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID, "tokens carry a unique jti")
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret-that-is-long-enough-0123456789", -time.Minute)

	token, err := tm.Generate("admin-1", "owner@example.com")
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	tm := auth.NewTokenManager("test-secret-that-is-long-enough-0123456789", time.Hour)
	other := auth.NewTokenManager("a-completely-different-secret-9876543210ab", time.Hour)

	token, err := tm.Generate("admin-1", "owner@example.com")
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := auth.NewTokenManager("test-secret-that-is-long-enough-0123456789", time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := tm.Validate(token)
		assert.Error(t, err, "token %q must not validate", token)
	}
}

func TestTokenManager_UniqueJTIPerToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret-that-is-long-enough-0123456789", time.Hour)

	first, err := tm.Generate("admin-1", "owner@example.com")
	require.NoError(t, err)
	second, err := tm.Generate("admin-1", "owner@example.com")
	require.NoError(t, err)

	firstClaims, err := tm.Validate(first)
	require.NoError(t, err)
	secondClaims, err := tm.Validate(second)
	require.NoError(t, err)

	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}
