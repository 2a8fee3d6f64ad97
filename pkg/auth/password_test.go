package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bh1mart/bh1mart/pkg/auth"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := auth.HashPassword("Str0ng!Passw0rd")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!Passw0rd", hash)

	assert.NoError(t, auth.ComparePassword(hash, "Str0ng!Passw0rd"))
	assert.Error(t, auth.ComparePassword(hash, "wrong"))
}

func TestHashPassword_RejectsEmpty(t *testing.T) {
	_, err := auth.HashPassword("")
	assert.Error(t, err)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"strong password", "SecureP@ss123", false},
		{"too short", "P@ss1", true},
		{"missing uppercase", "securep@ss123", true},
		{"missing lowercase", "SECUREP@SS123", true},
		{"missing digit", "SecureP@ssword", true},
		{"missing special", "SecurePass123", true},
		{"common password", "Password123!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidatePassword(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, auth.ErrWeakPassword)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
