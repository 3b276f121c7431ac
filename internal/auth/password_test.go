package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("Produces verifiable hash", func(t *testing.T) {
		hash, err := HashPassword("correct horse 1")
		require.NoError(t, err)
		assert.NotEqual(t, "correct horse 1", hash)
		assert.NoError(t, VerifyPassword("correct horse 1", hash))
	})

	t.Run("Hashes are salted", func(t *testing.T) {
		hash1, err := HashPassword("correct horse 1")
		require.NoError(t, err)
		hash2, err := HashPassword("correct horse 1")
		require.NoError(t, err)
		assert.NotEqual(t, hash1, hash2)
	})
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse 1")
	require.NoError(t, err)

	t.Run("Wrong password fails", func(t *testing.T) {
		assert.Error(t, VerifyPassword("wrong horse 1", hash))
	})

	t.Run("Empty password fails", func(t *testing.T) {
		assert.Error(t, VerifyPassword("", hash))
	})
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid password", "password1", false},
		{"Too short", "pass1", true},
		{"No number", "passwords", true},
		{"No letter", "12345678", true},
		{"Mixed case with number", "Password123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
