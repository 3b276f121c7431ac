package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing"

func testClaims() Claims {
	return Claims{
		InstituteID:    "inst-123",
		InstituteName:  "Test Institute",
		InstituteCode:  "TI-001",
		InstituteEmail: "admin@test-institute.edu",
		WalletAddress:  "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	}
}

func TestGenerateToken(t *testing.T) {
	t.Run("Generates valid token", func(t *testing.T) {
		token, err := GenerateToken(testClaims(), testSecret, "certledger", time.Hour)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("Tokens embed institute identity", func(t *testing.T) {
		token, err := GenerateToken(testClaims(), testSecret, "certledger", time.Hour)
		require.NoError(t, err)

		claims, err := ValidateToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, "inst-123", claims.InstituteID)
		assert.Equal(t, "Test Institute", claims.InstituteName)
		assert.Equal(t, "TI-001", claims.InstituteCode)
		assert.Equal(t, "admin@test-institute.edu", claims.InstituteEmail)
		assert.Equal(t, "0x71C7656EC7ab88b098defB751B7401B5f6d8976F", claims.WalletAddress)
		assert.Equal(t, "certledger", claims.Issuer)
	})
}

func TestValidateToken(t *testing.T) {
	t.Run("Rejects wrong secret", func(t *testing.T) {
		token, err := GenerateToken(testClaims(), testSecret, "certledger", time.Hour)
		require.NoError(t, err)

		_, err = ValidateToken(token, "different-secret")
		assert.Error(t, err)
	})

	t.Run("Rejects expired token", func(t *testing.T) {
		token, err := GenerateToken(testClaims(), testSecret, "certledger", -time.Minute)
		require.NoError(t, err)

		_, err = ValidateToken(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("Rejects malformed token", func(t *testing.T) {
		_, err := ValidateToken("not.a.token", testSecret)
		assert.Error(t, err)
	})

	t.Run("Rejects token with none algorithm", func(t *testing.T) {
		// Header {"alg":"none","typ":"JWT"} with empty signature
		unsigned := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJpbnN0aXR1dGVfaWQiOiJpbnN0LTEyMyJ9."
		_, err := ValidateToken(unsigned, testSecret)
		assert.Error(t, err)
	})
}
