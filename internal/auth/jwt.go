// Package auth provides session authentication for institute users. It
// includes JWT token generation and validation, bcrypt password hashing, and
// password strength validation. The token claims carry the issuer identity
// that is stamped into on-chain certificate metadata, so issuance never reads
// ambient session state.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the institute session claims
type Claims struct {
	InstituteID    string `json:"institute_id"`
	InstituteName  string `json:"institute_name"`
	InstituteCode  string `json:"institute_code"`
	InstituteEmail string `json:"institute_email"`
	WalletAddress  string `json:"wallet_address,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken generates a new JWT token for an institute session
func GenerateToken(claims Claims, secret, issuer string, expiration time.Duration) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		Issuer:    issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
