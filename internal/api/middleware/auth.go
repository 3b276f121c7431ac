// Package middleware provides HTTP middleware for the CertLedger API server.
// It includes authentication, logging, CORS handling, and other cross-cutting concerns
// that are applied to HTTP requests before they reach the handlers.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/educhainx/certledger/internal/auth"
	"github.com/educhainx/certledger/internal/config"
)

// AuthMiddleware validates JWT tokens and sets the institute session context
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		token := parts[1]

		// Validate token
		claims, err := auth.ValidateToken(token, cfg.JWT.Secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		// Issuer identity for downstream handlers comes from the verified
		// token, never from the request body
		c.Set("institute_id", claims.InstituteID)
		c.Set("institute_name", claims.InstituteName)
		c.Set("institute_code", claims.InstituteCode)
		c.Set("institute_email", claims.InstituteEmail)
		c.Set("wallet_address", claims.WalletAddress)

		c.Next()
	}
}
