package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educhainx/certledger/internal/auth"
	"github.com/educhainx/certledger/internal/config"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func testToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := auth.GenerateToken(
		auth.Claims{
			InstituteID:    "inst-123",
			InstituteName:  "Test Institute",
			InstituteCode:  "TI-001",
			InstituteEmail: "registrar@test.edu",
			WalletAddress:  "0x1111111111111111111111111111111111111111",
		},
		cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration,
	)
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:     "test-secret-key-for-testing",
			Expiration: 24 * time.Hour,
			Issuer:     "test-issuer",
		},
	}

	t.Run("Valid token allows access", func(t *testing.T) {
		router := setupTestRouter()

		router.Use(AuthMiddleware(cfg))
		router.GET("/protected", func(c *gin.Context) {
			instituteID, _ := c.Get("institute_id")
			instituteCode, _ := c.Get("institute_code")
			wallet, _ := c.Get("wallet_address")

			c.JSON(http.StatusOK, gin.H{
				"institute_id":   instituteID,
				"institute_code": instituteCode,
				"wallet_address": wallet,
			})
		})

		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+testToken(t, cfg))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "inst-123")
		assert.Contains(t, w.Body.String(), "TI-001")
		assert.Contains(t, w.Body.String(), "0x1111111111111111111111111111111111111111")
	})

	t.Run("Missing Authorization header returns 401", func(t *testing.T) {
		router := setupTestRouter()
		router.Use(AuthMiddleware(cfg))
		router.GET("/protected", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "success"})
		})

		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "authorization header required")
	})

	t.Run("Invalid Authorization header format returns 401", func(t *testing.T) {
		router := setupTestRouter()
		router.Use(AuthMiddleware(cfg))
		router.GET("/protected", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "success"})
		})

		testCases := []struct {
			name   string
			header string
		}{
			{"No Bearer prefix", "invalid-token"},
			{"Wrong prefix", "Basic invalid-token"},
			{"Only Bearer", "Bearer"},
			{"Empty after Bearer", "Bearer "},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
				req.Header.Set("Authorization", tc.header)

				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				assert.Equal(t, http.StatusUnauthorized, w.Code)
			})
		}
	})

	t.Run("Invalid token returns 401", func(t *testing.T) {
		router := setupTestRouter()
		router.Use(AuthMiddleware(cfg))
		router.GET("/protected", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "success"})
		})

		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer invalid-token")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid or expired token")
	})

	t.Run("Token signed with wrong secret returns 401", func(t *testing.T) {
		otherCfg := &config.Config{
			JWT: config.JWTConfig{
				Secret:     "a-different-secret",
				Expiration: 24 * time.Hour,
				Issuer:     "test-issuer",
			},
		}

		router := setupTestRouter()
		router.Use(AuthMiddleware(cfg))
		router.GET("/protected", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "success"})
		})

		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+testToken(t, otherCfg))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Expired token returns 401", func(t *testing.T) {
		expiredCfg := &config.Config{
			JWT: config.JWTConfig{
				Secret:     cfg.JWT.Secret,
				Expiration: -time.Hour,
				Issuer:     "test-issuer",
			},
		}

		router := setupTestRouter()
		router.Use(AuthMiddleware(cfg))
		router.GET("/protected", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "success"})
		})

		req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+testToken(t, expiredCfg))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
