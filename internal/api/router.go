// Package api provides HTTP routing and server configuration for CertLedger.
// It wires together handlers, middleware, and services to create the application's API endpoints.
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/educhainx/certledger/internal/api/handlers"
	"github.com/educhainx/certledger/internal/api/middleware"
	"github.com/educhainx/certledger/internal/config"
	"github.com/educhainx/certledger/internal/database"
	"github.com/educhainx/certledger/internal/ledger"
	"github.com/educhainx/certledger/internal/service"
)

// NewRouter creates and configures the HTTP router. ldg may be nil when no
// certificate registry is configured; issuance and wallet login then answer
// with service unavailable while verification falls back to the local store.
func NewRouter(cfg *config.Config, db *database.Database, ldg ledger.Ledger, logger *zap.Logger) *gin.Engine {
	// Set Gin mode
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.CORSMiddleware(cfg))

	// Initialize services
	instituteService := service.NewInstituteService(db, cfg, ldg)

	// Try to load JWT secret from database if it exists
	_ = instituteService.LoadJWTSecret()

	issuanceService := service.NewIssuanceService(db, ldg)
	verificationService := service.NewVerificationService(db, ldg)

	// Initialize handlers
	setupHandler := handlers.NewSetupHandler(instituteService, logger)
	authHandler := handlers.NewAuthHandler(instituteService, logger)
	certHandler := handlers.NewCertificateHandler(issuanceService, logger)
	verifyHandler := handlers.NewVerifyHandler(verificationService, logger)

	// Public routes
	{
		// Setup routes (no auth required)
		router.GET("/setup/status", setupHandler.GetStatus)
		router.POST("/setup", setupHandler.PerformSetup)

		// Institute auth
		router.POST("/institute/login", authHandler.Login)
		router.GET("/institute/nonce", authHandler.GetNonce)
		router.POST("/institute/wallet-login", authHandler.WalletLogin)

		// Public verification
		router.POST("/verifier/verify", verifyHandler.VerifyCertificate)
	}

	// Protected routes (require authentication)
	protected := router.Group("/institute")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		protected.GET("/me", authHandler.GetCurrentInstitute)
		protected.PUT("/profile", authHandler.UpdateProfile)

		protected.POST("/issue-certificate", certHandler.IssueCertificates)
		protected.POST("/issue-certificate/csv", certHandler.IssueCertificatesCSV)
		protected.GET("/certificates", certHandler.ListCertificates)
	}

	return router
}
