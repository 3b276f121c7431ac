package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/educhainx/certledger/internal/api"
	"github.com/educhainx/certledger/internal/config"
	"github.com/educhainx/certledger/internal/database"
	"github.com/educhainx/certledger/internal/ledger"
	"github.com/educhainx/certledger/internal/service"
)

func main() {
	// Parse command line flags
	flags, configFile, showVersion := config.ParseFlags()

	// Handle version flag
	if showVersion {
		fmt.Println("CertLedger v0.1.0")
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger, err := initLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting CertLedger",
		zap.String("version", "0.1.0"),
		zap.String("database", cfg.Database.Type),
	)

	// Initialize database
	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to the certificate registry when configured
	var ldg ledger.Ledger
	if cfg.Ledger.RPCURL != "" {
		client, err := connectLedger(cfg, db, logger)
		if err != nil {
			logger.Fatal("Failed to connect to certificate registry", zap.Error(err))
		}
		defer client.Close()
		ldg = client
	} else {
		logger.Warn("No certificate registry configured; issuance is disabled and verification answers from the local store")
	}

	// Initialize router
	router := api.NewRouter(cfg, db, ldg, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting HTTP server",
			zap.String("address", srv.Addr),
			zap.Bool("tls", cfg.Server.TLSEnabled),
		)

		var err error
		if cfg.Server.TLSEnabled {
			err = srv.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}

// connectLedger builds the registry client. The signing key comes from the
// encrypted system configuration when setup imported one, otherwise from the
// config file; without a key the client is read-only.
func connectLedger(cfg *config.Config, db *database.Database, logger *zap.Logger) (*ledger.Client, error) {
	institutes := service.NewInstituteService(db, cfg, nil)
	signingKey, err := institutes.SigningKey()
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}
	if signingKey == nil {
		logger.Warn("No ledger signing key available; registry client is read-only")
	}

	client, err := ledger.NewClient(ledger.ClientConfig{
		RPCURL:          cfg.Ledger.RPCURL,
		ContractAddress: cfg.Ledger.ContractAddress,
		ChainID:         cfg.Ledger.ChainID,
		ConfirmTimeout:  cfg.Ledger.ConfirmTimeout,
	}, signingKey)
	if err != nil {
		return nil, err
	}

	logger.Info("Connected to certificate registry",
		zap.String("rpc", cfg.Ledger.RPCURL),
		zap.String("contract", cfg.Ledger.ContractAddress),
		zap.Int64("chain_id", cfg.Ledger.ChainID),
	)
	return client, nil
}

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	if cfg.Logging.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Set log level
	switch cfg.Logging.Level {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return zapConfig.Build()
}
