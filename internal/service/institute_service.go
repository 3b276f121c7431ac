// Package service implements the application operations: institute account
// management, certificate issuance against the ledger, and fingerprint
// verification. Services are constructed with their dependencies and never
// read ambient state; the issuer identity flows in explicitly with each call.
package service

import (
	"context"
	"crypto/ecdsa"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"

	"github.com/educhainx/certledger/internal/auth"
	"github.com/educhainx/certledger/internal/config"
	"github.com/educhainx/certledger/internal/crypto"
	"github.com/educhainx/certledger/internal/database"
	"github.com/educhainx/certledger/internal/database/models"
	"github.com/educhainx/certledger/internal/ledger"
)

// InstituteService handles institute accounts and sessions
type InstituteService struct {
	db     *database.Database
	cfg    *config.Config
	ledger ledger.Ledger
}

// NewInstituteService creates a new institute service. ldg may be nil when no
// registry is configured; wallet login is then unavailable.
func NewInstituteService(db *database.Database, cfg *config.Config, ldg ledger.Ledger) *InstituteService {
	return &InstituteService{
		db:     db,
		cfg:    cfg,
		ledger: ldg,
	}
}

// Authenticate verifies email/password credentials and returns a session token
func (s *InstituteService) Authenticate(email, password string) (string, error) {
	inst, err := s.db.GetInstituteByEmail(email)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("invalid credentials")
		}
		return "", fmt.Errorf("failed to get institute: %w", err)
	}

	if err := auth.VerifyPassword(password, inst.PasswordHash); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	return s.tokenFor(inst)
}

// WalletNonce issues a fresh single-use login challenge for a wallet and
// returns the message the wallet must sign.
func (s *InstituteService) WalletNonce(walletAddress string) (string, error) {
	address, err := normalizeWallet(walletAddress)
	if err != nil {
		return "", err
	}

	nonce := uuid.New().String()
	if err := s.db.UpsertWalletNonce(address, nonce); err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", err)
	}

	return auth.NonceMessage(nonce), nil
}

// WalletLogin verifies a signed nonce challenge, checks on-chain issuer
// approval, and returns a session token for the institute registered under
// the wallet.
func (s *InstituteService) WalletLogin(ctx context.Context, walletAddress, signature string) (string, error) {
	address, err := normalizeWallet(walletAddress)
	if err != nil {
		return "", err
	}

	wn, err := s.db.GetWalletNonce(address)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("no pending login challenge for this wallet")
		}
		return "", fmt.Errorf("failed to get nonce: %w", err)
	}

	recovered, err := auth.RecoverWalletAddress(auth.NonceMessage(wn.Nonce), signature)
	if err != nil {
		return "", fmt.Errorf("signature verification failed: %w", err)
	}
	if recovered.Hex() != address {
		return "", fmt.Errorf("signature does not match wallet")
	}

	// Nonce is single-use regardless of what follows
	_ = s.db.DeleteWalletNonce(address)

	if s.ledger == nil {
		return "", fmt.Errorf("%w: wallet login requires a configured registry", ledger.ErrNoSigner)
	}
	approved, err := s.ledger.IsApprovedIssuer(ctx, recovered)
	if err != nil {
		return "", fmt.Errorf("issuer approval check failed: %w", err)
	}
	if !approved {
		return "", fmt.Errorf("%w: wallet %s", ledger.ErrNotApproved, address)
	}

	inst, err := s.db.GetInstituteByWallet(address)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("no institute registered for wallet %s", address)
		}
		return "", fmt.Errorf("failed to get institute: %w", err)
	}

	return s.tokenFor(inst)
}

func (s *InstituteService) tokenFor(inst *models.Institute) (string, error) {
	token, err := auth.GenerateToken(
		auth.Claims{
			InstituteID:    inst.ID,
			InstituteName:  inst.Name,
			InstituteCode:  inst.Code,
			InstituteEmail: inst.Email,
			WalletAddress:  inst.WalletAddress.String,
		},
		s.cfg.JWT.Secret,
		s.cfg.JWT.Issuer,
		s.cfg.JWT.Expiration,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

func normalizeWallet(walletAddress string) (string, error) {
	trimmed := strings.TrimSpace(walletAddress)
	if !common.IsHexAddress(trimmed) {
		return "", fmt.Errorf("invalid wallet address: %s", walletAddress)
	}
	return common.HexToAddress(trimmed).Hex(), nil
}

// SetupRequest represents initial setup request
type SetupRequest struct {
	Email           string
	Password        string
	InstituteName   string
	InstituteCode   string
	LedgerSigningKey string // hex private key, optional
}

// SetupResponse contains setup response data
type SetupResponse struct {
	Institute *models.Institute
	MasterKey string
	Token     string
}

// PerformInitialSetup performs first-time setup: master key, JWT secret, the
// admin institute account, and optionally the ledger signing key (stored
// AES-GCM encrypted under the master key).
func (s *InstituteService) PerformInitialSetup(req *SetupRequest) (*SetupResponse, error) {
	isComplete, err := s.db.IsSetupComplete()
	if err != nil {
		return nil, fmt.Errorf("failed to check setup status: %w", err)
	}
	if isComplete {
		return nil, fmt.Errorf("setup already complete")
	}

	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		return nil, fmt.Errorf("weak password: %w", err)
	}

	masterKey, err := crypto.GenerateMasterKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}

	masterKeyHex := hex.EncodeToString(masterKey)
	if err := s.db.SetSystemConfig("master_key", masterKeyHex); err != nil {
		return nil, fmt.Errorf("failed to store master key: %w", err)
	}

	// Generate JWT secret if not set
	if s.cfg.JWT.Secret == "" {
		jwtSecret, err := crypto.GenerateMasterKey()
		if err != nil {
			return nil, fmt.Errorf("failed to generate JWT secret: %w", err)
		}
		s.cfg.JWT.Secret = hex.EncodeToString(jwtSecret)
		if err := s.db.SetSystemConfig("jwt_secret", s.cfg.JWT.Secret); err != nil {
			return nil, fmt.Errorf("failed to store JWT secret: %w", err)
		}
	}

	if req.LedgerSigningKey != "" {
		if err := s.ImportSigningKey(req.LedgerSigningKey, masterKey); err != nil {
			return nil, err
		}
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	inst := &models.Institute{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.InstituteName,
		Code:         req.InstituteCode,
		Role:         "admin",
		CreatedAt:    time.Now(),
	}
	if err := s.db.CreateInstitute(inst); err != nil {
		return nil, fmt.Errorf("failed to create institute: %w", err)
	}

	token, err := s.tokenFor(inst)
	if err != nil {
		return nil, err
	}

	return &SetupResponse{
		Institute: inst,
		MasterKey: masterKeyHex,
		Token:     token,
	}, nil
}

// ImportSigningKey validates and stores the ledger signing key encrypted
// under the master key.
func (s *InstituteService) ImportSigningKey(keyHex string, masterKey []byte) error {
	trimmed := strings.TrimPrefix(keyHex, "0x")
	if _, err := ethcrypto.HexToECDSA(trimmed); err != nil {
		return fmt.Errorf("invalid ledger signing key: %w", err)
	}

	sealed, err := crypto.EncryptSigningKey([]byte(trimmed), masterKey, "ledger-signing-key")
	if err != nil {
		return fmt.Errorf("failed to encrypt signing key: %w", err)
	}
	if err := s.db.SetSystemConfig("ledger_signing_key", hex.EncodeToString(sealed)); err != nil {
		return fmt.Errorf("failed to store signing key: %w", err)
	}
	return nil
}

// SigningKey loads the ledger signing key: the encrypted copy in system
// configuration when present, otherwise the configured development key.
// Returns nil when no key is available.
func (s *InstituteService) SigningKey() (*ecdsa.PrivateKey, error) {
	sealedHex, err := s.db.GetSystemConfig("ledger_signing_key")
	if err == nil {
		masterKey, err := s.GetMasterKey()
		if err != nil {
			return nil, err
		}
		sealed, err := hex.DecodeString(sealedHex)
		if err != nil {
			return nil, fmt.Errorf("failed to decode signing key: %w", err)
		}
		keyHex, err := crypto.DecryptSigningKey(sealed, masterKey, "ledger-signing-key")
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt signing key: %w", err)
		}
		return ethcrypto.HexToECDSA(string(keyHex))
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get signing key: %w", err)
	}

	if s.cfg.Ledger.PrivateKey != "" {
		return ethcrypto.HexToECDSA(strings.TrimPrefix(s.cfg.Ledger.PrivateKey, "0x"))
	}

	return nil, nil
}

// IsSetupComplete checks if initial setup has been completed
func (s *InstituteService) IsSetupComplete() (bool, error) {
	return s.db.IsSetupComplete()
}

// GetMasterKey retrieves the master key from the database
func (s *InstituteService) GetMasterKey() ([]byte, error) {
	masterKeyHex, err := s.db.GetSystemConfig("master_key")
	if err != nil {
		return nil, fmt.Errorf("failed to get master key: %w", err)
	}

	masterKey, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode master key: %w", err)
	}

	return masterKey, nil
}

// LoadJWTSecret loads JWT secret from database if it exists
func (s *InstituteService) LoadJWTSecret() error {
	secret, err := s.db.GetSystemConfig("jwt_secret")
	if err != nil {
		if err == sql.ErrNoRows {
			return nil // Not an error if not found
		}
		return fmt.Errorf("failed to get JWT secret: %w", err)
	}

	s.cfg.JWT.Secret = secret
	return nil
}

// GetInstitute retrieves an institute by ID
func (s *InstituteService) GetInstitute(id string) (*models.Institute, error) {
	return s.db.GetInstituteByID(id)
}

// ProfileRequest represents a profile completion request
type ProfileRequest struct {
	Name          string
	Code          string
	WalletAddress string
	PostalAddress string
}

// UpdateProfile completes or updates the institute profile
func (s *InstituteService) UpdateProfile(id string, req *ProfileRequest) (*models.Institute, error) {
	inst, err := s.db.GetInstituteByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get institute: %w", err)
	}

	if req.Name != "" {
		inst.Name = req.Name
	}
	if req.Code != "" {
		inst.Code = req.Code
	}
	if req.WalletAddress != "" {
		address, err := normalizeWallet(req.WalletAddress)
		if err != nil {
			return nil, err
		}
		inst.WalletAddress = sql.NullString{String: address, Valid: true}
	}
	if req.PostalAddress != "" {
		inst.PostalAddress = sql.NullString{String: req.PostalAddress, Valid: true}
	}
	inst.ProfileComplete = inst.Name != "" && inst.Code != "" && inst.WalletAddress.Valid

	if err := s.db.UpdateInstituteProfile(inst); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return inst, nil
}
