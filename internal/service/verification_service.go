package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/educhainx/certledger/internal/database"
	"github.com/educhainx/certledger/internal/fingerprint"
	"github.com/educhainx/certledger/internal/ledger"
)

// VerificationResult is the outcome of a fingerprint lookup. A certificate
// that is not anchored yields Valid=false with no error; errors are reserved
// for transport failures.
type VerificationResult struct {
	Valid    bool   `json:"valid"`
	CertID   string `json:"certId,omitempty"`
	Metadata string `json:"metadata,omitempty"`
}

// VerificationService answers public fingerprint lookups. The fingerprint is
// recomputed server side from the submitted details; client-computed hashes
// are never trusted.
type VerificationService struct {
	db     *database.Database
	ledger ledger.Ledger
}

// NewVerificationService creates a new verification service. ldg may be nil;
// lookups then answer from the local store only.
func NewVerificationService(db *database.Database, ldg ledger.Ledger) *VerificationService {
	return &VerificationService{
		db:     db,
		ledger: ldg,
	}
}

// Verify recomputes the fingerprint for the submitted certificate details and
// looks it up.
func (s *VerificationService) Verify(ctx context.Context, r fingerprint.Record) (*VerificationResult, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return s.VerifyHash(ctx, fingerprint.Compute(r).Hex())
}

// VerifyHash looks up a fingerprint by its hex form: the local store first,
// then the ledger when one is configured. Rows issued by this deployment are
// authoritative; the ledger fallback covers certificates anchored elsewhere.
func (s *VerificationService) VerifyHash(ctx context.Context, hash string) (*VerificationResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(hash))
	if !strings.HasPrefix(normalized, "0x") || len(normalized) != 66 {
		return nil, fmt.Errorf("invalid fingerprint: %s", hash)
	}

	cert, err := s.db.GetCertificateByFingerprint(normalized)
	if err == nil {
		return &VerificationResult{
			Valid:    true,
			CertID:   cert.ID,
			Metadata: cert.Metadata,
		}, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to look up certificate: %w", err)
	}

	if s.ledger == nil {
		return &VerificationResult{Valid: false}, nil
	}

	exists, metadata, err := s.ledger.VerifyFingerprint(ctx, common.HexToHash(normalized))
	if err != nil {
		return nil, err
	}
	if !exists {
		return &VerificationResult{Valid: false}, nil
	}
	return &VerificationResult{Valid: true, Metadata: metadata}, nil
}
