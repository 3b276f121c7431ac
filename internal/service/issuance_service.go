package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/educhainx/certledger/internal/database"
	"github.com/educhainx/certledger/internal/database/models"
	"github.com/educhainx/certledger/internal/fingerprint"
	"github.com/educhainx/certledger/internal/ledger"
)

// Issuer identifies the authenticated institute issuing certificates. It is
// taken from the verified session, never from the request body.
type Issuer struct {
	ID    string
	Name  string
	Code  string
	Email string
}

// IssueResult contains the outcome of a batch issuance
type IssueResult struct {
	TransactionHash string `json:"transactionHash"`
	Count           int    `json:"count"`
}

// ReconciliationError reports a batch that was anchored on the ledger but
// could not be persisted locally. The transaction hash is the replay key:
// resubmitting the same records with it re-persists without a second ledger
// write.
type ReconciliationError struct {
	TransactionHash string
	Err             error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("ledger transaction %s confirmed but local persistence failed: %v", e.TransactionHash, e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// IssuanceService anchors certificate fingerprints on the ledger and persists
// the plaintext records locally.
type IssuanceService struct {
	db     *database.Database
	ledger ledger.Ledger
}

// NewIssuanceService creates a new issuance service
func NewIssuanceService(db *database.Database, ldg ledger.Ledger) *IssuanceService {
	return &IssuanceService{
		db:     db,
		ledger: ldg,
	}
}

// IssueBatch validates the records, computes their fingerprints, anchors them
// in a single ledger transaction, and persists the batch atomically. The
// ledger write and the local write are ordered: confirmation first, rows
// second. A failure between the two returns *ReconciliationError so the
// caller can replay persistence.
func (s *IssuanceService) IssueBatch(ctx context.Context, records []fingerprint.Record, issuer Issuer) (*IssueResult, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no certificates to issue")
	}
	if s.ledger == nil {
		return nil, fmt.Errorf("%w: no registry configured", ledger.ErrNoSigner)
	}

	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("certificate %d: %w", i+1, err)
		}
	}

	hashes := fingerprint.ComputeBatch(records)
	metadata, err := issuerMetadata(issuer)
	if err != nil {
		return nil, err
	}
	metadataList := make([]string, len(hashes))
	for i := range metadataList {
		metadataList[i] = metadata
	}

	txHash, err := s.ledger.StoreCertificateHashes(ctx, hashes, metadataList)
	if err != nil {
		return nil, err
	}

	certs := make([]*models.Certificate, len(records))
	for i, r := range records {
		certs[i] = certificateRow(r, hashes[i].Hex(), metadata, issuer.ID, txHash)
	}
	if err := s.db.CreateCertificates(certs); err != nil {
		return nil, &ReconciliationError{TransactionHash: txHash, Err: err}
	}

	return &IssueResult{TransactionHash: txHash, Count: len(certs)}, nil
}

// ReplayPersist re-persists a batch that was already anchored under txHash.
// No ledger write happens; when a registry is configured each fingerprint is
// checked on-chain before the rows are written.
func (s *IssuanceService) ReplayPersist(ctx context.Context, records []fingerprint.Record, issuer Issuer, txHash string) (*IssueResult, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no certificates to persist")
	}
	if txHash == "" {
		return nil, fmt.Errorf("transaction hash is required for replay")
	}

	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("certificate %d: %w", i+1, err)
		}
	}

	hashes := fingerprint.ComputeBatch(records)
	if s.ledger != nil {
		for i, h := range hashes {
			exists, _, err := s.ledger.VerifyFingerprint(ctx, h)
			if err != nil {
				return nil, fmt.Errorf("failed to confirm fingerprint on ledger: %w", err)
			}
			if !exists {
				return nil, fmt.Errorf("certificate %d is not anchored on the ledger", i+1)
			}
		}
	}

	metadata, err := issuerMetadata(issuer)
	if err != nil {
		return nil, err
	}

	certs := make([]*models.Certificate, len(records))
	for i, r := range records {
		certs[i] = certificateRow(r, hashes[i].Hex(), metadata, issuer.ID, txHash)
	}
	if err := s.db.CreateCertificates(certs); err != nil {
		return nil, &ReconciliationError{TransactionHash: txHash, Err: err}
	}

	return &IssueResult{TransactionHash: txHash, Count: len(certs)}, nil
}

// ListCertificates returns the certificates issued by an institute
func (s *IssuanceService) ListCertificates(instituteID string) ([]*models.Certificate, error) {
	return s.db.ListCertificatesByInstitute(instituteID)
}

func issuerMetadata(issuer Issuer) (string, error) {
	raw, err := json.Marshal(map[string]string{
		"issuedBy":       issuer.Name,
		"instituteCode":  issuer.Code,
		"instituteEmail": issuer.Email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode metadata: %w", err)
	}
	return string(raw), nil
}

func certificateRow(r fingerprint.Record, fp, metadata, instituteID, txHash string) *models.Certificate {
	cert := &models.Certificate{
		ID:              uuid.New().String(),
		InstituteID:     instituteID,
		CertificateNo:   r.CertificateNo,
		DateOfIssue:     r.DateOfIssue,
		StudentName:     r.Name,
		EnrolmentNo:     r.EnrolmentNo,
		GraduationYear:  r.GraduationYear,
		Degree:          r.Degree,
		Fingerprint:     fp,
		Metadata:        metadata,
		TransactionHash: txHash,
		CreatedAt:       time.Now(),
	}
	if r.Department != "" {
		cert.Department.String = r.Department
		cert.Department.Valid = true
	}
	return cert
}
