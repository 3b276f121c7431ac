package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/educhainx/certledger/internal/database/models"
	"github.com/educhainx/certledger/internal/fingerprint"
	"github.com/educhainx/certledger/internal/ledger"
	"github.com/educhainx/certledger/internal/service"
)

// CertificateHandler handles certificate issuance operations
type CertificateHandler struct {
	issuance *service.IssuanceService
	logger   *zap.Logger
}

// NewCertificateHandler creates a new certificate handler
func NewCertificateHandler(issuance *service.IssuanceService, logger *zap.Logger) *CertificateHandler {
	return &CertificateHandler{
		issuance: issuance,
		logger:   logger,
	}
}

// IssueRequest represents a batch issuance request. TransactionHash is only
// set when replaying persistence for a batch already anchored on the ledger.
type IssueRequest struct {
	Certificates    []fingerprint.Record `json:"certificates" binding:"required"`
	TransactionHash string               `json:"transactionHash"`
}

// IssueCertificates issues a batch of certificates
// @Summary Issue certificates
// @Description Anchor certificate fingerprints on the ledger and persist the batch
// @Accept json
// @Produce json
// @Param request body IssueRequest true "Certificates to issue"
// @Success 200 {object} service.IssueResult
// @Router /institute/issue-certificate [post]
func (h *CertificateHandler) IssueCertificates(c *gin.Context) {
	var req IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issuer := issuerFromContext(c)

	var result *service.IssueResult
	var err error
	if req.TransactionHash != "" {
		result, err = h.issuance.ReplayPersist(c.Request.Context(), req.Certificates, issuer, req.TransactionHash)
	} else {
		result, err = h.issuance.IssueBatch(c.Request.Context(), req.Certificates, issuer)
	}
	if err != nil {
		h.respondIssueError(c, issuer, err)
		return
	}

	h.logger.Info("Certificates issued",
		zap.String("institute_id", issuer.ID),
		zap.Int("count", result.Count),
		zap.String("tx", result.TransactionHash))

	c.JSON(http.StatusOK, result)
}

// IssueCertificatesCSV issues a batch of certificates from an uploaded CSV file
// @Summary Issue certificates from CSV
// @Description Parse an uploaded CSV of certificate details and issue the batch
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} service.IssueResult
// @Router /institute/issue-certificate/csv [post]
func (h *CertificateHandler) IssueCertificatesCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload required"})
		return
	}
	defer file.Close()

	records, err := parseCertificateCSV(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issuer := issuerFromContext(c)
	result, err := h.issuance.IssueBatch(c.Request.Context(), records, issuer)
	if err != nil {
		h.respondIssueError(c, issuer, err)
		return
	}

	h.logger.Info("Certificates issued from CSV",
		zap.String("institute_id", issuer.ID),
		zap.Int("count", result.Count),
		zap.String("tx", result.TransactionHash))

	c.JSON(http.StatusOK, result)
}

// ListCertificates lists the certificates issued by the authenticated institute
// @Summary List certificates
// @Description List certificates issued by the authenticated institute
// @Produce json
// @Success 200 {array} models.Certificate
// @Router /institute/certificates [get]
func (h *CertificateHandler) ListCertificates(c *gin.Context) {
	issuer := issuerFromContext(c)

	certificates, err := h.issuance.ListCertificates(issuer.ID)
	if err != nil {
		h.logger.Error("Failed to list certificates", zap.String("institute_id", issuer.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list certificates"})
		return
	}
	if certificates == nil {
		certificates = []*models.Certificate{}
	}

	c.JSON(http.StatusOK, certificates)
}

func (h *CertificateHandler) respondIssueError(c *gin.Context, issuer service.Issuer, err error) {
	var recErr *service.ReconciliationError
	if errors.As(err, &recErr) {
		// The batch is anchored; the client can replay persistence with
		// the same records and this transaction hash
		h.logger.Error("Issuance persisted on ledger but not locally",
			zap.String("institute_id", issuer.ID),
			zap.String("tx", recErr.TransactionHash),
			zap.Error(recErr.Err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":           "certificates anchored on ledger but local persistence failed",
			"transactionHash": recErr.TransactionHash,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrDuplicateCertificate):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrNotApproved):
		status = http.StatusForbidden
	case errors.Is(err, ledger.ErrDeclined):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, ledger.ErrNoSigner):
		status = http.StatusServiceUnavailable
	case errors.Is(err, ledger.ErrReverted):
		status = http.StatusBadGateway
	case strings.Contains(err.Error(), "certificate"):
		status = http.StatusBadRequest
	}

	h.logger.Warn("Issuance failed", zap.String("institute_id", issuer.ID), zap.Error(err))
	c.JSON(status, gin.H{"error": err.Error()})
}

func issuerFromContext(c *gin.Context) service.Issuer {
	return service.Issuer{
		ID:    c.GetString("institute_id"),
		Name:  c.GetString("institute_name"),
		Code:  c.GetString("institute_code"),
		Email: c.GetString("institute_email"),
	}
}

var csvColumns = []string{"certificateNo", "dateofIssue", "name", "enrolmentNo", "graduationYear", "degree"}

// parseCertificateCSV reads certificate records from CSV. The header row must
// name the six required columns; a department column is optional. Column
// order is free.
func parseCertificateCSV(r io.Reader) ([]fingerprint.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}
	for _, col := range csvColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("CSV is missing required column %q", col)
		}
	}

	field := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []fingerprint.Record
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		record := fingerprint.Record{
			CertificateNo:  field(row, "certificateNo"),
			DateOfIssue:    field(row, "dateofIssue"),
			Name:           field(row, "name"),
			EnrolmentNo:    field(row, "enrolmentNo"),
			GraduationYear: field(row, "graduationYear"),
			Degree:         field(row, "degree"),
			Department:     field(row, "department"),
		}
		if err := record.Validate(); err != nil {
			return nil, fmt.Errorf("CSV line %d: %w", line, err)
		}
		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("CSV contains no certificate rows")
	}
	return records, nil
}
