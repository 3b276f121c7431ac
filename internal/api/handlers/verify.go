package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/educhainx/certledger/internal/fingerprint"
	"github.com/educhainx/certledger/internal/service"
)

// VerifyHandler handles public certificate verification
type VerifyHandler struct {
	verification *service.VerificationService
	logger       *zap.Logger
}

// NewVerifyHandler creates a new verify handler
func NewVerifyHandler(verification *service.VerificationService, logger *zap.Logger) *VerifyHandler {
	return &VerifyHandler{
		verification: verification,
		logger:       logger,
	}
}

// VerifyRequest represents a verification request: either the full
// certificate details, or a bare fingerprint. When details are present they
// win and the fingerprint is recomputed server side.
type VerifyRequest struct {
	CertificateNo  string `json:"certificateNo"`
	DateOfIssue    string `json:"dateofIssue"`
	Name           string `json:"name"`
	EnrolmentNo    string `json:"enrolmentNo"`
	GraduationYear string `json:"graduationYear"`
	Degree         string `json:"degree"`
	Department     string `json:"department"`
	ProvidedHash   string `json:"providedHash"`
}

func (r VerifyRequest) record() fingerprint.Record {
	return fingerprint.Record{
		CertificateNo:  r.CertificateNo,
		DateOfIssue:    r.DateOfIssue,
		Name:           r.Name,
		EnrolmentNo:    r.EnrolmentNo,
		GraduationYear: r.GraduationYear,
		Degree:         r.Degree,
		Department:     r.Department,
	}
}

// VerifyCertificate verifies a certificate
// @Summary Verify certificate
// @Description Recompute the fingerprint from the submitted details (or take a bare fingerprint) and check the ledger
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Certificate details or fingerprint"
// @Success 200 {object} service.VerificationResult
// @Router /verifier/verify [post]
func (h *VerifyHandler) VerifyCertificate(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record := req.record()

	var result *service.VerificationResult
	var err error
	if err = record.Validate(); err == nil {
		result, err = h.verification.Verify(c.Request.Context(), record)
	} else if req.ProvidedHash != "" {
		result, err = h.verification.VerifyHash(c.Request.Context(), req.ProvidedHash)
	} else {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		if result == nil && isBadFingerprint(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Verification failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "verification is temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func isBadFingerprint(err error) bool {
	return strings.Contains(err.Error(), "invalid fingerprint")
}
