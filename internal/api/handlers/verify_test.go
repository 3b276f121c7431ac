package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/educhainx/certledger/internal/fingerprint"
	"github.com/educhainx/certledger/internal/ledger"
	"github.com/educhainx/certledger/internal/service"
)

func setupTestVerifyHandler(t *testing.T, ldg ledger.Ledger, seed bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	db := testDB(t)
	cfg := testConfig()

	if seed {
		resp := setupCompleted(t, db, cfg)
		issuance := service.NewIssuanceService(db, ldg)
		_, err := issuance.IssueBatch(context.Background(), []fingerprint.Record{{
			CertificateNo:  "CERT-100",
			DateOfIssue:    "2024-03-05",
			Name:           "Asha Rao",
			EnrolmentNo:    "ENR001",
			GraduationYear: "2024",
			Degree:         "B.Tech",
		}}, service.Issuer{
			ID:    resp.Institute.ID,
			Name:  resp.Institute.Name,
			Code:  resp.Institute.Code,
			Email: resp.Institute.Email,
		})
		require.NoError(t, err)
	}

	handler := NewVerifyHandler(service.NewVerificationService(db, ldg), testLogger())
	router := gin.New()
	router.POST("/verifier/verify", handler.VerifyCertificate)
	return router
}

func verifyBody() gin.H {
	return gin.H{
		"certificateNo":  "CERT-100",
		"dateofIssue":    "2024-03-05",
		"name":           "Asha Rao",
		"enrolmentNo":    "ENR001",
		"graduationYear": "2024",
		"degree":         "B.Tech",
	}
}

func TestVerifyCertificate(t *testing.T) {
	ldg := new(mockLedger)
	ldg.On("StoreCertificateHashes", mock.Anything, mock.Anything, mock.Anything).
		Return("0xabc", nil)
	ldg.On("VerifyFingerprint", mock.Anything, mock.Anything).
		Return(false, "", nil)

	router := setupTestVerifyHandler(t, ldg, true)

	t.Run("Issued certificate is valid", func(t *testing.T) {
		w := jsonRequest(t, router, http.MethodPost, "/verifier/verify", verifyBody())
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"valid":true`)
		assert.Contains(t, w.Body.String(), "NIT-042")
	})

	t.Run("Tampered details are invalid", func(t *testing.T) {
		body := verifyBody()
		body["degree"] = "M.Tech"
		w := jsonRequest(t, router, http.MethodPost, "/verifier/verify", body)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"valid":false`)
	})

	t.Run("Case differences still verify", func(t *testing.T) {
		body := verifyBody()
		body["name"] = "ASHA RAO"
		w := jsonRequest(t, router, http.MethodPost, "/verifier/verify", body)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"valid":true`)
	})

	t.Run("Missing fields rejected", func(t *testing.T) {
		body := verifyBody()
		delete(body, "enrolmentNo")
		w := jsonRequest(t, router, http.MethodPost, "/verifier/verify", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Bare fingerprint lookup", func(t *testing.T) {
		hash := fingerprint.Compute(fingerprint.Record{
			CertificateNo:  "CERT-100",
			DateOfIssue:    "2024-03-05",
			Name:           "Asha Rao",
			EnrolmentNo:    "ENR001",
			GraduationYear: "2024",
			Degree:         "B.Tech",
		})
		w := jsonRequest(t, router, http.MethodPost, "/verifier/verify", gin.H{
			"providedHash": hash.Hex(),
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"valid":true`)
	})

	t.Run("Malformed fingerprint rejected", func(t *testing.T) {
		w := jsonRequest(t, router, http.MethodPost, "/verifier/verify", gin.H{
			"providedHash": "abc123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestVerifyCertificateLedgerFallback(t *testing.T) {
	record := fingerprint.Record{
		CertificateNo:  "CERT-900",
		DateOfIssue:    "2023-06-01",
		Name:           "Lena Fischer",
		EnrolmentNo:    "ENR900",
		GraduationYear: "2023",
		Degree:         "M.Sc",
	}
	hash := fingerprint.Compute(record)

	t.Run("Anchored by another deployment", func(t *testing.T) {
		ldg := new(mockLedger)
		ldg.On("VerifyFingerprint", mock.Anything, hash).
			Return(true, `{"issuedBy":"Another University"}`, nil)

		router := setupTestVerifyHandler(t, ldg, false)

		w := jsonRequest(t, router, http.MethodPost, "/verifier/verify", gin.H{
			"certificateNo":  record.CertificateNo,
			"dateofIssue":    record.DateOfIssue,
			"name":           record.Name,
			"enrolmentNo":    record.EnrolmentNo,
			"graduationYear": record.GraduationYear,
			"degree":         record.Degree,
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"valid":true`)
		assert.Contains(t, w.Body.String(), "Another University")
	})

	t.Run("Registry outage surfaces as bad gateway", func(t *testing.T) {
		ldg := new(mockLedger)
		ldg.On("VerifyFingerprint", mock.Anything, hash).
			Return(false, "", errors.New("connection refused"))

		router := setupTestVerifyHandler(t, ldg, false)

		w := jsonRequest(t, router, http.MethodPost, "/verifier/verify", gin.H{
			"certificateNo":  record.CertificateNo,
			"dateofIssue":    record.DateOfIssue,
			"name":           record.Name,
			"enrolmentNo":    record.EnrolmentNo,
			"graduationYear": record.GraduationYear,
			"degree":         record.Degree,
		})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}
