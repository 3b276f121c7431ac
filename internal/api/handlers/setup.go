// Package handlers provides HTTP request handlers for the CertLedger API.
// It includes handlers for setup, institute authentication, certificate
// issuance, and public verification, implementing RESTful endpoints with
// request validation.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/educhainx/certledger/internal/service"
)

// SetupHandler handles setup operations
type SetupHandler struct {
	institutes *service.InstituteService
	logger     *zap.Logger
}

// NewSetupHandler creates a new setup handler
func NewSetupHandler(institutes *service.InstituteService, logger *zap.Logger) *SetupHandler {
	return &SetupHandler{
		institutes: institutes,
		logger:     logger,
	}
}

// GetStatus checks if initial setup has been completed.
// @Summary Check setup status
// @Description Check if initial setup has been completed
// @Success 200 {object} map[string]bool
// @Router /setup/status [get]
func (h *SetupHandler) GetStatus(c *gin.Context) {
	isComplete, err := h.institutes.IsSetupComplete()
	if err != nil {
		h.logger.Error("Failed to check setup status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check setup status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"setup_complete": isComplete,
	})
}

// SetupRequest represents initial setup request
type SetupRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8"`
	InstituteName    string `json:"instituteName" binding:"required"`
	InstituteCode    string `json:"instituteCode" binding:"required"`
	LedgerSigningKey string `json:"ledgerSigningKey"`
}

// PerformSetup handles initial setup
// @Summary Perform initial setup
// @Description Create the admin institute and generate the master key
// @Accept json
// @Produce json
// @Param request body SetupRequest true "Setup request"
// @Success 200 {object} map[string]string
// @Router /setup [post]
func (h *SetupHandler) PerformSetup(c *gin.Context) {
	var req SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.institutes.PerformInitialSetup(&service.SetupRequest{
		Email:            req.Email,
		Password:         req.Password,
		InstituteName:    req.InstituteName,
		InstituteCode:    req.InstituteCode,
		LedgerSigningKey: req.LedgerSigningKey,
	})
	if err != nil {
		h.logger.Error("Setup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("Initial setup completed",
		zap.String("email", req.Email),
		zap.String("institute", req.InstituteName))

	c.JSON(http.StatusOK, gin.H{
		"message":    "Setup completed successfully",
		"master_key": result.MasterKey,
		"token":      result.Token,
	})
}
