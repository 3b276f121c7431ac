package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/educhainx/certledger/internal/database/models"
	"github.com/educhainx/certledger/internal/service"
)

// AuthHandler handles institute authentication operations
type AuthHandler struct {
	institutes *service.InstituteService
	logger     *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(institutes *service.InstituteService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		institutes: institutes,
		logger:     logger,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates an institute with email and password
// @Summary Institute login
// @Description Authenticate an institute and return a JWT token
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]string
// @Router /institute/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.institutes.Authenticate(req.Email, req.Password)
	if err != nil {
		h.logger.Warn("Login failed", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	h.logger.Info("Institute logged in", zap.String("email", req.Email))

	c.JSON(http.StatusOK, gin.H{
		"token": token,
	})
}

// GetNonce issues a login challenge for a wallet address
// @Summary Wallet login challenge
// @Description Issue a single-use nonce message for the wallet to sign
// @Produce json
// @Param address query string true "Wallet address"
// @Success 200 {object} map[string]string
// @Router /institute/nonce [get]
func (h *AuthHandler) GetNonce(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address query parameter required"})
		return
	}

	message, err := h.institutes.WalletNonce(address)
	if err != nil {
		h.logger.Warn("Nonce request failed", zap.String("address", address), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}

// WalletLoginRequest represents a signed wallet login challenge
type WalletLoginRequest struct {
	Address   string `json:"address" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// WalletLogin authenticates an institute with a signed nonce challenge
// @Summary Wallet login
// @Description Verify the signed nonce and return a JWT token
// @Accept json
// @Produce json
// @Param request body WalletLoginRequest true "Signed challenge"
// @Success 200 {object} map[string]string
// @Router /institute/wallet-login [post]
func (h *AuthHandler) WalletLogin(c *gin.Context) {
	var req WalletLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.institutes.WalletLogin(c.Request.Context(), req.Address, req.Signature)
	if err != nil {
		h.logger.Warn("Wallet login failed", zap.String("address", req.Address), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("Institute logged in via wallet", zap.String("address", req.Address))

	c.JSON(http.StatusOK, gin.H{
		"token": token,
	})
}

// GetCurrentInstitute returns the currently authenticated institute
// @Summary Get current institute
// @Description Get the profile of the authenticated institute
// @Success 200 {object} models.Institute
// @Router /institute/me [get]
func (h *AuthHandler) GetCurrentInstitute(c *gin.Context) {
	instituteID := c.GetString("institute_id")

	inst, err := h.institutes.GetInstitute(instituteID)
	if err != nil {
		h.logger.Error("Failed to get institute", zap.String("id", instituteID), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "institute not found"})
		return
	}

	c.JSON(http.StatusOK, instituteProfile(inst))
}

// ProfileRequest represents a profile completion request
type ProfileRequest struct {
	Name          string `json:"name"`
	Code          string `json:"code"`
	WalletAddress string `json:"walletAddress"`
	PostalAddress string `json:"postalAddress"`
}

// UpdateProfile completes or updates the institute profile
// @Summary Update institute profile
// @Description Update the authenticated institute's profile fields
// @Accept json
// @Produce json
// @Param request body ProfileRequest true "Profile fields"
// @Success 200 {object} models.Institute
// @Router /institute/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	instituteID := c.GetString("institute_id")
	inst, err := h.institutes.UpdateProfile(instituteID, &service.ProfileRequest{
		Name:          req.Name,
		Code:          req.Code,
		WalletAddress: req.WalletAddress,
		PostalAddress: req.PostalAddress,
	})
	if err != nil {
		h.logger.Error("Failed to update profile", zap.String("id", instituteID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("Institute profile updated", zap.String("id", instituteID))

	c.JSON(http.StatusOK, instituteProfile(inst))
}

// instituteProfile shapes an institute row for API responses. The password
// hash never leaves the server.
func instituteProfile(inst *models.Institute) gin.H {
	return gin.H{
		"id":              inst.ID,
		"email":           inst.Email,
		"name":            inst.Name,
		"code":            inst.Code,
		"walletAddress":   inst.WalletAddress.String,
		"postalAddress":   inst.PostalAddress.String,
		"profileComplete": inst.ProfileComplete,
		"role":            inst.Role,
	}
}
