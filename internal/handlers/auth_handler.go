package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pgstays/pg-booking-backend/internal/middleware"
	"github.com/pgstays/pg-booking-backend/internal/models"
	"github.com/pgstays/pg-booking-backend/internal/services"
	"github.com/pgstays/pg-booking-backend/internal/utils"
)

// AuthHandler handles phone-based login and token lifecycle
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login logs a user in by phone and role
// @Summary Login with phone number
// @Description Find or create the account for the phone/role pair and issue tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.AuthResponse "Tokens issued"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	device := utils.ParseUserAgent(utils.GetUserAgent(c))
	ip := utils.GetRealIP(c)

	resp, err := h.authService.Login(&req, device, ip)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Refresh rotates the access/refresh token pair
// @Summary Refresh tokens
// @Description Exchange a valid refresh token for a new token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest true "Refresh request"
// @Success 200 {object} models.AuthResponse "New tokens issued"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 403 {object} map[string]interface{} "Refresh token rejected"
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	device := utils.ParseUserAgent(utils.GetUserAgent(c))
	ip := utils.GetRealIP(c)

	resp, err := h.authService.Refresh(req.RefreshToken, device, ip)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout revokes all active sessions for the authenticated user
// @Summary Logout
// @Description Revoke every active session for the current user
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{} "Sessions revoked"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Security BearerAuth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.authService.Logout(userCtx.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
