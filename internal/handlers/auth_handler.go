package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"property-service/internal/models"
	"property-service/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login authenticates a tenant portal session
// @Summary Tenant portal login
// @Description Authenticates a tenant by phone number and portal secret and issues a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.TenantLoginRequest true "Login credentials"
// @Success 200 {object} models.TenantLoginResult
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.TenantLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error(), nil)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			ErrorResponse(c, http.StatusUnauthorized, "Invalid username or password", nil)
		case errors.Is(err, services.ErrCredentialLocked):
			ErrorResponse(c, http.StatusLocked, "Account temporarily locked, try again later", nil)
		case errors.Is(err, services.ErrPortalAccessRevoked):
			ErrorResponse(c, http.StatusForbidden, "Portal access is no longer available for this account", nil)
		default:
			ErrorResponse(c, http.StatusInternalServerError, "Login failed", err)
		}
		return
	}

	SuccessResponse(c, http.StatusOK, "Login successful", result)
}
