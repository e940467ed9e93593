package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agape-academy/academy-api/internal/service"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
	"github.com/agape-academy/academy-api/pkg/response"
)

// AuthHandler exposes the identity endpoint and the dev login flow.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Me godoc
// @Summary Current identity
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	response.OK(c, "Identity retrieved successfully", identityFromContext(c))
}

type devLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DevLogin godoc
// @Summary Dev login (non-production)
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body devLoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /dev/login [post]
func (h *AuthHandler) DevLogin(c *gin.Context) {
	var req devLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	token, identity, err := h.auth.DevLogin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Logged in successfully", gin.H{"token": token, "user": identity})
}
