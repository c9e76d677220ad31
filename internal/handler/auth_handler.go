package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-timetabler/internal/dto"
	"github.com/noah-isme/campus-timetabler/internal/service"
	appErrors "github.com/noah-isme/campus-timetabler/pkg/errors"
	"github.com/noah-isme/campus-timetabler/pkg/response"
)

// AuthHandler exchanges the admin secret for bearer tokens.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Token issues an admin bearer token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid token payload"))
		return
	}
	token, expiresAt, err := h.service.IssueToken(req.Secret)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.TokenResponse{Token: token, ExpiresAt: expiresAt})
}
