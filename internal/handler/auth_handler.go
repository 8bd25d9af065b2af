package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stationgames/trivia-backend/internal/model"
	"github.com/stationgames/trivia-backend/internal/response"
	"github.com/stationgames/trivia-backend/internal/service"
	"github.com/stationgames/trivia-backend/internal/validator"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login godoc
// POST /api/v1/admin/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, err := h.authService.Login(req.Password)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"token": token})
}
