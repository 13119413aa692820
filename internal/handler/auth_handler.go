package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/onursal82-hash/Vortexbot/internal/model"
	"github.com/onursal82-hash/Vortexbot/internal/service"
	"github.com/onursal82-hash/Vortexbot/internal/util"
)

// AuthHandler handles workspace registration and login
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.SendError(c, util.ErrValidation(err.Error()))
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendCreated(c, resp, "Workspace created")
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.SendError(c, util.ErrValidation(err.Error()))
		return
	}

	resp, err := h.authService.Login(&req)
	if err != nil {
		util.SendError(c, err)
		return
	}

	util.SendSuccess(c, resp)
}
