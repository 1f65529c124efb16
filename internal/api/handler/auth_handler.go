package handler

import (
	"github.com/gin-gonic/gin"

	"schoolfest/backend/internal/dto"
	"schoolfest/backend/internal/service"
	"schoolfest/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	errs    errorRenderer
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService, errs errorRenderer) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, errs: errs}
}

// Login 管理员登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.invalid(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	response.OK(c, result)
}
