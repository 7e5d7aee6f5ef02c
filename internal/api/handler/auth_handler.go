package handler

import (
	"github.com/gin-gonic/gin"

	"kutechnest/backend/internal/dto"
	"kutechnest/backend/internal/service"
	"kutechnest/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register 邮箱注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// Login 邮箱密码登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// GoogleLogin Google 身份令牌登录
// POST /api/v1/auth/google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req dto.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Assertion() == "" {
		response.ValidationFailed(c, map[string]string{"credential": "必填"})
		return
	}

	result, err := h.authSvc.GoogleLogin(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// GoogleAuthURL 返回 Google 授权地址，role 经 state 带到回调
// GET /api/v1/auth/google/login
func (h *AuthHandler) GoogleAuthURL(c *gin.Context) {
	var q dto.GoogleAuthURLQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authSvc.GoogleAuthURL(q.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// GoogleCallback Google 授权码回调
// GET /api/v1/auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	var req dto.GoogleCallbackRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authSvc.GoogleCallback(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.Refresh)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 登出全部会话
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	jti, exp := currentToken(c)
	if err := h.authSvc.Logout(c.Request.Context(), p.AccountID(), jti, exp); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}

// Me 当前账号信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	response.OK(c, h.authSvc.GetCurrentUser(c.Request.Context(), p))
}

// ChangePassword 修改密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), p.AccountID(), &req); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}
