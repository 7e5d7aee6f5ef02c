package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"kutechnest/backend/internal/api/middleware"
	"kutechnest/backend/internal/service"
	"kutechnest/backend/pkg/response"
)

// MustGetPrincipal 从 Gin 上下文中提取 JWTAuth 注入的调用方。
// 未注入时写入 401 响应并返回 false，调用方应直接 return。
func MustGetPrincipal(c *gin.Context) (*service.Principal, bool) {
	p := OptionalPrincipal(c)
	if p == nil || p.Account == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return p, true
}

// OptionalPrincipal 匿名访问时返回 nil
func OptionalPrincipal(c *gin.Context) *service.Principal {
	v, exists := c.Get(middleware.ContextKeyPrincipal)
	if !exists {
		return nil
	}
	p, _ := v.(*service.Principal)
	return p
}

// currentToken 当前 Access Token 的 jti 与过期时间（用于登出拉黑）
func currentToken(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.ContextKeyTokenJTI)
	exp, _ := c.Get(middleware.ContextKeyTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}
