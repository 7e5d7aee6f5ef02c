package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kutechnest/backend/internal/model"
	"kutechnest/backend/internal/service"
	"kutechnest/backend/pkg/jwt"
	"kutechnest/backend/pkg/response"
)

// 上下文键
const (
	ContextKeyPrincipal = "principal"
	ContextKeyAccountID = "account_id"
	ContextKeyTokenJTI  = "token_jti"
	ContextKeyTokenExp  = "token_exp"
)

// TokenBlacklist 已注销 Access Token 的 jti 查询
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// PrincipalResolver 按账号解析调用方（ProfileService 实现）
type PrincipalResolver interface {
	Resolve(ctx context.Context, accountID string) (*service.Principal, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token，
// 检查黑名单后每个请求解析一次 Principal 注入上下文。
// blacklist 为 nil 时跳过黑名单检查（Redis 不可用降级）
func JWTAuth(jwtMgr *jwt.Manager, blacklist TokenBlacklist, resolver PrincipalResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, 10002, "缺少或无效的认证头")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		if err != nil {
			msg := "Token 无效"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token 已过期"
			}
			response.Unauthorized(c, 10002, msg)
			c.Abort()
			return
		}
		if claims.TokenType != jwt.TokenTypeAccess {
			response.Unauthorized(c, 10002, "Token 类型无效")
			c.Abort()
			return
		}

		if blacklist != nil {
			blocked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err != nil {
				logger.Warn("查询 Token 黑名单失败，降级放行", zap.Error(err))
			} else if blocked {
				response.Unauthorized(c, 10002, "Token 已注销")
				c.Abort()
				return
			}
		}

		principal, err := resolver.Resolve(c.Request.Context(), claims.AccountID)
		if err != nil {
			if errors.Is(err, service.ErrAccountNotFound) {
				response.Unauthorized(c, 10002, "账号不存在")
			} else {
				logger.Error("解析调用方失败", zap.String("account_id", claims.AccountID), zap.Error(err))
				response.InternalError(c)
			}
			c.Abort()
			return
		}
		if !principal.Account.IsActive {
			response.Forbidden(c, service.ErrAccountInactive.Code, service.ErrAccountInactive.Message)
			c.Abort()
			return
		}

		c.Set(ContextKeyPrincipal, principal)
		c.Set(ContextKeyAccountID, claims.AccountID)
		c.Set(ContextKeyTokenJTI, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ContextKeyTokenExp, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// OptionalAuth 可选认证：携带有效 Token 时注入 Principal，否则按匿名继续
func OptionalAuth(jwtMgr *jwt.Manager, blacklist TokenBlacklist, resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		claims, err := jwtMgr.ParseToken(token)
		if err != nil || claims.TokenType != jwt.TokenTypeAccess {
			c.Next()
			return
		}
		if blacklist != nil {
			if blocked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && blocked {
				c.Next()
				return
			}
		}
		if principal, err := resolver.Resolve(c.Request.Context(), claims.AccountID); err == nil && principal.Account.IsActive {
			c.Set(ContextKeyPrincipal, principal)
			c.Set(ContextKeyAccountID, claims.AccountID)
		}
		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前调用方是否具有指定角色之一；service 层仍会再次校验
func RoleAuth(allowedRoles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(ContextKeyPrincipal)
		principal, ok := v.(*service.Principal)
		if !exists || !ok || principal == nil {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if principal.Role == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
