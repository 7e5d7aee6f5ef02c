package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kutechnest/backend/config"
	"kutechnest/backend/internal/api/handler"
	"kutechnest/backend/internal/api/middleware"
	"kutechnest/backend/internal/model"
	"kutechnest/backend/pkg/jwt"
	"kutechnest/backend/pkg/metrics"
)

// Deps 路由依赖；Blacklist/Limiter 为 nil 时对应功能降级
type Deps struct {
	JWT       *jwt.Manager
	Resolver  middleware.PrincipalResolver
	Blacklist middleware.TokenBlacklist
	Limiter   middleware.RateLimiter
	Metrics   *metrics.Metrics
	DB        *gorm.DB
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/healthz", readiness(deps.DB))
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	jwtAuth := middleware.JWTAuth(deps.JWT, deps.Blacklist, deps.Resolver, logger)
	optionalAuth := middleware.OptionalAuth(deps.JWT, deps.Blacklist, deps.Resolver)
	authLimit := middleware.RateLimit(deps.Limiter, cfg.RateLimit.AuthLimit, cfg.RateLimit.AuthWindow)

	admin := middleware.RoleAuth(model.RoleAdmin)
	company := middleware.RoleAuth(model.RoleCompany)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，限流）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authLimit, h.Auth.Register)
			auth.POST("/login", authLimit, h.Auth.Login)
			auth.POST("/google", authLimit, h.Auth.GoogleLogin)
			auth.GET("/google/login", authLimit, h.Auth.GoogleAuthURL)
			auth.GET("/google/callback", authLimit, h.Auth.GoogleCallback)
			auth.POST("/refresh", authLimit, h.Auth.RefreshToken)
		}

		// 公开目录
		v1.GET("/posts", h.Post.List)
		v1.GET("/posts/choices", h.Post.Choices)
		v1.GET("/posts/:id", optionalAuth, h.Post.Get)
		v1.GET("/companies", h.Profile.ListCompanies)
		v1.GET("/companies/:id", h.Profile.GetPublicCompany)
		v1.GET("/companies/:id/posts", h.Post.ListByCompany)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(jwtAuth)
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 档案（角色由 service 层判定，未注册档案的账号也可调用）
			authorized.GET("/profile/me", h.Profile.GetProfile)
			authorized.POST("/students/register", h.Profile.RegisterStudent)
			authorized.GET("/students/me", h.Profile.GetStudent)
			authorized.PATCH("/students/me", h.Profile.UpdateStudent)
			authorized.POST("/companies/register", h.Profile.RegisterCompany)
			authorized.GET("/companies/me", h.Profile.GetCompany)
			authorized.PATCH("/companies/me", h.Profile.UpdateCompany)

			// 职位
			authorized.POST("/posts", company, h.Post.Create)
			authorized.PATCH("/posts/:id", company, h.Post.Update)
			authorized.DELETE("/posts/:id", company, h.Post.Delete)
			// 无学生档案返回 404，由 service 层判定
			authorized.POST("/posts/:id/apply", h.Application.Apply)

			// 投递
			applications := authorized.Group("/applications")
			{
				applications.GET("", h.Application.List)
				applications.GET("/export", middleware.RoleAuth(model.RoleAdmin, model.RoleCompany), h.Export.ExportApplications)
				applications.GET("/prefill/:post_id", h.Application.Prefill)
				applications.GET("/:id", h.Application.Get)
				applications.PATCH("/:id/status", h.Application.UpdateStatus)
			}

			// 审核与账号管理
			adminGroup := authorized.Group("/admin", admin)
			{
				adminGroup.GET("/students", h.Admin.ListStudents)
				adminGroup.GET("/companies", h.Admin.ListCompanies)
				adminGroup.PATCH("/students/:account_id/approve", h.Admin.ApproveStudent)
				adminGroup.PATCH("/companies/:account_id/approve", h.Admin.ApproveCompany)
				adminGroup.PATCH("/accounts/:account_id/active", h.Admin.SetAccountActive)
			}
		}
	}

	return r
}

// readiness 数据库可达才视为就绪
func readiness(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	}
}
