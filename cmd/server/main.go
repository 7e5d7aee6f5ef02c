package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"

	"kutechnest/backend/config"
	"kutechnest/backend/internal/api/handler"
	"kutechnest/backend/internal/api/router"
	"kutechnest/backend/internal/identity"
	"kutechnest/backend/internal/moderation"
	"kutechnest/backend/internal/repository"
	"kutechnest/backend/internal/service"
	"kutechnest/backend/pkg/database"
	"kutechnest/backend/pkg/jwt"
	applogger "kutechnest/backend/pkg/logger"
	"kutechnest/backend/pkg/metrics"
	"kutechnest/backend/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("moderation", cfg.Moderation.Enabled),
	)

	// 3. 连接数据库并执行迁移
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：失败时黑名单与限流降级关闭）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与限流不可用", zap.Error(err))
		rdb = nil
	}

	// 5. JWT / 指标 / 身份校验 / 内容审核
	jwtMgr := jwt.NewManager(&cfg.Auth)
	m := metrics.New()

	verifier, err := identity.NewGoogleVerifier(context.Background())
	if err != nil {
		logger.Fatal("初始化 Google 身份校验失败", zap.Error(err))
	}

	var moderator moderation.Moderator = moderation.Passthrough{}
	if cfg.Moderation.Enabled {
		moderator = moderation.NewLLMModerator(&cfg.Moderation, logger)
	} else {
		logger.Warn("内容审核已关闭，所有内容直接放行")
	}
	gate := moderation.NewGate(moderator, cfg.Moderation.Threshold, m, logger)

	var oauth identity.CodeExchanger
	if g := cfg.Auth.Google; g.OAuthEnabled() {
		oauth = identity.NewGoogleOAuth(g.ClientIDs[0], g.ClientSecret, g.RedirectURL, google.Endpoint)
		logger.Info("Google 授权码登录已启用", zap.String("redirect_url", g.RedirectURL))
	}

	// 6. 依赖注入: Repository → Service → Handler
	var (
		blacklist service.TokenBlacklist
		deps      = router.Deps{JWT: jwtMgr, Metrics: m, DB: db}
	)
	if rdb != nil {
		blacklist = rdb
		deps.Blacklist = rdb
		deps.Limiter = rdb
	}

	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, verifier, oauth, gate, blacklist, m, logger)
	h := handler.NewHandler(svc)
	deps.Resolver = svc.Profile

	// 7. 初始化路由
	engine := router.Setup(cfg, h, deps, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Warn("关闭数据库连接失败", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
