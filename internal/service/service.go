package service

import (
	"go.uber.org/zap"

	"kutechnest/backend/config"
	"kutechnest/backend/internal/identity"
	"kutechnest/backend/internal/repository"
	"kutechnest/backend/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	Profile     ProfileService
	Admin       AdminService
	Post        PostService
	Application ApplicationService
	Export      ExportService
}

// NewService 创建 Service 聚合
// oauth / blacklist / recorder 为 nil 时对应功能降级关闭
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	verifier identity.Verifier,
	oauth identity.CodeExchanger,
	gate ContentGate,
	blacklist TokenBlacklist,
	recorder AuthRecorder,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:        NewAuthService(cfg, repo, jwtMgr, verifier, oauth, blacklist, recorder, logger),
		Profile:     NewProfileService(repo, gate, logger),
		Admin:       NewAdminService(repo, logger),
		Post:        NewPostService(repo, gate, logger),
		Application: NewApplicationService(repo, logger),
		Export:      NewExportService(repo, logger),
	}
}
