package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"kutechnest/backend/internal/dto"
	"kutechnest/backend/internal/model"
	"kutechnest/backend/internal/repository"
	pkgerrors "kutechnest/backend/pkg/errors"
)

// ApplicationService 投递业务接口
//
// 状态迁移规则：
//   - 学生：仅本人投递，仅可撤回（withdrawn）
//   - 企业：本企业职位的投递，除 withdrawn 外受迁移表约束
//   - 管理员：任意合法状态
type ApplicationService interface {
	Apply(ctx context.Context, p *Principal, postID string, req *dto.ApplyRequest) (*dto.ApplicationResponse, error)
	// Prefill 返回投递表单预填数据，包含是否已投递
	Prefill(ctx context.Context, p *Principal, postID string) (*dto.PrefillResponse, error)
	// List 按角色过滤：admin 全部 / student 本人 / company 本企业职位 / user 空
	List(ctx context.Context, p *Principal, req *dto.ApplicationListRequest) ([]dto.ApplicationResponse, int64, error)
	Get(ctx context.Context, p *Principal, id string) (*dto.ApplicationResponse, error)
	UpdateStatus(ctx context.Context, p *Principal, id string, req *dto.UpdateStatusRequest) (*dto.ApplicationResponse, error)
}

type applicationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewApplicationService 创建 ApplicationService 实例
func NewApplicationService(repo *repository.Repository, logger *zap.Logger) ApplicationService {
	return &applicationService{repo: repo, logger: logger}
}

// ────────────────────── Apply ──────────────────────

func (s *applicationService) Apply(ctx context.Context, p *Principal, postID string, req *dto.ApplyRequest) (*dto.ApplicationResponse, error) {
	student, err := requireStudent(p)
	if err != nil {
		return nil, err
	}
	if !student.IsApproved {
		return nil, ErrNotApproved
	}

	post, err := s.getVisiblePost(ctx, postID)
	if err != nil {
		return nil, err
	}

	// 快速路径，唯一约束兜底
	if _, err := s.repo.Application.GetByPostAndStudent(ctx, post.PostID, student.StudentID); err == nil {
		return nil, ErrAlreadyApplied
	} else if !repository.IsNotFound(err) {
		s.logger.Error("查询投递记录失败", zap.String("post_id", postID), zap.Error(err))
		return nil, err
	}

	app := &model.Application{
		PostID:      post.PostID,
		StudentID:   student.StudentID,
		CoverLetter: strings.TrimSpace(req.CoverLetter),
		ResumeURL:   strings.TrimSpace(req.ResumeURL),
		Status:      model.StatusSubmitted,
	}
	if app.CoverLetter == "" {
		app.CoverLetter = student.CoverLetterDefault
	}
	if app.ResumeURL == "" {
		app.ResumeURL = defaultResume(student)
	}

	if err := s.repo.Application.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyApplied
		}
		s.logger.Error("创建投递记录失败",
			zap.String("post_id", postID),
			zap.String("student_id", student.StudentID),
			zap.Error(err),
		)
		return nil, err
	}
	if app.Version == 0 {
		app.Version = 1
	}
	app.Post = post
	app.Student = student

	s.logger.Info("投递成功",
		zap.String("application_id", app.ApplicationID),
		zap.String("post_id", post.PostID),
		zap.String("student_id", student.StudentID),
	)
	resp := dto.NewApplicationResponse(app)
	return &resp, nil
}

func (s *applicationService) Prefill(ctx context.Context, p *Principal, postID string) (*dto.PrefillResponse, error) {
	student, err := requireStudent(p)
	if err != nil {
		return nil, err
	}
	post, err := s.getVisiblePost(ctx, postID)
	if err != nil {
		return nil, err
	}

	resp := &dto.PrefillResponse{
		PostID:      post.PostID,
		PostTitle:   post.Title,
		Name:        student.Name,
		Email:       student.Email,
		Phone:       student.Phone,
		CoverLetter: student.CoverLetterDefault,
		ResumeURL:   defaultResume(student),
	}
	if post.Company != nil {
		resp.CompanyName = post.Company.Name
	}

	existing, err := s.repo.Application.GetByPostAndStudent(ctx, post.PostID, student.StudentID)
	switch {
	case err == nil:
		resp.AlreadyApplied = true
		resp.ApplicationID = existing.ApplicationID
		resp.ApplicationStatus = existing.Status
	case !repository.IsNotFound(err):
		s.logger.Error("查询投递记录失败", zap.String("post_id", postID), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// ────────────────────── Read ──────────────────────

func (s *applicationService) List(ctx context.Context, p *Principal, req *dto.ApplicationListRequest) ([]dto.ApplicationResponse, int64, error) {
	if req.Status != "" && !model.IsValidApplicationStatus(req.Status) {
		return nil, 0, ErrInvalidStatus
	}

	filter, ok := applicationScope(p)
	if !ok {
		return []dto.ApplicationResponse{}, 0, nil
	}
	filter.PostID = req.PostID
	filter.Status = req.Status

	apps, total, err := s.repo.Application.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询投递列表失败", zap.String("account_id", p.AccountID()), zap.Error(err))
		return nil, 0, err
	}

	results := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		results = append(results, dto.NewApplicationResponse(&apps[i]))
	}
	return results, total, nil
}

func (s *applicationService) Get(ctx context.Context, p *Principal, id string) (*dto.ApplicationResponse, error) {
	app, err := s.getApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewApplication(p, app) {
		return nil, ErrNotApplicationParty
	}
	resp := dto.NewApplicationResponse(app)
	return &resp, nil
}

// ────────────────────── Status ──────────────────────

func (s *applicationService) UpdateStatus(ctx context.Context, p *Principal, id string, req *dto.UpdateStatusRequest) (*dto.ApplicationResponse, error) {
	target := strings.TrimSpace(req.Status)
	if !model.IsValidApplicationStatus(target) {
		return nil, ErrInvalidStatus
	}

	app, err := s.getApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != app.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}
	if err := authorizeTransition(p, app, target); err != nil {
		return nil, err
	}

	from := app.Status
	app.Status = target
	if err := s.repo.Application.UpdateStatus(ctx, app); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, err
		}
		s.logger.Error("更新投递状态失败", zap.String("application_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("投递状态已更新",
		zap.String("application_id", id),
		zap.String("from", from),
		zap.String("to", target),
		zap.String("operator", p.AccountID()),
		zap.String("role", string(p.Role)),
	)
	resp := dto.NewApplicationResponse(app)
	return &resp, nil
}

// authorizeTransition 按调用方角色校验状态迁移
func authorizeTransition(p *Principal, app *model.Application, target string) error {
	if p.IsAdmin() {
		return nil
	}

	// 同一账号不会同时持有两类档案，按角色分派即可
	switch p.Role {
	case model.RoleStudent:
		if app.StudentID != p.Student.StudentID || target != model.StatusWithdrawn {
			return ErrStatusForbidden
		}
		if !model.CanTransition(app.Status, target) {
			return ErrInvalidTransition
		}
		return nil

	case model.RoleCompany:
		if !ownsApplicationPost(p, app) || target == model.StatusWithdrawn {
			return ErrStatusForbidden
		}
		if !model.CanTransition(app.Status, target) {
			return ErrInvalidTransition
		}
		return nil
	}
	return ErrStatusForbidden
}

// ── 辅助函数 ──

func (s *applicationService) getApplication(ctx context.Context, id string) (*model.Application, error) {
	app, err := s.repo.Application.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("查询投递记录失败", zap.String("application_id", id), zap.Error(err))
		return nil, err
	}
	return app, nil
}

// getVisiblePost 可投递的职位：存在、未删除且企业已审核
func (s *applicationService) getVisiblePost(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.repo.Post.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrPostNotFound
		}
		s.logger.Error("查询职位失败", zap.String("post_id", id), zap.Error(err))
		return nil, err
	}
	if post.Company != nil && !post.Company.IsApproved {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func requireStudent(p *Principal) (*model.Student, error) {
	if p == nil || p.Student == nil {
		return nil, ErrProfileNotFound
	}
	return p.Student, nil
}

// applicationScope 角色对应的列表过滤条件；ok=false 表示无可见记录
func applicationScope(p *Principal) (repository.ApplicationFilter, bool) {
	switch {
	case p.IsAdmin():
		return repository.ApplicationFilter{}, true
	case p.Role == model.RoleCompany:
		return repository.ApplicationFilter{CompanyID: p.Company.CompanyID}, true
	case p.Role == model.RoleStudent:
		return repository.ApplicationFilter{StudentID: p.Student.StudentID}, true
	}
	return repository.ApplicationFilter{}, false
}

func canViewApplication(p *Principal, app *model.Application) bool {
	switch {
	case p.IsAdmin():
		return true
	case p.Role == model.RoleStudent:
		return app.StudentID == p.Student.StudentID
	case p.Role == model.RoleCompany:
		return ownsApplicationPost(p, app)
	}
	return false
}

func ownsApplicationPost(p *Principal, app *model.Application) bool {
	return p.Company != nil && app.Post != nil && app.Post.CompanyID == p.Company.CompanyID
}

func defaultResume(st *model.Student) string {
	if st.ResumeURL != "" {
		return st.ResumeURL
	}
	return st.CVURL
}
