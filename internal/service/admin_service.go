package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"kutechnest/backend/internal/dto"
	"kutechnest/backend/internal/model"
	"kutechnest/backend/internal/repository"
)

// AdminService 审核流程：仅管理员可切换档案的 pending ↔ approved
//
// 权限在路由中间件校验一次，service 在任何写入前再校验一次
type AdminService interface {
	SetStudentApproval(ctx context.Context, p *Principal, accountID string, approve bool) (*model.Student, error)
	SetCompanyApproval(ctx context.Context, p *Principal, accountID string, approve bool) (*model.Company, error)
	// SetAccountActive 停用只改标志位并使现有 Refresh Token 失效，从不删除账号
	SetAccountActive(ctx context.Context, p *Principal, accountID string, active bool) (*model.Account, error)
	ListStudents(ctx context.Context, p *Principal, req *dto.ReviewListRequest) ([]model.Student, int64, error)
	ListCompanies(ctx context.Context, p *Principal, req *dto.ReviewListRequest) ([]model.Company, int64, error)
}

type adminService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAdminService 创建 AdminService 实例
func NewAdminService(repo *repository.Repository, logger *zap.Logger) AdminService {
	return &adminService{repo: repo, logger: logger}
}

func (s *adminService) SetStudentApproval(ctx context.Context, p *Principal, accountID string, approve bool) (*model.Student, error) {
	if !p.IsAdmin() {
		return nil, ErrAdminOnly
	}

	student, err := s.repo.Student.GetByAccountID(ctx, accountID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生档案失败", zap.String("account_id", accountID), zap.Error(err))
		return nil, err
	}

	if student.IsApproved != approve {
		if err := s.repo.Student.SetApproved(ctx, student.StudentID, approve); err != nil {
			s.logger.Error("更新学生审核状态失败", zap.String("student_id", student.StudentID), zap.Error(err))
			return nil, err
		}
		student.IsApproved = approve
	}

	s.logger.Info("学生审核状态已更新",
		zap.String("admin_id", p.AccountID()),
		zap.String("account_id", accountID),
		zap.Bool("approved", approve),
	)
	return student, nil
}

func (s *adminService) SetCompanyApproval(ctx context.Context, p *Principal, accountID string, approve bool) (*model.Company, error) {
	if !p.IsAdmin() {
		return nil, ErrAdminOnly
	}

	company, err := s.repo.Company.GetByAccountID(ctx, accountID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCompanyNotFound
		}
		s.logger.Error("查询企业档案失败", zap.String("account_id", accountID), zap.Error(err))
		return nil, err
	}

	if company.IsApproved != approve {
		if err := s.repo.Company.SetApproved(ctx, company.CompanyID, approve); err != nil {
			s.logger.Error("更新企业审核状态失败", zap.String("company_id", company.CompanyID), zap.Error(err))
			return nil, err
		}
		company.IsApproved = approve
	}

	s.logger.Info("企业审核状态已更新",
		zap.String("admin_id", p.AccountID()),
		zap.String("account_id", accountID),
		zap.Bool("approved", approve),
	)
	return company, nil
}

func (s *adminService) SetAccountActive(ctx context.Context, p *Principal, accountID string, active bool) (*model.Account, error) {
	if !p.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if !active && accountID == p.AccountID() {
		return nil, ErrSelfDeactivate
	}

	if err := s.repo.Account.SetActive(ctx, accountID, active); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrAccountNotFound
		}
		s.logger.Error("更新账号状态失败", zap.String("account_id", accountID), zap.Error(err))
		return nil, err
	}

	account, err := s.repo.Account.GetByID(ctx, accountID)
	if err != nil {
		s.logger.Error("查询账号失败", zap.String("account_id", accountID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("账号状态已更新",
		zap.String("admin_id", p.AccountID()),
		zap.String("account_id", accountID),
		zap.Bool("active", active),
	)
	return account, nil
}

func (s *adminService) ListStudents(ctx context.Context, p *Principal, req *dto.ReviewListRequest) ([]model.Student, int64, error) {
	if !p.IsAdmin() {
		return nil, 0, ErrAdminOnly
	}
	students, total, err := s.repo.Student.List(ctx, reviewFilter(req), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询学生审核队列失败", zap.Error(err))
		return nil, 0, err
	}
	return students, total, nil
}

func (s *adminService) ListCompanies(ctx context.Context, p *Principal, req *dto.ReviewListRequest) ([]model.Company, int64, error) {
	if !p.IsAdmin() {
		return nil, 0, ErrAdminOnly
	}
	companies, total, err := s.repo.Company.List(ctx, reviewFilter(req), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询企业审核队列失败", zap.Error(err))
		return nil, 0, err
	}
	return companies, total, nil
}

func reviewFilter(req *dto.ReviewListRequest) repository.ReviewFilter {
	return repository.ReviewFilter{
		Approved: req.Approved,
		Search:   strings.TrimSpace(req.Search),
	}
}
