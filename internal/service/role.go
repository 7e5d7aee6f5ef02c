package service

import (
	"context"

	"go.uber.org/zap"

	"kutechnest/backend/internal/model"
	"kutechnest/backend/internal/repository"
)

// Principal 当前请求的调用方：账号 + 解析后的角色 + 已加载的档案
// 由中间件在每个请求解析一次，显式传给 service
type Principal struct {
	Account *model.Account
	Role    model.Role
	Student *model.Student
	Company *model.Company
}

// AccountID 便捷访问
func (p *Principal) AccountID() string {
	if p == nil || p.Account == nil {
		return ""
	}
	return p.Account.AccountID
}

// IsAdmin 是否管理员
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == model.RoleAdmin
}

// ApprovalFlag 当前角色档案的审核状态；admin/user 返回 nil
func (p *Principal) ApprovalFlag() *bool {
	switch p.Role {
	case model.RoleCompany:
		v := p.Company.IsApproved
		return &v
	case model.RoleStudent:
		v := p.Student.IsApproved
		return &v
	}
	return nil
}

// ResolveRole 固定优先级：admin > company > student > user
func ResolveRole(account *model.Account, student *model.Student, company *model.Company) model.Role {
	switch {
	case account != nil && account.IsAdmin:
		return model.RoleAdmin
	case company != nil:
		return model.RoleCompany
	case student != nil:
		return model.RoleStudent
	default:
		return model.RoleUser
	}
}

// loadPrincipal 显式查询两类档案是否存在，组装 Principal
func loadPrincipal(ctx context.Context, repo *repository.Repository, account *model.Account, logger *zap.Logger) (*Principal, error) {
	p := &Principal{Account: account}

	student, err := repo.Student.GetByAccountID(ctx, account.AccountID)
	switch {
	case err == nil:
		p.Student = student
	case !repository.IsNotFound(err):
		logger.Error("查询学生档案失败", zap.String("account_id", account.AccountID), zap.Error(err))
		return nil, err
	}

	company, err := repo.Company.GetByAccountID(ctx, account.AccountID)
	switch {
	case err == nil:
		p.Company = company
	case !repository.IsNotFound(err):
		logger.Error("查询企业档案失败", zap.String("account_id", account.AccountID), zap.Error(err))
		return nil, err
	}

	p.Role = ResolveRole(account, p.Student, p.Company)
	return p, nil
}

// profileStatus 指定角色的档案状态：missing | pending | approved
func profileStatus(p *Principal, role string) string {
	var approved *bool
	switch role {
	case string(model.RoleStudent):
		if p.Student != nil {
			approved = &p.Student.IsApproved
		}
	case string(model.RoleCompany):
		if p.Company != nil {
			approved = &p.Company.IsApproved
		}
	default:
		approved = p.ApprovalFlag()
		if approved == nil {
			return ""
		}
	}
	switch {
	case approved == nil:
		return "missing"
	case *approved:
		return "approved"
	default:
		return "pending"
	}
}
