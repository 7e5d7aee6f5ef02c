package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"kutechnest/backend/internal/dto"
	"kutechnest/backend/internal/model"
	"kutechnest/backend/internal/moderation"
	"kutechnest/backend/internal/repository"
)

// ContentGate 内容审核闸门（moderation.Gate 实现）
type ContentGate interface {
	CheckPost(ctx context.Context, draft moderation.PostDraft) (moderation.Verdict, error)
	CheckCompany(ctx context.Context, draft moderation.CompanyDraft) (moderation.Verdict, error)
}

// ProfileService 档案注册、角色解析与自助维护
type ProfileService interface {
	// Resolve 加载账号与档案并解析角色，每个请求调用一次
	Resolve(ctx context.Context, accountID string) (*Principal, error)

	RegisterStudent(ctx context.Context, p *Principal, req *dto.StudentRegisterRequest) (*model.Student, error)
	RegisterCompany(ctx context.Context, p *Principal, req *dto.CompanyRegisterRequest) (*model.Company, *moderation.Verdict, error)

	GetOwnProfile(ctx context.Context, p *Principal) (*dto.ProfileResponse, error)
	GetOwnStudent(ctx context.Context, p *Principal) (*model.Student, error)
	GetOwnCompany(ctx context.Context, p *Principal) (*model.Company, error)
	UpdateStudent(ctx context.Context, p *Principal, req *dto.StudentUpdateRequest) (*model.Student, error)
	UpdateCompany(ctx context.Context, p *Principal, req *dto.CompanyUpdateRequest) (*model.Company, *moderation.Verdict, error)

	// 公开企业目录，仅已审核企业
	ListCompanies(ctx context.Context, req *dto.CompanyListRequest) ([]model.Company, int64, error)
	GetCompany(ctx context.Context, id string) (*model.Company, error)
}

type profileService struct {
	repo   *repository.Repository
	gate   ContentGate
	logger *zap.Logger
}

// NewProfileService 创建 ProfileService 实例
func NewProfileService(repo *repository.Repository, gate ContentGate, logger *zap.Logger) ProfileService {
	return &profileService{repo: repo, gate: gate, logger: logger}
}

func (s *profileService) Resolve(ctx context.Context, accountID string) (*Principal, error) {
	account, err := s.repo.Account.GetByID(ctx, accountID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrAccountNotFound
		}
		s.logger.Error("查询账号失败", zap.String("account_id", accountID), zap.Error(err))
		return nil, err
	}
	return loadPrincipal(ctx, s.repo, account, s.logger)
}

// ────────────────────── Register ──────────────────────

func (s *profileService) RegisterStudent(ctx context.Context, p *Principal, req *dto.StudentRegisterRequest) (*model.Student, error) {
	if err := checkCanRegister(p, model.ProfileKindStudent); err != nil {
		return nil, err
	}

	student := &model.Student{
		AccountID:          p.Account.AccountID,
		Email:              p.Account.Email, // 始终取账号邮箱
		Name:               strings.TrimSpace(req.Name),
		NickName:           req.NickName,
		Pronoun:            req.Pronoun,
		Age:                req.Age,
		Year:               req.Year,
		KUGeneration:       req.KUGeneration,
		Faculty:            req.Faculty,
		Major:              req.Major,
		AboutMe:            req.AboutMe,
		Phone:              req.Phone,
		CVURL:              req.CVURL,
		ResumeURL:          req.ResumeURL,
		TranscriptURL:      req.TranscriptURL,
		CoverLetterDefault: req.CoverLetterDefault,
		IsApproved:         false,
	}

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := s.claim(ctx, txRepo, p.Account.AccountID, model.ProfileKindStudent); err != nil {
			return err
		}
		return txRepo.Student.Create(ctx, student)
	})
	if err != nil {
		return nil, s.registrationError(err, "学生")
	}

	kind := model.ProfileKindStudent
	p.Account.ProfileKind = &kind
	s.logger.Info("学生档案注册成功",
		zap.String("account_id", p.Account.AccountID),
		zap.String("student_id", student.StudentID),
	)
	return student, nil
}

func (s *profileService) RegisterCompany(ctx context.Context, p *Principal, req *dto.CompanyRegisterRequest) (*model.Company, *moderation.Verdict, error) {
	if err := checkCanRegister(p, model.ProfileKindCompany); err != nil {
		return nil, nil, err
	}

	company := &model.Company{
		AccountID:   p.Account.AccountID,
		Name:        strings.TrimSpace(req.Name),
		Website:     req.Website,
		LogoURL:     req.LogoURL,
		Location:    req.Location,
		Description: req.Description,
		Contacts:    req.Contacts,
		IsApproved:  false,
	}

	// 审核在任何写入之前
	verdict, err := s.gate.CheckCompany(ctx, companyDraft(company))
	if err != nil {
		return nil, &verdict, err
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := s.claim(ctx, txRepo, p.Account.AccountID, model.ProfileKindCompany); err != nil {
			return err
		}
		return txRepo.Company.Create(ctx, company)
	})
	if err != nil {
		return nil, &verdict, s.registrationError(err, "企业")
	}

	kind := model.ProfileKindCompany
	p.Account.ProfileKind = &kind
	s.logger.Info("企业档案注册成功",
		zap.String("account_id", p.Account.AccountID),
		zap.String("company_id", company.CompanyID),
	)
	return company, &verdict, nil
}

// checkCanRegister 已有同类档案 → ErrProfileExists；持有另一角色 → ErrRoleTaken
func checkCanRegister(p *Principal, kind string) error {
	var own, other bool
	switch kind {
	case model.ProfileKindStudent:
		own, other = p.Student != nil, p.Company != nil
	case model.ProfileKindCompany:
		own, other = p.Company != nil, p.Student != nil
	}
	if own {
		return ErrProfileExists
	}
	if other {
		return ErrRoleTaken
	}
	if p.Account.ProfileKind != nil {
		if *p.Account.ProfileKind == kind {
			return ErrProfileExists
		}
		return ErrRoleTaken
	}
	return nil
}

// claim 在事务内声明档案类型；并发注册时只有一个能成功
func (s *profileService) claim(ctx context.Context, txRepo *repository.Repository, accountID, kind string) error {
	err := txRepo.Account.ClaimProfileKind(ctx, accountID, kind)
	if !errors.Is(err, repository.ErrProfileClaimed) {
		return err
	}
	account, getErr := txRepo.Account.GetByID(ctx, accountID)
	if getErr == nil && account.ProfileKind != nil && *account.ProfileKind == kind {
		return ErrProfileExists
	}
	return ErrRoleTaken
}

func (s *profileService) registrationError(err error, label string) error {
	switch {
	case errors.Is(err, ErrProfileExists), errors.Is(err, repository.ErrDuplicate):
		return ErrProfileExists
	case errors.Is(err, ErrRoleTaken):
		return ErrRoleTaken
	}
	s.logger.Error("创建"+label+"档案失败", zap.Error(err))
	return err
}

// ────────────────────── Own profile ──────────────────────

func (s *profileService) GetOwnProfile(_ context.Context, p *Principal) (*dto.ProfileResponse, error) {
	switch p.Role {
	case model.RoleCompany:
		return &dto.ProfileResponse{Role: string(p.Role), Profile: p.Company}, nil
	case model.RoleStudent:
		return &dto.ProfileResponse{Role: string(p.Role), Profile: p.Student}, nil
	case model.RoleAdmin:
		// 管理员也可能持有档案
		if p.Company != nil {
			return &dto.ProfileResponse{Role: string(p.Role), Profile: p.Company}, nil
		}
		if p.Student != nil {
			return &dto.ProfileResponse{Role: string(p.Role), Profile: p.Student}, nil
		}
	}
	return nil, ErrProfileNotFound
}

func (s *profileService) GetOwnStudent(_ context.Context, p *Principal) (*model.Student, error) {
	if p.Student == nil {
		return nil, ErrProfileNotFound
	}
	return p.Student, nil
}

func (s *profileService) GetOwnCompany(_ context.Context, p *Principal) (*model.Company, error) {
	if p.Company == nil {
		return nil, ErrProfileNotFound
	}
	return p.Company, nil
}

// ────────────────────── Update ──────────────────────

func (s *profileService) UpdateStudent(ctx context.Context, p *Principal, req *dto.StudentUpdateRequest) (*model.Student, error) {
	if p.Student == nil {
		return nil, ErrProfileNotFound
	}
	student := *p.Student

	if req.Name != nil {
		student.Name = strings.TrimSpace(*req.Name)
	}
	if req.NickName != nil {
		student.NickName = *req.NickName
	}
	if req.Pronoun != nil {
		student.Pronoun = *req.Pronoun
	}
	if req.Age != nil {
		student.Age = req.Age
	}
	if req.Year != nil {
		student.Year = req.Year
	}
	if req.KUGeneration != nil {
		student.KUGeneration = req.KUGeneration
	}
	if req.Faculty != nil {
		student.Faculty = *req.Faculty
	}
	if req.Major != nil {
		student.Major = *req.Major
	}
	if req.AboutMe != nil {
		student.AboutMe = *req.AboutMe
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
	}
	if req.CVURL != nil {
		student.CVURL = *req.CVURL
	}
	if req.ResumeURL != nil {
		student.ResumeURL = *req.ResumeURL
	}
	if req.TranscriptURL != nil {
		student.TranscriptURL = *req.TranscriptURL
	}
	if req.CoverLetterDefault != nil {
		student.CoverLetterDefault = *req.CoverLetterDefault
	}

	if err := s.repo.Student.UpdateProfile(ctx, &student); err != nil {
		s.logger.Error("更新学生档案失败", zap.String("student_id", student.StudentID), zap.Error(err))
		return nil, err
	}
	*p.Student = student
	return p.Student, nil
}

func (s *profileService) UpdateCompany(ctx context.Context, p *Principal, req *dto.CompanyUpdateRequest) (*model.Company, *moderation.Verdict, error) {
	if p.Company == nil {
		return nil, nil, ErrProfileNotFound
	}
	company := *p.Company

	if req.Name != nil {
		company.Name = strings.TrimSpace(*req.Name)
	}
	if req.Website != nil {
		company.Website = *req.Website
	}
	if req.LogoURL != nil {
		company.LogoURL = *req.LogoURL
	}
	if req.Location != nil {
		company.Location = *req.Location
	}
	if req.Description != nil {
		company.Description = *req.Description
	}
	if req.Contacts != nil {
		company.Contacts = *req.Contacts
	}
	verdict, err := s.gate.CheckCompany(ctx, companyDraft(&company))
	if err != nil {
		return nil, &verdict, err
	}

	if err := s.repo.Company.UpdateProfile(ctx, &company); err != nil {
		s.logger.Error("更新企业档案失败", zap.String("company_id", company.CompanyID), zap.Error(err))
		return nil, &verdict, err
	}
	*p.Company = company
	return p.Company, &verdict, nil
}

// ────────────────────── Public directory ──────────────────────

func (s *profileService) ListCompanies(ctx context.Context, req *dto.CompanyListRequest) ([]model.Company, int64, error) {
	approved := true
	companies, total, err := s.repo.Company.List(ctx, repository.ReviewFilter{
		Approved: &approved,
		Search:   strings.TrimSpace(req.Search),
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询企业列表失败", zap.Error(err))
		return nil, 0, err
	}
	return companies, total, nil
}

func (s *profileService) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	company, err := s.repo.Company.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrCompanyNotFound
		}
		s.logger.Error("查询企业失败", zap.String("company_id", id), zap.Error(err))
		return nil, err
	}
	// 未审核企业对外不可见
	if !company.IsApproved {
		return nil, ErrCompanyNotFound
	}
	return company, nil
}

func companyDraft(c *model.Company) moderation.CompanyDraft {
	return moderation.CompanyDraft{
		Name:        c.Name,
		Website:     c.Website,
		Location:    c.Location,
		Description: c.Description,
		Contacts:    c.Contacts,
	}
}
