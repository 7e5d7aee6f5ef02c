package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"kutechnest/backend/internal/dto"
	"kutechnest/backend/internal/model"
	"kutechnest/backend/internal/moderation"
	"kutechnest/backend/internal/repository"
)

const defaultEmploymentType = "full_time"

// PostService 职位业务接口
type PostService interface {
	// List 公开列表，仅已审核企业的职位，按发布时间倒序
	List(ctx context.Context, req *dto.PostListRequest) ([]dto.PostResponse, int64, error)
	// Get p 可为 nil（匿名访问）；未审核企业的职位仅本企业与管理员可见
	Get(ctx context.Context, p *Principal, id string) (*dto.PostResponse, error)
	// ListByCompany 公开企业主页的职位列表
	ListByCompany(ctx context.Context, companyID string, req *dto.PostListRequest) ([]dto.PostResponse, int64, error)
	Create(ctx context.Context, p *Principal, req *dto.CreatePostRequest) (*dto.CreatePostResponse, error)
	Update(ctx context.Context, p *Principal, id string, req *dto.UpdatePostRequest) (*dto.CreatePostResponse, error)
	Delete(ctx context.Context, p *Principal, id string) error
	Choices() dto.ChoicesResponse
}

type postService struct {
	repo   *repository.Repository
	gate   ContentGate
	logger *zap.Logger
}

// NewPostService 创建 PostService 实例
func NewPostService(repo *repository.Repository, gate ContentGate, logger *zap.Logger) PostService {
	return &postService{repo: repo, gate: gate, logger: logger}
}

// ────────────────────── Read ──────────────────────

func (s *postService) List(ctx context.Context, req *dto.PostListRequest) ([]dto.PostResponse, int64, error) {
	if req.SalaryMin != nil && req.SalaryMax != nil && *req.SalaryMin > *req.SalaryMax {
		return nil, 0, ErrInvalidSalaryRange
	}

	posts, total, err := s.repo.Post.List(ctx, repository.PostFilter{
		Search:         strings.TrimSpace(req.Search),
		WorkField:      req.WorkField,
		Location:       req.Location,
		Onsite:         req.Onsite,
		EmploymentType: req.EmploymentType,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		CompanyID:      req.CompanyID,
		ApprovedOnly:   true,
	}, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询职位列表失败", zap.Error(err))
		return nil, 0, err
	}

	results := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		results = append(results, dto.NewPostResponse(&posts[i], false))
	}
	return results, total, nil
}

func (s *postService) ListByCompany(ctx context.Context, companyID string, req *dto.PostListRequest) ([]dto.PostResponse, int64, error) {
	company, err := s.repo.Company.GetByID(ctx, companyID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, 0, ErrCompanyNotFound
		}
		s.logger.Error("查询企业失败", zap.String("company_id", companyID), zap.Error(err))
		return nil, 0, err
	}
	if !company.IsApproved {
		return nil, 0, ErrCompanyNotFound
	}
	req.CompanyID = companyID
	return s.List(ctx, req)
}

func (s *postService) Get(ctx context.Context, p *Principal, id string) (*dto.PostResponse, error) {
	post, err := s.getPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Company != nil && !post.Company.IsApproved && !canManagePost(p, post) && !p.IsAdmin() {
		return nil, ErrPostNotFound
	}
	resp := dto.NewPostResponse(post, true)
	return &resp, nil
}

func (s *postService) Choices() dto.ChoicesResponse {
	locations := make([]model.Choice, 0, len(model.Locations))
	for _, l := range model.Locations {
		locations = append(locations, model.Choice{Value: l, Label: model.LocationLabel(l)})
	}
	return dto.ChoicesResponse{
		WorkFields:      model.WorkFields,
		EmploymentTypes: model.EmploymentTypes,
		Locations:       locations,
	}
}

// ────────────────────── Write ──────────────────────

func (s *postService) Create(ctx context.Context, p *Principal, req *dto.CreatePostRequest) (*dto.CreatePostResponse, error) {
	company, err := requireApprovedCompany(p)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		CompanyID:       company.CompanyID,
		Title:           strings.TrimSpace(req.Title),
		WorkField:       req.WorkField,
		EmploymentType:  req.EmploymentType,
		Location:        req.Location,
		Onsite:          req.Onsite,
		Salary:          req.Salary,
		MinYear:         req.MinYear,
		Requirement:     req.Requirement,
		Description:     req.Description,
		LongDescription: req.LongDescription,
		ImageURL:        req.ImageURL,
	}
	if post.EmploymentType == "" {
		post.EmploymentType = defaultEmploymentType
	}
	if err := validatePostEnums(post); err != nil {
		return nil, err
	}

	verdict, err := s.gate.CheckPost(ctx, postDraft(post))
	if err != nil {
		return nil, err
	}

	if err := s.repo.Post.Create(ctx, post); err != nil {
		s.logger.Error("创建职位失败", zap.String("company_id", company.CompanyID), zap.Error(err))
		return nil, err
	}
	post.Company = company

	s.logger.Info("职位发布成功",
		zap.String("post_id", post.PostID),
		zap.String("company_id", company.CompanyID),
		zap.Float64("confidence_score", verdict.ConfidenceScore),
	)
	return &dto.CreatePostResponse{Post: dto.NewPostResponse(post, true), Validation: verdict}, nil
}

func (s *postService) Update(ctx context.Context, p *Principal, id string, req *dto.UpdatePostRequest) (*dto.CreatePostResponse, error) {
	if p.Company == nil {
		return nil, ErrCompanyOnly
	}
	post, err := s.getPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManagePost(p, post) {
		return nil, ErrNotPostOwner
	}

	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.WorkField != nil {
		post.WorkField = *req.WorkField
	}
	if req.EmploymentType != nil {
		post.EmploymentType = *req.EmploymentType
	}
	if req.Location != nil {
		post.Location = *req.Location
	}
	if req.Onsite != nil {
		post.Onsite = *req.Onsite
	}
	if req.Salary != nil {
		post.Salary = *req.Salary
	}
	if req.MinYear != nil {
		post.MinYear = *req.MinYear
	}
	if req.Requirement != nil {
		post.Requirement = *req.Requirement
	}
	if req.Description != nil {
		post.Description = *req.Description
	}
	if req.LongDescription != nil {
		post.LongDescription = *req.LongDescription
	}
	if req.ImageURL != nil {
		post.ImageURL = *req.ImageURL
	}
	if err := validatePostEnums(post); err != nil {
		return nil, err
	}

	verdict, err := s.gate.CheckPost(ctx, postDraft(post))
	if err != nil {
		return nil, err
	}

	if err := s.repo.Post.Update(ctx, post); err != nil {
		s.logger.Error("更新职位失败", zap.String("post_id", id), zap.Error(err))
		return nil, err
	}
	return &dto.CreatePostResponse{Post: dto.NewPostResponse(post, true), Validation: verdict}, nil
}

func (s *postService) Delete(ctx context.Context, p *Principal, id string) error {
	if p.Company == nil {
		return ErrCompanyOnly
	}
	post, err := s.getPost(ctx, id)
	if err != nil {
		return err
	}
	if !canManagePost(p, post) {
		return ErrNotPostOwner
	}

	if err := s.repo.Post.Delete(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return ErrPostNotFound
		}
		s.logger.Error("删除职位失败", zap.String("post_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("职位已删除", zap.String("post_id", id), zap.String("company_id", post.CompanyID))
	return nil
}

// ── 辅助函数 ──

func (s *postService) getPost(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.repo.Post.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrPostNotFound
		}
		s.logger.Error("查询职位失败", zap.String("post_id", id), zap.Error(err))
		return nil, err
	}
	return post, nil
}

// requireApprovedCompany 发布职位需要已审核的企业档案
func requireApprovedCompany(p *Principal) (*model.Company, error) {
	if p.Company == nil {
		return nil, ErrCompanyOnly
	}
	if !p.Company.IsApproved {
		return nil, ErrNotApproved
	}
	return p.Company, nil
}

func canManagePost(p *Principal, post *model.Post) bool {
	return p != nil && p.Company != nil && p.Company.CompanyID == post.CompanyID
}

func validatePostEnums(post *model.Post) error {
	if !model.IsValidWorkField(post.WorkField) {
		return ErrInvalidWorkField
	}
	if !model.IsValidEmploymentType(post.EmploymentType) {
		return ErrInvalidEmployment
	}
	if !model.IsValidLocation(post.Location) {
		return ErrInvalidLocation
	}
	return nil
}

func postDraft(p *model.Post) moderation.PostDraft {
	return moderation.PostDraft{
		Title:           p.Title,
		WorkField:       p.WorkField,
		EmploymentType:  p.EmploymentType,
		Location:        p.Location,
		Salary:          p.Salary,
		MinYear:         p.MinYear,
		Requirement:     p.Requirement,
		Description:     p.Description,
		LongDescription: p.LongDescription,
	}
}
