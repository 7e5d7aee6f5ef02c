package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"kutechnest/backend/internal/model"
)

// CompanyRepository 企业档案数据访问接口
type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	GetByID(ctx context.Context, id string) (*model.Company, error)
	GetByAccountID(ctx context.Context, accountID string) (*model.Company, error)
	// UpdateProfile 只写入企业可自助编辑的列
	UpdateProfile(ctx context.Context, company *model.Company) error
	SetApproved(ctx context.Context, id string, approved bool) error
	// List 带 posts_count 聚合
	List(ctx context.Context, filter ReviewFilter, offset, limit int) ([]model.Company, int64, error)
}

// companyRepo CompanyRepository 的 GORM 实现
type companyRepo struct {
	db *gorm.DB
}

// NewCompanyRepo 创建 CompanyRepository 实例
func NewCompanyRepo(db *gorm.DB) CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) Create(ctx context.Context, company *model.Company) error {
	return translateError(r.db.WithContext(ctx).Create(company).Error)
}

func (r *companyRepo) GetByID(ctx context.Context, id string) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).
		Where("company_id = ?", id).
		First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepo) GetByAccountID(ctx context.Context, accountID string) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

var companyProfileColumns = []string{
	"name", "website", "logo_url", "location", "description", "contacts", "updated_at",
}

func (r *companyRepo) UpdateProfile(ctx context.Context, company *model.Company) error {
	company.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Company{}).
		Where("company_id = ?", company.CompanyID).
		Select(companyProfileColumns).
		Updates(company)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *companyRepo) SetApproved(ctx context.Context, id string, approved bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.Company{}).
		Where("company_id = ?", id).
		Updates(map[string]interface{}{
			"is_approved": approved,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *companyRepo) List(ctx context.Context, filter ReviewFilter, offset, limit int) ([]model.Company, int64, error) {
	var companies []model.Company
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Company{})
	if filter.Approved != nil {
		db = db.Where("companies.is_approved = ?", *filter.Approved)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("companies.name ILIKE ? OR companies.description ILIKE ? OR companies.location ILIKE ?", like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	postsCount := r.db.Model(&model.Post{}).
		Select("COUNT(*)").
		Where("posts.company_id = companies.company_id")

	if err := db.Select("companies.*, (?) AS posts_count", postsCount).
		Offset(offset).Limit(limit).
		Order("companies.name ASC").
		Find(&companies).Error; err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}
