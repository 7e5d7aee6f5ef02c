package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"kutechnest/backend/internal/model"
)

// PostFilter 职位列表过滤条件
type PostFilter struct {
	Search         string
	WorkField      string
	Location       string
	Onsite         *bool
	EmploymentType string
	SalaryMin      *int64
	SalaryMax      *int64
	CompanyID      string
	ApprovedOnly   bool // 仅展示已审核企业的职位
}

// PostRepository 职位数据访问接口
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter PostFilter, offset, limit int) ([]model.Post, int64, error)
}

// postRepo PostRepository 的 GORM 实现
type postRepo struct {
	db *gorm.DB
}

// NewPostRepo 创建 PostRepository 实例
func NewPostRepo(db *gorm.DB) PostRepository {
	return &postRepo{db: db}
}

func (r *postRepo) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Omit("Company").Create(post).Error
}

func (r *postRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).
		Preload("Company").
		Where("post_id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

var postEditableColumns = []string{
	"title", "work_field", "employment_type", "location", "onsite", "salary", "min_year",
	"requirement", "description", "long_description", "image_url", "updated_at",
}

// Update 只写入可编辑列；已软删除的职位不会被写回
func (r *postRepo) Update(ctx context.Context, post *model.Post) error {
	post.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Where("post_id = ?", post.PostID).
		Select(postEditableColumns).
		Updates(post)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 软删除
func (r *postRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("post_id = ?", id).
		Delete(&model.Post{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postRepo) List(ctx context.Context, filter PostFilter, offset, limit int) ([]model.Post, int64, error) {
	var posts []model.Post
	var total int64

	db := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Joins("JOIN companies ON companies.company_id = posts.company_id")

	if filter.ApprovedOnly {
		db = db.Where("companies.is_approved = ?", true)
	}
	if filter.CompanyID != "" {
		db = db.Where("posts.company_id = ?", filter.CompanyID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("posts.title ILIKE ? OR posts.description ILIKE ? OR posts.long_description ILIKE ? OR companies.name ILIKE ?",
			like, like, like, like)
	}
	if filter.WorkField != "" {
		db = db.Where("posts.work_field = ?", filter.WorkField)
	}
	if filter.Location != "" {
		db = db.Where("posts.location = ?", filter.Location)
	}
	if filter.Onsite != nil {
		db = db.Where("posts.onsite = ?", *filter.Onsite)
	}
	if filter.EmploymentType != "" {
		db = db.Where("posts.employment_type = ?", filter.EmploymentType)
	}
	if filter.SalaryMin != nil {
		db = db.Where("posts.salary >= ?", *filter.SalaryMin)
	}
	if filter.SalaryMax != nil {
		db = db.Where("posts.salary <= ?", *filter.SalaryMax)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Company").
		Offset(offset).Limit(limit).
		Order("posts.created_at DESC").
		Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}
