package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"kutechnest/backend/internal/model"
	pkgerrors "kutechnest/backend/pkg/errors"
)

// ApplicationFilter 投递列表过滤条件
// StudentID / CompanyID 由调用方角色决定，均为空表示全部
type ApplicationFilter struct {
	StudentID string
	CompanyID string
	PostID    string
	Status    string
}

// ApplicationRepository 投递数据访问接口
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	GetByID(ctx context.Context, id string) (*model.Application, error)
	GetByPostAndStudent(ctx context.Context, postID, studentID string) (*model.Application, error)
	// UpdateStatus 乐观锁更新，版本不一致返回 ErrOptimisticLock
	UpdateStatus(ctx context.Context, app *model.Application) error
	// List limit<=0 时不分页（导出使用）
	List(ctx context.Context, filter ApplicationFilter, offset, limit int) ([]model.Application, int64, error)
}

// applicationRepo ApplicationRepository 的 GORM 实现
type applicationRepo struct {
	db *gorm.DB
}

// NewApplicationRepo 创建 ApplicationRepository 实例
func NewApplicationRepo(db *gorm.DB) ApplicationRepository {
	return &applicationRepo{db: db}
}

func (r *applicationRepo) Create(ctx context.Context, app *model.Application) error {
	return translateError(r.db.WithContext(ctx).Omit("Post", "Student").Create(app).Error)
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Preload("Post", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Post.Company").
		Preload("Student").
		Where("application_id = ?", id).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) GetByPostAndStudent(ctx context.Context, postID, studentID string) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND student_id = ?", postID, studentID).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, app *model.Application) error {
	oldVersion := app.Version
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("application_id = ? AND version = ?", app.ApplicationID, oldVersion).
		Updates(map[string]interface{}{
			"status":     app.Status,
			"version":    oldVersion + 1,
			"updated_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	app.Version = oldVersion + 1
	app.UpdatedAt = now
	return nil
}

func (r *applicationRepo) List(ctx context.Context, filter ApplicationFilter, offset, limit int) ([]model.Application, int64, error) {
	var apps []model.Application
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Application{})
	if filter.StudentID != "" {
		db = db.Where("applications.student_id = ?", filter.StudentID)
	}
	if filter.CompanyID != "" {
		db = db.Where("applications.post_id IN (?)",
			r.db.Unscoped().Model(&model.Post{}).Select("post_id").Where("company_id = ?", filter.CompanyID))
	}
	if filter.PostID != "" {
		db = db.Where("applications.post_id = ?", filter.PostID)
	}
	if filter.Status != "" {
		db = db.Where("applications.status = ?", filter.Status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Preload("Post", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Post.Company").
		Preload("Student").
		Order("applications.created_at DESC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&apps).Error; err != nil {
		return nil, 0, err
	}

	return apps, total, nil
}
