package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"kutechnest/backend/internal/model"
)

// ReviewFilter 审核队列过滤条件
type ReviewFilter struct {
	Approved *bool
	Search   string
}

// StudentRepository 学生档案数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByAccountID(ctx context.Context, accountID string) (*model.Student, error)
	// UpdateProfile 只写入学生可自助编辑的列，不触碰 is_approved 与 email
	UpdateProfile(ctx context.Context, student *model.Student) error
	SetApproved(ctx context.Context, id string, approved bool) error
	List(ctx context.Context, filter ReviewFilter, offset, limit int) ([]model.Student, int64, error)
}

// studentRepo StudentRepository 的 GORM 实现
type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return translateError(r.db.WithContext(ctx).Create(student).Error)
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByAccountID(ctx context.Context, accountID string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

var studentProfileColumns = []string{
	"name", "nick_name", "pronoun", "age", "year", "ku_generation",
	"faculty", "major", "about_me", "phone",
	"cv_url", "resume_url", "transcript_url", "cover_letter_default",
	"updated_at",
}

func (r *studentRepo) UpdateProfile(ctx context.Context, student *model.Student) error {
	student.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("student_id = ?", student.StudentID).
		Select(studentProfileColumns).
		Updates(student)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studentRepo) SetApproved(ctx context.Context, id string, approved bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("student_id = ?", id).
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

func (r *studentRepo) List(ctx context.Context, filter ReviewFilter, offset, limit int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Student{})
	if filter.Approved != nil {
		db = db.Where("is_approved = ?", *filter.Approved)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		db = db.Where("name ILIKE ? OR email ILIKE ? OR faculty ILIKE ?", like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}
