package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"kutechnest/backend/internal/model"
)

// AccountRepository 账号数据访问接口
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByGoogleID(ctx context.Context, googleID string) (*model.Account, error)
	// UpdateIdentity 只写入第三方身份相关列：google_id、姓名与头像
	UpdateIdentity(ctx context.Context, account *model.Account) error
	// SetPassword 写入新密码哈希并递增 token_version，返回新版本号
	SetPassword(ctx context.Context, id, hash string) (int, error)
	// ClaimProfileKind 仅当 profile_kind 为空时写入，否则返回 ErrProfileClaimed
	ClaimProfileKind(ctx context.Context, id, kind string) error
	// BumpTokenVersion 使该账号此前签发的全部 Refresh Token 失效，返回新版本号
	BumpTokenVersion(ctx context.Context, id string) (int, error)
	SetActive(ctx context.Context, id string, active bool) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// accountRepo AccountRepository 的 GORM 实现
type accountRepo struct {
	db *gorm.DB
}

// NewAccountRepo 创建 AccountRepository 实例
func NewAccountRepo(db *gorm.DB) AccountRepository {
	return &accountRepo{db: db}
}

func (r *accountRepo) Create(ctx context.Context, account *model.Account) error {
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	return translateError(r.db.WithContext(ctx).Create(account).Error)
}

func (r *accountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("account_id = ?", id).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepo) GetByGoogleID(ctx context.Context, googleID string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).
		Where("google_id = ?", googleID).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// identityColumns 身份关联时允许写入的列
var identityColumns = []string{"google_id", "first_name", "last_name", "avatar_url", "updated_at"}

func (r *accountRepo) UpdateIdentity(ctx context.Context, account *model.Account) error {
	result := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("account_id = ?", account.AccountID).
		Select(identityColumns).
		Updates(&model.Account{
			GoogleID:  account.GoogleID,
			FirstName: account.FirstName,
			LastName:  account.LastName,
			AvatarURL: account.AvatarURL,
			BaseModel: model.BaseModel{UpdatedAt: time.Now()},
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *accountRepo) SetPassword(ctx context.Context, id, hash string) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("account_id = ?", id).
		Updates(map[string]interface{}{
			"password_hash": hash,
			"token_version": gorm.Expr("token_version + 1"),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return r.tokenVersion(ctx, id)
}

func (r *accountRepo) ClaimProfileKind(ctx context.Context, id, kind string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("account_id = ? AND profile_kind IS NULL", id).
		Updates(map[string]interface{}{
			"profile_kind": kind,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileClaimed
	}
	return nil
}

func (r *accountRepo) BumpTokenVersion(ctx context.Context, id string) (int, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("account_id = ?", id).
		Update("token_version", gorm.Expr("token_version + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return r.tokenVersion(ctx, id)
}

func (r *accountRepo) tokenVersion(ctx context.Context, id string) (int, error) {
	var account model.Account
	if err := r.db.WithContext(ctx).
		Select("token_version").
		Where("account_id = ?", id).
		First(&account).Error; err != nil {
		return 0, err
	}
	return account.TokenVersion, nil
}

func (r *accountRepo) SetActive(ctx context.Context, id string, active bool) error {
	updates := map[string]interface{}{
		"is_active":  active,
		"updated_at": time.Now(),
	}
	if !active {
		updates["token_version"] = gorm.Expr("token_version + 1")
	}
	result := r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("account_id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *accountRepo) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("account_id = ?", id).
		UpdateColumn("last_login_at", at).Error
}
