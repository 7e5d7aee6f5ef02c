package model

import "time"

// Account 登录身份，对应 accounts
// Email 以小写存储，唯一索引建在 LOWER(email) 上
type Account struct {
	AccountID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"account_id"`
	Email        string     `gorm:"type:varchar(254);not null"                     json:"email"`
	FirstName    string     `gorm:"type:varchar(150);not null;default:''"          json:"first_name"`
	LastName     string     `gorm:"type:varchar(150);not null;default:''"          json:"last_name"`
	PasswordHash *string    `gorm:"type:varchar(255)"                              json:"-"`
	GoogleID     *string    `gorm:"type:varchar(255)"                              json:"-"`
	AvatarURL    string     `gorm:"type:varchar(500);not null;default:''"          json:"avatar_url"`
	IsActive     bool       `gorm:"not null;default:true"                          json:"is_active"`
	IsAdmin      bool       `gorm:"not null;default:false"                         json:"is_admin"`
	ProfileKind  *string    `gorm:"type:varchar(16)"                               json:"profile_kind,omitempty"`
	TokenVersion int        `gorm:"not null;default:0"                             json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Account) TableName() string { return "accounts" }

// HasUsablePassword 是否设置了可用密码（第三方登录创建的账号没有）
func (a *Account) HasUsablePassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}
