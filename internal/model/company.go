package model

// Company 企业档案，对应 companies，与 Account 一对一
type Company struct {
	CompanyID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"company_id"`
	AccountID   string `gorm:"type:uuid;not null;uniqueIndex"                 json:"account_id"`
	Name        string `gorm:"type:varchar(200);not null"                     json:"name"`
	Website     string `gorm:"type:varchar(500);not null;default:''"          json:"website"`
	LogoURL     string `gorm:"type:varchar(500);not null;default:''"          json:"logo_url"`
	Location    string `gorm:"type:varchar(200);not null;default:''"          json:"location"`
	Description string `gorm:"type:text;not null;default:''"                  json:"description"`
	Contacts    string `gorm:"type:text;not null;default:''"                  json:"contacts"`
	IsApproved  bool   `gorm:"not null;default:false"                         json:"is_approved"`
	BaseModel

	// 聚合字段，非表列
	PostsCount int64 `gorm:"->;-:migration" json:"posts_count"`
}

// TableName 指定表名
func (Company) TableName() string { return "companies" }
