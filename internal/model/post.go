package model

// Post 职位，对应 posts，软删除
type Post struct {
	PostID          string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"post_id"`
	CompanyID       string `gorm:"type:uuid;not null;index"                       json:"company_id"`
	Title           string `gorm:"type:varchar(300);not null"                     json:"title"`
	WorkField       string `gorm:"type:varchar(32);not null"                      json:"work_field"`
	EmploymentType  string `gorm:"type:varchar(32);not null"                      json:"employment_type"`
	Location        string `gorm:"type:varchar(64);not null"                      json:"location"`
	Onsite          bool   `gorm:"not null;default:false"                         json:"onsite"`
	Salary          int64  `gorm:"not null;default:0"                             json:"salary"`
	MinYear         int    `gorm:"not null;default:0"                             json:"min_year"`
	Requirement     string `gorm:"type:text;not null;default:''"                  json:"requirement"`
	Description     string `gorm:"type:varchar(200);not null;default:''"          json:"description"`
	LongDescription string `gorm:"type:text;not null;default:''"                  json:"long_description"`
	ImageURL        string `gorm:"type:varchar(500);not null;default:''"          json:"image_url"`
	SoftDeleteModel

	// 关联
	Company *Company `gorm:"foreignKey:CompanyID;references:CompanyID" json:"company,omitempty"`
}

// TableName 指定表名
func (Post) TableName() string { return "posts" }
