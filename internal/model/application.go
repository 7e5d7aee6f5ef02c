package model

// Application 投递记录，对应 applications
// (post_id, student_id) 唯一；只迁移状态，不物理删除
type Application struct {
	ApplicationID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"application_id"`
	PostID        string `gorm:"type:uuid;not null"                             json:"post_id"`
	StudentID     string `gorm:"type:uuid;not null;index"                       json:"student_id"`
	CoverLetter   string `gorm:"type:text;not null;default:''"                  json:"cover_letter"`
	ResumeURL     string `gorm:"type:varchar(500);not null;default:''"          json:"resume_url"`
	Status        string `gorm:"type:varchar(20);not null;default:'submitted'"  json:"status"`
	VersionedModel

	// 关联
	Post    *Post    `gorm:"foreignKey:PostID;references:PostID"       json:"post,omitempty"`
	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (Application) TableName() string { return "applications" }
