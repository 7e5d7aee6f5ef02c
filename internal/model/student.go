package model

// Student 学生档案，对应 students，与 Account 一对一
type Student struct {
	StudentID          string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	AccountID          string `gorm:"type:uuid;not null;uniqueIndex"                 json:"account_id"`
	Email              string `gorm:"type:varchar(254);not null"                     json:"email"`
	Name               string `gorm:"type:varchar(200);not null;default:''"          json:"name"`
	NickName           string `gorm:"type:varchar(100);not null;default:''"          json:"nick_name"`
	Pronoun            string `gorm:"type:varchar(50);not null;default:''"           json:"pronoun"`
	Age                *int   `json:"age,omitempty"`
	Year               *int   `json:"year,omitempty"`
	KUGeneration       *int   `gorm:"column:ku_generation"                           json:"ku_generation,omitempty"`
	Faculty            string `gorm:"type:varchar(200);not null;default:''"          json:"faculty"`
	Major              string `gorm:"type:varchar(200);not null;default:''"          json:"major"`
	AboutMe            string `gorm:"type:text;not null;default:''"                  json:"about_me"`
	Phone              string `gorm:"type:varchar(30);not null;default:''"           json:"phone"`
	CVURL              string `gorm:"column:cv_url;type:varchar(500);not null;default:''" json:"cv_url"`
	ResumeURL          string `gorm:"type:varchar(500);not null;default:''"          json:"resume_url"`
	TranscriptURL      string `gorm:"type:varchar(500);not null;default:''"          json:"transcript_url"`
	CoverLetterDefault string `gorm:"type:text;not null;default:''"                  json:"cover_letter_default"`
	IsApproved         bool   `gorm:"not null;default:false"                         json:"is_approved"`
	BaseModel

	// 关联
	Account *Account `gorm:"foreignKey:AccountID;references:AccountID" json:"-"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }
