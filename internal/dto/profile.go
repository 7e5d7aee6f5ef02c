package dto

// ── 学生档案 ──

// StudentRegisterRequest 学生档案注册
// email 不接受客户端输入，始终取自账号
type StudentRegisterRequest struct {
	Name               string `json:"name"                 binding:"required,max=200"`
	NickName           string `json:"nick_name"            binding:"omitempty,max=30"`
	Pronoun            string `json:"pronoun"              binding:"omitempty,max=20"`
	Age                *int   `json:"age"                  binding:"omitempty,min=15,max=100"`
	Year               *int   `json:"year"                 binding:"omitempty,min=1,max=8"`
	KUGeneration       *int   `json:"ku_generation"        binding:"omitempty,min=1"`
	Faculty            string `json:"faculty"              binding:"required,max=100"`
	Major              string `json:"major"                binding:"omitempty,max=100"`
	AboutMe            string `json:"about_me"             binding:"omitempty,max=5000"`
	Phone              string `json:"phone"                binding:"omitempty,max=30"`
	CVURL              string `json:"cv_url"               binding:"omitempty,url,max=500"`
	ResumeURL          string `json:"resume_url"           binding:"omitempty,url,max=500"`
	TranscriptURL      string `json:"transcript_url"       binding:"omitempty,url,max=500"`
	CoverLetterDefault string `json:"cover_letter_default" binding:"omitempty,max=5000"`
}

// StudentUpdateRequest 学生档案更新（仅更新非 nil 字段，审核状态不可写）
type StudentUpdateRequest struct {
	Name               *string `json:"name"                 binding:"omitempty,max=200"`
	NickName           *string `json:"nick_name"            binding:"omitempty,max=30"`
	Pronoun            *string `json:"pronoun"              binding:"omitempty,max=20"`
	Age                *int    `json:"age"                  binding:"omitempty,min=15,max=100"`
	Year               *int    `json:"year"                 binding:"omitempty,min=1,max=8"`
	KUGeneration       *int    `json:"ku_generation"        binding:"omitempty,min=1"`
	Faculty            *string `json:"faculty"              binding:"omitempty,max=100"`
	Major              *string `json:"major"                binding:"omitempty,max=100"`
	AboutMe            *string `json:"about_me"             binding:"omitempty,max=5000"`
	Phone              *string `json:"phone"                binding:"omitempty,max=30"`
	CVURL              *string `json:"cv_url"               binding:"omitempty,url,max=500"`
	ResumeURL          *string `json:"resume_url"           binding:"omitempty,url,max=500"`
	TranscriptURL      *string `json:"transcript_url"       binding:"omitempty,url,max=500"`
	CoverLetterDefault *string `json:"cover_letter_default" binding:"omitempty,max=5000"`
}

// ── 企业档案 ──

// CompanyRegisterRequest 企业档案注册
type CompanyRegisterRequest struct {
	Name        string `json:"name"        binding:"required,max=200"`
	Website     string `json:"website"     binding:"omitempty,url,max=500"`
	LogoURL     string `json:"logo_url"    binding:"omitempty,url,max=500"`
	Location    string `json:"location"    binding:"omitempty,max=200"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	Contacts    string `json:"contacts"    binding:"omitempty,max=2000"`
}

// CompanyUpdateRequest 企业档案更新（仅更新非 nil 字段）
type CompanyUpdateRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=1,max=200"`
	Website     *string `json:"website"     binding:"omitempty,url,max=500"`
	LogoURL     *string `json:"logo_url"    binding:"omitempty,url,max=500"`
	Location    *string `json:"location"    binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Contacts    *string `json:"contacts"    binding:"omitempty,max=2000"`
}

// CompanyListRequest 公开企业列表查询参数
type CompanyListRequest struct {
	PaginationRequest
	Search string `form:"search" binding:"omitempty,max=100"`
}

// ── 审核 ──

// ApprovalRequest 管理员审核请求
type ApprovalRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// ActiveRequest 管理员启用/停用账号
type ActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ReviewListRequest 审核队列查询参数
type ReviewListRequest struct {
	PaginationRequest
	Approved *bool  `form:"approved"`
	Search   string `form:"search" binding:"omitempty,max=100"`
}

// ProfileResponse GET /profile/me 响应
type ProfileResponse struct {
	Role    string      `json:"role"`
	Profile interface{} `json:"profile"`
}
