package dto

import (
	"time"

	"kutechnest/backend/internal/model"
)

// ── 职位模块 DTO ──

// PostListRequest 职位列表查询参数
type PostListRequest struct {
	PaginationRequest
	Search         string `form:"search"          binding:"omitempty,max=100"`
	WorkField      string `form:"work_field"      binding:"omitempty,max=32"`
	Location       string `form:"location"        binding:"omitempty,max=64"`
	Onsite         *bool  `form:"onsite"`
	EmploymentType string `form:"employment_type" binding:"omitempty,max=32"`
	SalaryMin      *int64 `form:"salary_min"      binding:"omitempty,min=0"`
	SalaryMax      *int64 `form:"salary_max"      binding:"omitempty,min=0"`
	CompanyID      string `form:"-"`
}

// CreatePostRequest 发布职位请求
type CreatePostRequest struct {
	Title           string `json:"title"            binding:"required,max=300"`
	WorkField       string `json:"work_field"       binding:"required"`
	EmploymentType  string `json:"employment_type"  binding:"omitempty"`
	Location        string `json:"location"         binding:"required"`
	Onsite          bool   `json:"onsite"`
	Salary          int64  `json:"salary"           binding:"min=0"`
	MinYear         int    `json:"min_year"         binding:"min=0,max=50"`
	Requirement     string `json:"requirement"      binding:"required,max=10000"`
	Description     string `json:"description"      binding:"omitempty,max=200"`
	LongDescription string `json:"long_description" binding:"omitempty,max=20000"`
	ImageURL        string `json:"image_url"        binding:"omitempty,url,max=500"`
}

// UpdatePostRequest 更新职位请求（仅更新非 nil 字段）
type UpdatePostRequest struct {
	Title           *string `json:"title"            binding:"omitempty,min=1,max=300"`
	WorkField       *string `json:"work_field"`
	EmploymentType  *string `json:"employment_type"`
	Location        *string `json:"location"`
	Onsite          *bool   `json:"onsite"`
	Salary          *int64  `json:"salary"           binding:"omitempty,min=0"`
	MinYear         *int    `json:"min_year"         binding:"omitempty,min=0,max=50"`
	Requirement     *string `json:"requirement"      binding:"omitempty,max=10000"`
	Description     *string `json:"description"      binding:"omitempty,max=200"`
	LongDescription *string `json:"long_description" binding:"omitempty,max=20000"`
	ImageURL        *string `json:"image_url"        binding:"omitempty,url,max=500"`
}

// PostCompany 职位中的企业摘要
type PostCompany struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
	Website string `json:"website"`
}

// PostResponse 职位响应
type PostResponse struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	WorkField       string       `json:"work_field"`
	EmploymentType  string       `json:"employment_type"`
	Location        string       `json:"location"`
	LocationLabel   string       `json:"location_label"`
	Onsite          bool         `json:"onsite"`
	Salary          int64        `json:"salary"`
	SalaryDisplay   string       `json:"salary_display"`
	MinYear         int          `json:"min_year"`
	Requirement     string       `json:"requirement"`
	Description     string       `json:"description"`
	LongDescription string       `json:"long_description,omitempty"`
	ImageURL        string       `json:"image_url"`
	Company         *PostCompany `json:"company,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// NewPostResponse 组装职位响应；detail=false 时省略长描述
// 职位未设置图片时回退为企业 Logo
func NewPostResponse(p *model.Post, detail bool) PostResponse {
	resp := PostResponse{
		ID:             p.PostID,
		Title:          p.Title,
		WorkField:      p.WorkField,
		EmploymentType: p.EmploymentType,
		Location:       p.Location,
		LocationLabel:  model.LocationLabel(p.Location),
		Onsite:         p.Onsite,
		Salary:         p.Salary,
		SalaryDisplay:  FormatSalary(p.Salary),
		MinYear:        p.MinYear,
		Requirement:    p.Requirement,
		Description:    p.Description,
		ImageURL:       p.ImageURL,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if detail {
		resp.LongDescription = p.LongDescription
	}
	if p.Company != nil {
		resp.Company = &PostCompany{
			ID:      p.Company.CompanyID,
			Name:    p.Company.Name,
			LogoURL: p.Company.LogoURL,
			Website: p.Company.Website,
		}
		if resp.ImageURL == "" {
			resp.ImageURL = p.Company.LogoURL
		}
	}
	return resp
}

// CreatePostResponse 发布职位响应，附带审核结论
type CreatePostResponse struct {
	Post       PostResponse `json:"post"`
	Validation interface{}  `json:"validation"`
}

// ChoicesResponse 职位枚举项
type ChoicesResponse struct {
	WorkFields      []model.Choice `json:"work_fields"`
	EmploymentTypes []model.Choice `json:"employment_types"`
	Locations       []model.Choice `json:"locations"`
}
