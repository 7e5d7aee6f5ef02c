package dto

import (
	"time"

	"kutechnest/backend/internal/model"
)

// ── 投递模块 DTO ──

// ApplyRequest 投递请求；留空字段取学生档案默认值
type ApplyRequest struct {
	CoverLetter string `json:"cover_letter" binding:"omitempty,max=10000"`
	ResumeURL   string `json:"resume_url"   binding:"omitempty,url,max=500"`
}

// UpdateStatusRequest 状态更新请求
// version 用于乐观锁，缺省时取当前版本
type UpdateStatusRequest struct {
	Status  string `json:"status"  binding:"required"`
	Version *int   `json:"version" binding:"omitempty,min=1"`
}

// ApplicationListRequest 投递列表查询参数
type ApplicationListRequest struct {
	PaginationRequest
	Status string `form:"status"  binding:"omitempty,max=20"`
	PostID string `form:"post_id" binding:"omitempty,uuid"`
}

// ApplicationResponse 投递响应
type ApplicationResponse struct {
	ID          string    `json:"id"`
	PostID      string    `json:"post_id"`
	PostTitle   string    `json:"post_title,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name,omitempty"`
	Email       string    `json:"email,omitempty"`
	CoverLetter string    `json:"cover_letter"`
	ResumeURL   string    `json:"resume_url"`
	Status      string    `json:"status"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewApplicationResponse 组装投递响应
func NewApplicationResponse(a *model.Application) ApplicationResponse {
	resp := ApplicationResponse{
		ID:          a.ApplicationID,
		PostID:      a.PostID,
		StudentID:   a.StudentID,
		CoverLetter: a.CoverLetter,
		ResumeURL:   a.ResumeURL,
		Status:      a.Status,
		Version:     a.Version,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.Post != nil {
		resp.PostTitle = a.Post.Title
		if a.Post.Company != nil {
			resp.CompanyName = a.Post.Company.Name
		}
	}
	if a.Student != nil {
		resp.StudentName = a.Student.Name
		resp.Email = a.Student.Email
	}
	return resp
}

// PrefillResponse 投递表单预填数据
type PrefillResponse struct {
	PostID            string `json:"post_id"`
	PostTitle         string `json:"post_title"`
	CompanyName       string `json:"company_name"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	CoverLetter       string `json:"cover_letter"`
	ResumeURL         string `json:"resume_url"`
	AlreadyApplied    bool   `json:"already_applied"`
	ApplicationID     string `json:"application_id,omitempty"`
	ApplicationStatus string `json:"application_status,omitempty"`
}
