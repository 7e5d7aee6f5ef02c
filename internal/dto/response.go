package dto

import (
	"strconv"
	"strings"
)

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	Access    string       `json:"access"`
	Refresh   string       `json:"refresh"`
	ExpiresIn int          `json:"expires_in"` // Access Token 有效期（秒）
	User      UserResponse `json:"user"`
}

// GoogleLoginResponse Google 登录响应
type GoogleLoginResponse struct {
	OK            bool         `json:"ok"`
	Created       bool         `json:"created"`
	ProfileStatus string       `json:"profile_status,omitempty"` // missing | pending | approved
	Access        string       `json:"access"`
	Refresh       string       `json:"refresh"`
	ExpiresIn     int          `json:"expires_in"`
	User          UserResponse `json:"user"`
}

// GoogleAuthURLResponse 授权码流程的跳转地址
type GoogleAuthURLResponse struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

// UserResponse 账号信息（脱敏）
type UserResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Role       string `json:"role"`
	IsApproved *bool  `json:"is_approved,omitempty"` // 仅 student/company 返回
	AvatarURL  string `json:"avatar_url"`
	IsActive   bool   `json:"is_active"`
}

// ── 分页请求 ──

const (
	// DefaultPageSize 列表默认每页数量
	DefaultPageSize = 12
	MaxPageSize     = 100
	// MaxPage 页码上限，offset 最大 MaxPage*MaxPageSize
	MaxPage = 10000
)

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1,max=10000"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值），未经 binding 的调用方同样截断到 MaxPage
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	if p.Page > MaxPage {
		return MaxPage
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// FormatSalary 35000 → "35,000"
func FormatSalary(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
