package dto

// ── 认证模块 DTO ──

// RegisterRequest 邮箱注册请求
// 密码长度在 service 层再次校验
type RegisterRequest struct {
	Email     string `json:"email"      binding:"required,email,max=254"`
	Password  string `json:"password"   binding:"required,max=128"`
	FirstName string `json:"first_name" binding:"omitempty,max=150"`
	LastName  string `json:"last_name"  binding:"omitempty,max=150"`
}

// LoginRequest 邮箱密码登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest Google 身份令牌换取 Token
// credential 与 id_token 二选一（兼容两种前端写法）
type GoogleLoginRequest struct {
	Credential string `json:"credential"`
	IDToken    string `json:"id_token"`
	Role       string `json:"role" binding:"omitempty,oneof=student company"`
}

// Assertion 返回实际提交的身份令牌
func (r *GoogleLoginRequest) Assertion() string {
	if r.Credential != "" {
		return r.Credential
	}
	return r.IDToken
}

// GoogleAuthURLQuery 获取授权地址的查询参数
type GoogleAuthURLQuery struct {
	Role string `form:"role" binding:"omitempty,oneof=student company"`
}

// GoogleCallbackRequest Google 重定向回调携带的查询参数
type GoogleCallbackRequest struct {
	Code  string `form:"code"`
	State string `form:"state" binding:"required"`
	Error string `form:"error"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
// 第三方登录创建、尚无密码的账号可省略 old_password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" binding:"required,max=128"`
}
