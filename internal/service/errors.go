package service

import (
	pkgerrors "kutechnest/backend/pkg/errors"
)

// ── 业务错误 ──
// 业务码按模块分段：201xx 认证 / 202xx 档案 / 203xx 审核 / 204xx 职位 / 205xx 投递

var (
	// 认证
	ErrEmailTaken          = pkgerrors.New(pkgerrors.KindConflict, 20101, "该邮箱已注册")
	ErrPasswordTooShort    = pkgerrors.New(pkgerrors.KindValidation, 20102, "密码长度不能少于 8 位")
	ErrInvalidCredentials  = pkgerrors.New(pkgerrors.KindUnauthorized, 20103, "邮箱或密码错误")
	ErrAccountInactive     = pkgerrors.New(pkgerrors.KindForbidden, 20104, "账号已停用")
	ErrInvalidAssertion    = pkgerrors.New(pkgerrors.KindUnauthorized, 20105, "身份令牌校验失败")
	ErrAssertionAudience   = pkgerrors.New(pkgerrors.KindUnauthorized, 20106, "身份令牌的受众不受信任")
	ErrAssertionIssuer     = pkgerrors.New(pkgerrors.KindUnauthorized, 20107, "身份令牌的签发方不受信任")
	ErrAssertionNoEmail    = pkgerrors.New(pkgerrors.KindUnauthorized, 20108, "身份令牌缺少邮箱")
	ErrEmailUnverified     = pkgerrors.New(pkgerrors.KindUnauthorized, 20109, "邮箱尚未验证")
	ErrIdentityLinked      = pkgerrors.New(pkgerrors.KindConflict, 20110, "该邮箱已绑定其他 Google 账号")
	ErrInvalidRefreshToken = pkgerrors.New(pkgerrors.KindUnauthorized, 20111, "Refresh Token 无效或已失效")
	ErrOldPasswordMismatch = pkgerrors.New(pkgerrors.KindValidation, 20112, "原密码错误")
	ErrAccountNotFound     = pkgerrors.New(pkgerrors.KindNotFound, 20113, "账号不存在")
	ErrOAuthDisabled       = pkgerrors.New(pkgerrors.KindNotFound, 20114, "未启用 Google 授权码登录")
	ErrOAuthState          = pkgerrors.New(pkgerrors.KindValidation, 20115, "state 无效或已过期")
	ErrOAuthExchange       = pkgerrors.New(pkgerrors.KindUnauthorized, 20116, "Google 授权码无效或已使用")
	ErrOAuthDenied         = pkgerrors.New(pkgerrors.KindUnauthorized, 20117, "用户拒绝了 Google 授权")

	// 档案
	ErrProfileExists   = pkgerrors.New(pkgerrors.KindConflict, 20201, "该账号已注册此角色档案")
	ErrRoleTaken       = pkgerrors.New(pkgerrors.KindConflict, 20202, "该账号已注册为其他角色")
	ErrProfileNotFound = pkgerrors.New(pkgerrors.KindNotFound, 20203, "尚未注册档案，请先完成注册")
	ErrCompanyNotFound = pkgerrors.New(pkgerrors.KindNotFound, 20204, "企业不存在")
	ErrStudentNotFound = pkgerrors.New(pkgerrors.KindNotFound, 20205, "学生档案不存在")

	// 审核与权限
	ErrAdminOnly      = pkgerrors.New(pkgerrors.KindForbidden, 20301, "仅管理员可操作")
	ErrNotApproved    = pkgerrors.New(pkgerrors.KindForbidden, 20302, "档案尚未通过审核")
	ErrSelfDeactivate = pkgerrors.New(pkgerrors.KindValidation, 20303, "不能停用自己的账号")

	// 职位
	ErrPostNotFound       = pkgerrors.New(pkgerrors.KindNotFound, 20401, "职位不存在")
	ErrCompanyOnly        = pkgerrors.New(pkgerrors.KindForbidden, 20402, "仅企业账号可操作")
	ErrNotPostOwner       = pkgerrors.New(pkgerrors.KindForbidden, 20403, "只能操作本企业发布的职位")
	ErrInvalidWorkField   = pkgerrors.New(pkgerrors.KindValidation, 20404, "work_field 不合法")
	ErrInvalidEmployment  = pkgerrors.New(pkgerrors.KindValidation, 20405, "employment_type 不合法")
	ErrInvalidLocation    = pkgerrors.New(pkgerrors.KindValidation, 20406, "location 不合法")
	ErrInvalidSalaryRange = pkgerrors.New(pkgerrors.KindValidation, 20407, "salary_min 不能大于 salary_max")

	// 投递
	ErrAlreadyApplied       = pkgerrors.New(pkgerrors.KindConflict, 20501, "已投递过该职位")
	ErrApplicationNotFound  = pkgerrors.New(pkgerrors.KindNotFound, 20502, "投递记录不存在")
	ErrInvalidStatus        = pkgerrors.New(pkgerrors.KindValidation, 20503, "投递状态不合法")
	ErrInvalidTransition    = pkgerrors.New(pkgerrors.KindValidation, 20504, "当前状态不允许迁移到目标状态")
	ErrStatusForbidden      = pkgerrors.New(pkgerrors.KindForbidden, 20505, "无权将投递设置为该状态")
	ErrNotApplicationParty  = pkgerrors.New(pkgerrors.KindForbidden, 20506, "无权访问该投递记录")
	ErrExportForbidden      = pkgerrors.New(pkgerrors.KindForbidden, 20507, "仅管理员或企业可导出投递记录")
	ErrExportGenerateFailed = pkgerrors.New(pkgerrors.KindInternal, 20508, "生成 Excel 文件失败")
)
