package handler

import (
	"github.com/gin-gonic/gin"

	"kutechnest/backend/internal/dto"
	"kutechnest/backend/internal/service"
	"kutechnest/backend/pkg/response"
)

// AdminHandler 审核与账号管理 HTTP 处理器（仅 admin）
type AdminHandler struct {
	adminSvc service.AdminService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(adminSvc service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// ApproveStudent 审核学生档案
// PATCH /api/v1/admin/students/:account_id/approve
func (h *AdminHandler) ApproveStudent(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	student, err := h.adminSvc.SetStudentApproval(c.Request.Context(), p, c.Param("account_id"), *req.Approve)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, student)
}

// ApproveCompany 审核企业档案
// PATCH /api/v1/admin/companies/:account_id/approve
func (h *AdminHandler) ApproveCompany(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	company, err := h.adminSvc.SetCompanyApproval(c.Request.Context(), p, c.Param("account_id"), *req.Approve)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, company)
}

// SetAccountActive 启用/停用账号
// PATCH /api/v1/admin/accounts/:account_id/active
func (h *AdminHandler) SetAccountActive(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.adminSvc.SetAccountActive(c.Request.Context(), p, c.Param("account_id"), *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, account)
}

// ListStudents 学生审核队列
// GET /api/v1/admin/students
func (h *AdminHandler) ListStudents(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ReviewListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	list, total, err := h.adminSvc.ListStudents(c.Request.Context(), p, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListCompanies 企业审核队列
// GET /api/v1/admin/companies
func (h *AdminHandler) ListCompanies(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ReviewListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	list, total, err := h.adminSvc.ListCompanies(c.Request.Context(), p, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}
