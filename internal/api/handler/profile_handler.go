package handler

import (
	"github.com/gin-gonic/gin"

	"kutechnest/backend/internal/dto"
	"kutechnest/backend/internal/service"
	"kutechnest/backend/pkg/response"
)

// ProfileHandler 学生/企业档案 HTTP 处理器
type ProfileHandler struct {
	profileSvc service.ProfileService
}

// NewProfileHandler 创建 ProfileHandler
func NewProfileHandler(profileSvc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

// RegisterStudent 注册学生档案
// POST /api/v1/students/register
func (h *ProfileHandler) RegisterStudent(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.StudentRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	student, err := h.profileSvc.RegisterStudent(c.Request.Context(), p, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, student)
}

// RegisterCompany 注册企业档案（经内容审核）
// POST /api/v1/companies/register
func (h *ProfileHandler) RegisterCompany(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.CompanyRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	company, verdict, err := h.profileSvc.RegisterCompany(c.Request.Context(), p, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, gin.H{"company": company, "validation": verdict})
}

// GetProfile 当前角色对应的档案
// GET /api/v1/profile/me
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	result, err := h.profileSvc.GetOwnProfile(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// GetStudent 本人学生档案
// GET /api/v1/students/me
func (h *ProfileHandler) GetStudent(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	student, err := h.profileSvc.GetOwnStudent(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, student)
}

// UpdateStudent 更新本人学生档案
// PATCH /api/v1/students/me
func (h *ProfileHandler) UpdateStudent(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.StudentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	student, err := h.profileSvc.UpdateStudent(c.Request.Context(), p, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, student)
}

// GetCompany 本人企业档案
// GET /api/v1/companies/me
func (h *ProfileHandler) GetCompany(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	company, err := h.profileSvc.GetOwnCompany(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, company)
}

// UpdateCompany 更新本人企业档案（重新审核）
// PATCH /api/v1/companies/me
func (h *ProfileHandler) UpdateCompany(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.CompanyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	company, verdict, err := h.profileSvc.UpdateCompany(c.Request.Context(), p, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"company": company, "validation": verdict})
}

// ListCompanies 公开企业目录
// GET /api/v1/companies
func (h *ProfileHandler) ListCompanies(c *gin.Context) {
	var req dto.CompanyListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	list, total, err := h.profileSvc.ListCompanies(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKList(c, list, total)
}

// GetPublicCompany 公开企业详情
// GET /api/v1/companies/:id
func (h *ProfileHandler) GetPublicCompany(c *gin.Context) {
	company, err := h.profileSvc.GetCompany(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, company)
}
