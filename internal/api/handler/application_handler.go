package handler

import (
	"github.com/gin-gonic/gin"

	"kutechnest/backend/internal/dto"
	"kutechnest/backend/internal/service"
	"kutechnest/backend/pkg/response"
)

// ApplicationHandler 投递模块 HTTP 处理器
type ApplicationHandler struct {
	appSvc service.ApplicationService
}

// NewApplicationHandler 创建 ApplicationHandler
func NewApplicationHandler(appSvc service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appSvc: appSvc}
}

// Apply 投递职位
// POST /api/v1/posts/:id/apply
func (h *ApplicationHandler) Apply(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	// 请求体可省略，全部取档案默认值
	var req dto.ApplyRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	result, err := h.appSvc.Apply(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// Prefill 投递表单预填
// GET /api/v1/applications/prefill/:post_id
func (h *ApplicationHandler) Prefill(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	result, err := h.appSvc.Prefill(c.Request.Context(), p, c.Param("post_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// List 按角色过滤的投递列表
// GET /api/v1/applications
func (h *ApplicationHandler) List(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ApplicationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	list, total, err := h.appSvc.List(c.Request.Context(), p, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 投递详情
// GET /api/v1/applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	result, err := h.appSvc.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateStatus 更新投递状态
// PATCH /api/v1/applications/:id/status
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.appSvc.UpdateStatus(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}
