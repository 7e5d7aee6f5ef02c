package handler

import (
	"github.com/gin-gonic/gin"

	"kutechnest/backend/internal/dto"
	"kutechnest/backend/internal/service"
	"kutechnest/backend/pkg/response"
)

// PostHandler 职位模块 HTTP 处理器
type PostHandler struct {
	postSvc service.PostService
}

// NewPostHandler 创建 PostHandler
func NewPostHandler(postSvc service.PostService) *PostHandler {
	return &PostHandler{postSvc: postSvc}
}

// List 公开职位列表
// GET /api/v1/posts
func (h *PostHandler) List(c *gin.Context) {
	var req dto.PostListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	list, total, err := h.postSvc.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKList(c, list, total)
}

// ListByCompany 企业主页职位列表
// GET /api/v1/companies/:id/posts
func (h *PostHandler) ListByCompany(c *gin.Context) {
	var req dto.PostListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	list, total, err := h.postSvc.ListByCompany(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OKList(c, list, total)
}

// Get 职位详情（可匿名）
// GET /api/v1/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.postSvc.Get(c.Request.Context(), OptionalPrincipal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, post)
}

// Choices 职位枚举项
// GET /api/v1/posts/choices
func (h *PostHandler) Choices(c *gin.Context) {
	response.OK(c, h.postSvc.Choices())
}

// Create 发布职位（已审核企业）
// POST /api/v1/posts
func (h *PostHandler) Create(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.postSvc.Create(c.Request.Context(), p, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, result)
}

// Update 更新职位（重新审核）
// PATCH /api/v1/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.postSvc.Update(c.Request.Context(), p, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除职位（软删除）
// DELETE /api/v1/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	if err := h.postSvc.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, nil)
}
