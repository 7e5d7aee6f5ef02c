// Package response 统一的 JSON 响应信封 {code, message, data, details}
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CodeOK 成功业务码
const CodeOK = 0

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// Pagination 分页元数据
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData 管理端分页列表
type PageData struct {
	List       interface{} `json:"list"`
	Pagination Pagination  `json:"pagination"`
}

// ListData 公开列表：{count, results}
type ListData struct {
	Count   int64       `json:"count"`
	Results interface{} `json:"results"`
}

func success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Code: CodeOK, Message: "success", Data: data})
}

// OK 200
func OK(c *gin.Context, data interface{}) { success(c, http.StatusOK, data) }

// Created 201
func Created(c *gin.Context, data interface{}) { success(c, http.StatusCreated, data) }

// OKPage 200 分页列表；pageSize 必须大于 0
func OKPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	success(c, http.StatusOK, PageData{
		List:       list,
		Pagination: Pagination{Page: page, PageSize: pageSize, Total: total, TotalPages: pages},
	})
}

// OKList 200 公开列表
func OKList(c *gin.Context, results interface{}, count int64) {
	success(c, http.StatusOK, ListData{Count: count, Results: results})
}

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{Code: code, Message: message})
}

// ErrorWithData 带结构化数据的错误（字段校验结果、审核意见）
func ErrorWithData(c *gin.Context, httpStatus int, code int, message string, data interface{}) {
	c.JSON(httpStatus, Response{Code: code, Message: message, Data: data})
}

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// ValidationFailed 400，data 为 字段 -> 错误说明
func ValidationFailed(c *gin.Context, fields map[string]string) {
	ErrorWithData(c, http.StatusBadRequest, 10001, "参数校验失败", fields)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// InternalError 500，不向客户端暴露内部错误
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "服务器内部错误")
}
