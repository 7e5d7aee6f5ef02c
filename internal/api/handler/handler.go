package handler

import (
	"sync"

	"kutechnest/backend/internal/service"
)

var tagNameOnce sync.Once

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	Profile     *ProfileHandler
	Admin       *AdminHandler
	Post        *PostHandler
	Application *ApplicationHandler
	Export      *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	tagNameOnce.Do(useJSONFieldNames)
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		Profile:     NewProfileHandler(svc.Profile),
		Admin:       NewAdminHandler(svc.Admin),
		Post:        NewPostHandler(svc.Post),
		Application: NewApplicationHandler(svc.Application),
		Export:      NewExportHandler(svc.Export),
	}
}
