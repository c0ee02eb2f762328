package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/workshop_server/internal/pkg/response"
	"github.com/qs3c/workshop_server/internal/service"
)

// AdminSystemHandler 用户列表与账本维护
type AdminSystemHandler struct {
	userService        *service.UserService
	maintenanceService *service.MaintenanceService
	retentionDays      int
}

func NewAdminSystemHandler(userService *service.UserService, maintenanceService *service.MaintenanceService, retentionDays int) *AdminSystemHandler {
	return &AdminSystemHandler{
		userService:        userService,
		maintenanceService: maintenanceService,
		retentionDays:      retentionDays,
	}
}

// ListUsers GET /api/v1/admin/users?page=&page_size=
func (h *AdminSystemHandler) ListUsers(c *gin.Context) {
	page, pageSize := pageParams(c)

	users, total, err := h.userService.ListUsers(c.Request.Context(), page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessPage(c, total, page, pageSize, users)
}

// GetUserProfile GET /api/v1/admin/users/:userId
func (h *AdminSystemHandler) GetUserProfile(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, profile)
}

// ReconcileAll 全量对账
// POST /api/v1/admin/credit/reconcile
func (h *AdminSystemHandler) ReconcileAll(c *gin.Context) {
	corrected, err := h.maintenanceService.Reconcile(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"corrected": corrected})
}

// PurgeTrash 清理超过保留期的回收站记录
// POST /api/v1/admin/trash/purge
func (h *AdminSystemHandler) PurgeTrash(c *gin.Context) {
	report, err := h.maintenanceService.PurgeExpired(c.Request.Context(), h.retentionDays)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, report)
}

// ExportSnapshot 导出账本快照到 OSS
// POST /api/v1/admin/snapshot
func (h *AdminSystemHandler) ExportSnapshot(c *gin.Context) {
	key, err := h.maintenanceService.ExportSnapshot(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "快照已导出", gin.H{"key": key})
}
