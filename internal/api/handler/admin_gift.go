package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/pkg/response"
	"github.com/qs3c/workshop_server/internal/service"
)

// AdminGiftHandler 待领取礼物管理
type AdminGiftHandler struct {
	giftService *service.GiftService
}

func NewAdminGiftHandler(giftService *service.GiftService) *AdminGiftHandler {
	return &AdminGiftHandler{giftService: giftService}
}

// List 礼物列表
// GET /api/v1/admin/gifts?include_deleted=&include_claimed=
func (h *AdminGiftHandler) List(c *gin.Context) {
	gifts, err := h.giftService.ListPendingGifts(c.Request.Context(), boolQuery(c, "include_deleted"), boolQuery(c, "include_claimed"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, gifts)
}

// Add 登记礼物
// POST /api/v1/admin/gifts
func (h *AdminGiftHandler) Add(c *gin.Context) {
	var req dto.PendingGiftInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	gift, err := h.giftService.AddPendingGift(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "礼物已登记", gift)
}

// Update 修改未领取的礼物
// PUT /api/v1/admin/gifts/:id
func (h *AdminGiftHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePendingGiftInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	gift, err := h.giftService.UpdatePendingGift(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "礼物已更新", gift)
}

// Claim 管理员代领
// POST /api/v1/admin/gifts/:id/claim
func (h *AdminGiftHandler) Claim(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ContactInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.giftService.AdminManualClaimGift(c.Request.Context(), id, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, result.Message, result)
}

// Delete 移入回收站
// DELETE /api/v1/admin/gifts/:id
func (h *AdminGiftHandler) Delete(c *gin.Context) {
	h.trash(c, "已移入回收站", h.giftService.DeletePendingGift)
}

// Restore 从回收站恢复
// POST /api/v1/admin/gifts/:id/restore
func (h *AdminGiftHandler) Restore(c *gin.Context) {
	h.trash(c, "已恢复", h.giftService.RestorePendingGift)
}

// Purge 永久删除
// DELETE /api/v1/admin/gifts/:id/purge
func (h *AdminGiftHandler) Purge(c *gin.Context) {
	h.trash(c, "已永久删除", h.giftService.PermanentlyDeletePendingGift)
}

func (h *AdminGiftHandler) trash(c *gin.Context, message string, fn func(ctx context.Context, id int64) error) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := fn(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, message, nil)
}
