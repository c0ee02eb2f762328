package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/workshop_server/internal/model"
	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/pkg/response"
	"github.com/qs3c/workshop_server/internal/service"
)

// AdminCreditHandler 用户内部余额管理
type AdminCreditHandler struct {
	creditService *service.CreditService
}

func NewAdminCreditHandler(creditService *service.CreditService) *AdminCreditHandler {
	return &AdminCreditHandler{creditService: creditService}
}

// History 余额与流水（含回收站中的流水）
// GET /api/v1/admin/users/:userId/credit
func (h *AdminCreditHandler) History(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	history, err := h.creditService.CreditHistory(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, history)
}

// Add 增加余额
// POST /api/v1/admin/users/:userId/credit/add
func (h *AdminCreditHandler) Add(c *gin.Context) {
	h.move(c, "余额已增加", h.creditService.AddCredit)
}

// Subtract 扣减余额
// POST /api/v1/admin/users/:userId/credit/subtract
func (h *AdminCreditHandler) Subtract(c *gin.Context) {
	h.move(c, "余额已扣减", h.creditService.SubtractCredit)
}

// Delete 流水移入回收站
// DELETE /api/v1/admin/users/:userId/credit/transactions/:txId
func (h *AdminCreditHandler) Delete(c *gin.Context) {
	h.trash(c, "已移入回收站", h.creditService.DeleteCreditTransaction)
}

// Restore 恢复流水
// POST /api/v1/admin/users/:userId/credit/transactions/:txId/restore
func (h *AdminCreditHandler) Restore(c *gin.Context) {
	h.trash(c, "已恢复", h.creditService.RestoreCreditTransaction)
}

// Purge 永久删除流水
// DELETE /api/v1/admin/users/:userId/credit/transactions/:txId/purge
func (h *AdminCreditHandler) Purge(c *gin.Context) {
	h.trash(c, "已永久删除", h.creditService.PermanentlyDeleteCreditTransaction)
}

// Reconcile 单个用户对账
// POST /api/v1/admin/users/:userId/credit/reconcile
func (h *AdminCreditHandler) Reconcile(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	result, err := h.creditService.Reconcile(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, result)
}

type moveFunc func(ctx context.Context, userID int64, amount float64, description string) (*model.CreditTransaction, error)

func (h *AdminCreditHandler) move(c *gin.Context, message string, fn moveFunc) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	var req dto.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	entry, err := fn(c.Request.Context(), userID, req.Amount, req.Description)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, message, entry)
}

func (h *AdminCreditHandler) trash(c *gin.Context, message string, fn func(ctx context.Context, userID, txID int64) error) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}
	txID, ok := pathID(c, "txId")
	if !ok {
		return
	}

	if err := fn(c.Request.Context(), userID, txID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, message, nil)
}
