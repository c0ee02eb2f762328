package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/pkg/response"
	"github.com/qs3c/workshop_server/internal/service"
)

// AdminSubscriptionHandler 后台订阅管理；路径中的 userId 与 subId 必须匹配
type AdminSubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewAdminSubscriptionHandler(subscriptionService *service.SubscriptionService) *AdminSubscriptionHandler {
	return &AdminSubscriptionHandler{subscriptionService: subscriptionService}
}

// List 订阅列表，可按状态过滤
// GET /api/v1/admin/subscriptions?status=&page=&page_size=
func (h *AdminSubscriptionHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)

	views, total, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), c.Query("status"), page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessPage(c, total, page, pageSize, views)
}

// Get 订阅详情
// GET /api/v1/admin/subscriptions/:subId
func (h *AdminSubscriptionHandler) Get(c *gin.Context) {
	subID, ok := pathID(c, "subId")
	if !ok {
		return
	}

	view, err := h.subscriptionService.GetSubscriptionView(c.Request.Context(), subID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// ListForUser 用户的订阅，include_deleted=true 时包含回收站
// GET /api/v1/admin/users/:userId/subscriptions
func (h *AdminSubscriptionHandler) ListForUser(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	views, err := h.subscriptionService.ListUserSubscriptions(c.Request.Context(), userID, boolQuery(c, "include_deleted"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, views)
}

// Add 代用户添加订阅
// POST /api/v1/admin/subscriptions
func (h *AdminSubscriptionHandler) Add(c *gin.Context) {
	var req dto.AdminAddSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	view, err := h.subscriptionService.AddSubscription(c.Request.Context(), req.UserID, &req.AddSubscriptionInput, req.AutoApprove, req.Notify, req.CreditApplied)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "订阅已添加", view)
}

// Update 修改订阅
// PUT /api/v1/admin/users/:userId/subscriptions/:subId
func (h *AdminSubscriptionHandler) Update(c *gin.Context) {
	userID, subID, ok := subscriptionPath(c)
	if !ok {
		return
	}

	var req dto.UpdateSubscriptionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	view, err := h.subscriptionService.UpdateSubscription(c.Request.Context(), userID, subID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "订阅已更新", view)
}

// Approve 审核通过
// POST /api/v1/admin/users/:userId/subscriptions/:subId/approve
func (h *AdminSubscriptionHandler) Approve(c *gin.Context) {
	h.transition(c, "已审核", h.subscriptionService.ApproveSubscription)
}

// Reactivate 退款后重新激活
// POST /api/v1/admin/users/:userId/subscriptions/:subId/reactivate
func (h *AdminSubscriptionHandler) Reactivate(c *gin.Context) {
	h.transition(c, "已重新激活", h.subscriptionService.ReactivateSubscription)
}

// Complete 标记完成
// POST /api/v1/admin/users/:userId/subscriptions/:subId/complete
func (h *AdminSubscriptionHandler) Complete(c *gin.Context) {
	h.transition(c, "已完成", h.subscriptionService.CompleteSubscription)
}

// Refund 退款
// POST /api/v1/admin/users/:userId/subscriptions/:subId/refund
func (h *AdminSubscriptionHandler) Refund(c *gin.Context) {
	userID, subID, ok := subscriptionPath(c)
	if !ok {
		return
	}

	var req dto.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	view, err := h.subscriptionService.RefundSubscription(c.Request.Context(), userID, subID, req.Method)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已退款", view)
}

// Transfer 转课
// POST /api/v1/admin/users/:userId/subscriptions/:subId/transfer
func (h *AdminSubscriptionHandler) Transfer(c *gin.Context) {
	userID, subID, ok := subscriptionPath(c)
	if !ok {
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.subscriptionService.TransferSubscription(c.Request.Context(), userID, subID, req.TargetWorkshopID, req.TargetPackageID, req.Notes)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "转课成功", result)
}

// Delete 移入回收站
// DELETE /api/v1/admin/users/:userId/subscriptions/:subId
func (h *AdminSubscriptionHandler) Delete(c *gin.Context) {
	h.trash(c, "已移入回收站", h.subscriptionService.DeleteSubscription)
}

// Restore 从回收站恢复
// POST /api/v1/admin/users/:userId/subscriptions/:subId/restore
func (h *AdminSubscriptionHandler) Restore(c *gin.Context) {
	h.trash(c, "已恢复", h.subscriptionService.RestoreSubscription)
}

// Purge 永久删除
// DELETE /api/v1/admin/users/:userId/subscriptions/:subId/purge
func (h *AdminSubscriptionHandler) Purge(c *gin.Context) {
	h.trash(c, "已永久删除", h.subscriptionService.PermanentlyDeleteSubscription)
}

// DebtReport 欠款报表
// GET /api/v1/admin/reports/debt
func (h *AdminSubscriptionHandler) DebtReport(c *gin.Context) {
	report, err := h.subscriptionService.DebtReport(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, report)
}

type transitionFunc func(ctx context.Context, userID, subID int64) (*dto.SubscriptionView, error)

func (h *AdminSubscriptionHandler) transition(c *gin.Context, message string, fn transitionFunc) {
	userID, subID, ok := subscriptionPath(c)
	if !ok {
		return
	}

	view, err := fn(c.Request.Context(), userID, subID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, message, view)
}

func (h *AdminSubscriptionHandler) trash(c *gin.Context, message string, fn func(ctx context.Context, userID, subID int64) error) {
	userID, subID, ok := subscriptionPath(c)
	if !ok {
		return
	}

	if err := fn(c.Request.Context(), userID, subID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, message, nil)
}

func subscriptionPath(c *gin.Context) (int64, int64, bool) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return 0, 0, false
	}
	subID, ok := pathID(c, "subId")
	if !ok {
		return 0, 0, false
	}
	return userID, subID, true
}
