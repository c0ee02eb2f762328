package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/pkg/response"
	"github.com/qs3c/workshop_server/internal/service"
)

// MeHandler 当前登录用户的个人中心与自助操作
type MeHandler struct {
	userService         *service.UserService
	subscriptionService *service.SubscriptionService
	giftService         *service.GiftService
	donationService     *service.DonationService
	orderService        *service.OrderService
	creditService       *service.CreditService
}

func NewMeHandler(
	userService *service.UserService,
	subscriptionService *service.SubscriptionService,
	giftService *service.GiftService,
	donationService *service.DonationService,
	orderService *service.OrderService,
	creditService *service.CreditService,
) *MeHandler {
	return &MeHandler{
		userService:         userService,
		subscriptionService: subscriptionService,
		giftService:         giftService,
		donationService:     donationService,
		orderService:        orderService,
		creditService:       creditService,
	}
}

// GetProfile 个人中心
// GET /api/v1/me/profile
func (h *MeHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
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

// ListSubscriptions 我的订阅
// GET /api/v1/me/subscriptions
func (h *MeHandler) ListSubscriptions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	subs, err := h.subscriptionService.ListUserSubscriptions(c.Request.Context(), userID, false)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, subs)
}

// Enroll 报名工作坊，新订阅需管理员审核
// POST /api/v1/me/subscriptions
func (h *MeHandler) Enroll(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	view, err := h.subscriptionService.AddSubscription(c.Request.Context(), userID, &req.AddSubscriptionInput, false, true, req.CreditApplied)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "报名成功，等待审核", view)
}

// BuyGift 购买礼物名额：送给朋友或捐入资金池
// POST /api/v1/me/gifts
func (h *MeHandler) BuyGift(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.GiftCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.giftService.GiftCheckout(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "礼物已发出", result)
}

// Donate 向工作坊资金池捐赠
// POST /api/v1/me/donations
func (h *MeHandler) Donate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	view, err := h.donationService.DonateToPayItForward(c.Request.Context(), req.WorkshopID, req.TotalAmount, req.Seats, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "感谢捐赠", view)
}

// Checkout 商品下单
// POST /api/v1/me/orders
func (h *MeHandler) Checkout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	order, err := h.orderService.Checkout(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "下单成功", order)
}

// ListOrders 我的订单
// GET /api/v1/me/orders
func (h *MeHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, orders)
}

// GetCredit 余额与流水
// GET /api/v1/me/credit
func (h *MeHandler) GetCredit(c *gin.Context) {
	userID, ok := currentUser(c)
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
