package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/pkg/response"
	"github.com/qs3c/workshop_server/internal/service"
)

// AdminDonationHandler pay-it-forward 资金池管理
type AdminDonationHandler struct {
	donationService *service.DonationService
}

func NewAdminDonationHandler(donationService *service.DonationService) *AdminDonationHandler {
	return &AdminDonationHandler{donationService: donationService}
}

// Donate 代捐赠人登记捐赠
// POST /api/v1/admin/donations
func (h *AdminDonationHandler) Donate(c *gin.Context) {
	var req dto.DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}
	if req.DonorUserID == 0 {
		response.ParamError(c, "缺少 donor_user_id")
		return
	}

	view, err := h.donationService.DonateToPayItForward(c.Request.Context(), req.WorkshopID, req.TotalAmount, req.Seats, req.DonorUserID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "捐赠已登记", view)
}

// Grant 用捐赠为受益人开通名额
// POST /api/v1/admin/donations/grant
func (h *AdminDonationHandler) Grant(c *gin.Context) {
	var req dto.GrantSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	view, err := h.donationService.GrantPayItForwardSeat(c.Request.Context(),
		req.BeneficiaryUserID, req.WorkshopID, req.SeatPrice, req.DonorSubscriptionID, req.Notes)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "名额已开通", view)
}

// Reclaim 收回未使用的捐赠
// POST /api/v1/admin/donations/:subId/reclaim
func (h *AdminDonationHandler) Reclaim(c *gin.Context) {
	subID, ok := pathID(c, "subId")
	if !ok {
		return
	}

	var req dto.ReclaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.donationService.ReclaimDonation(c.Request.Context(), subID, req.Seats, req.UnitPrice, req.Mode)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "捐赠已收回", result)
}

// ListDonors 工作坊的捐赠人
// GET /api/v1/admin/workshops/:id/donors
func (h *AdminDonationHandler) ListDonors(c *gin.Context) {
	workshopID, ok := pathID(c, "id")
	if !ok {
		return
	}

	donors, err := h.donationService.ListDonors(c.Request.Context(), workshopID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, donors)
}
