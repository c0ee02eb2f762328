package service

import (
	"time"

	"github.com/qs3c/workshop_server/internal/ledger"
	"github.com/qs3c/workshop_server/internal/model"
	"github.com/qs3c/workshop_server/internal/model/dto"
)

// toSubscriptionView 需要预加载 Workshop / Package，User 可选
func toSubscriptionView(sub *model.Subscription) *dto.SubscriptionView {
	view := &dto.SubscriptionView{
		ID:                       sub.ID,
		UserID:                   sub.UserID,
		WorkshopID:               sub.WorkshopID,
		WorkshopTitle:            ledger.WorkshopLabel(sub.Workshop),
		PackageID:                sub.PackageID,
		PackageName:              ledger.PackageLabel(sub.PackageID, sub.Package),
		Status:                   sub.Status,
		IsApproved:               sub.IsApproved,
		PricePaid:                sub.PricePaid,
		CreditApplied:            sub.CreditApplied,
		RequiredPrice:            ledger.RequiredPrice(sub.Workshop, sub.Package),
		RemainingAmount:          ledger.RemainingAmount(sub, sub.Workshop, sub.Package),
		PaymentMethod:            sub.PaymentMethod,
		AttendanceType:           sub.AttendanceType,
		IsGift:                   sub.IsGift,
		GifterName:               sub.GifterName,
		IsPayItForwardDonation:   sub.IsPayItForwardDonation,
		DonationRemaining:        sub.DonationRemaining,
		FundedByDonationID:       sub.FundedByDonationID,
		TransferredToID:          sub.TransferredToID,
		TransferredFromID:        sub.TransferredFromID,
		TransferNote:             sub.TransferNote,
		RefundMethod:             sub.RefundMethod,
		RefundDate:               sub.RefundDate,
		Notes:                    sub.Notes,
		RecordingAccessOverrides: sub.RecordingAccess.Data(),
		IsDeleted:                sub.IsDeleted,
		DeletedAt:                sub.DeletedAt,
		CreatedAt:                sub.CreatedAt,
	}
	if sub.User != nil {
		view.UserName = sub.User.Name
	}
	// 捐赠记录不是个人席位，不计欠款
	if sub.IsPayItForwardDonation {
		view.RemainingAmount = 0
	}

	view.Actions = []string{}
	if !sub.Deleted() && !sub.IsPayItForwardDonation {
		for _, e := range ledger.AvailableEvents(sub.Status) {
			view.Actions = append(view.Actions, string(e))
		}
	}
	return view
}

func toSubscriptionViews(subs []*model.Subscription) []*dto.SubscriptionView {
	views := make([]*dto.SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, toSubscriptionView(sub))
	}
	return views
}

func toUserInfo(user *model.User) *dto.UserInfo {
	return &dto.UserInfo{
		ID:             user.ID,
		Name:           user.Name,
		Email:          deref(user.Email),
		Phone:          deref(user.Phone),
		Role:           user.Role,
		InternalCredit: user.InternalCredit,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
	}
}
