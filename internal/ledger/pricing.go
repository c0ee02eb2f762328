package ledger

import (
	"math"

	"github.com/qs3c/workshop_server/internal/model"
)

const (
	DeletedPackageLabel  = "باقة محذوفة"
	DeletedWorkshopLabel = "ورشة محذوفة"
)

// RequiredPrice 应付价格：package.discountPrice ?? package.price ?? workshop.price ?? 0
func RequiredPrice(workshop *model.Workshop, pkg *model.Package) float64 {
	if pkg != nil {
		if pkg.DiscountPrice != nil {
			return Round2(*pkg.DiscountPrice)
		}
		return Round2(pkg.Price)
	}
	if workshop != nil && workshop.Price != nil {
		return Round2(*workshop.Price)
	}
	return 0
}

// RemainingAmount 欠款 = max(0, 应付 - 已付)；礼物订阅视为已结清
func RemainingAmount(sub *model.Subscription, workshop *model.Workshop, pkg *model.Package) float64 {
	if sub.PaymentMethod == model.PaymentGift {
		return 0
	}
	remaining := Round2(RequiredPrice(workshop, pkg) - sub.PricePaid)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// EstimatedSeats 捐赠余额还能覆盖多少个名额
func EstimatedSeats(remaining, seatPrice float64) int {
	if seatPrice <= 0 || remaining <= 0 {
		return 0
	}
	return int(math.Floor(Round2(remaining)/Round2(seatPrice) + 1e-9))
}

// WorkshopLabel 工作坊显示名，已删除或缺失时降级为占位文案
func WorkshopLabel(workshop *model.Workshop) string {
	if workshop == nil || workshop.IsDeleted {
		return DeletedWorkshopLabel
	}
	return workshop.Title
}

// PackageLabel 套餐显示名，无套餐返回空串
func PackageLabel(packageID *int64, pkg *model.Package) string {
	if packageID == nil {
		return ""
	}
	if pkg == nil || pkg.IsDeleted {
		return DeletedPackageLabel
	}
	return pkg.Name
}

// SeatPrice 单个名额的价格：工作坊基础价，否则取最便宜的有效套餐
func SeatPrice(workshop *model.Workshop) float64 {
	if workshop == nil {
		return 0
	}
	if workshop.Price != nil {
		return Round2(*workshop.Price)
	}
	var cheapest float64
	for i := range workshop.Packages {
		pkg := &workshop.Packages[i]
		if pkg.IsDeleted {
			continue
		}
		price := RequiredPrice(workshop, pkg)
		if cheapest == 0 || price < cheapest {
			cheapest = price
		}
	}
	return cheapest
}
