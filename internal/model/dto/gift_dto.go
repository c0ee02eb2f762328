package dto

import (
	"errors"

	"github.com/qs3c/workshop_server/internal/model"
)

const (
	GiftTargetFriend = "friend"
	GiftTargetFund   = "fund"
)

var ErrInvalidGiftTarget = errors.New("礼物目标无效")

// Recipient 礼物收件人
type Recipient struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// GiftTarget 送给朋友（recipients）或捐入 pay-it-forward（seats），二选一
type GiftTarget struct {
	Kind       string      `json:"kind" binding:"required,oneof=friend fund"`
	Recipients []Recipient `json:"recipients,omitempty"`
	Seats      int         `json:"seats,omitempty"`
}

// Validate 检查 Kind 与载荷是否匹配
func (t GiftTarget) Validate() error {
	switch t.Kind {
	case GiftTargetFriend:
		if len(t.Recipients) == 0 || t.Seats != 0 {
			return ErrInvalidGiftTarget
		}
		for _, r := range t.Recipients {
			if r.Email == "" && r.Phone == "" {
				return ErrInvalidGiftTarget
			}
		}
	case GiftTargetFund:
		if t.Seats <= 0 || len(t.Recipients) != 0 {
			return ErrInvalidGiftTarget
		}
	default:
		return ErrInvalidGiftTarget
	}
	return nil
}

// Count 本次购买的名额数
func (t GiftTarget) Count() int {
	if t.Kind == GiftTargetFund {
		return t.Seats
	}
	return len(t.Recipients)
}

// GiftCheckoutRequest 礼物下单
type GiftCheckoutRequest struct {
	WorkshopID   int64      `json:"workshop_id" binding:"required"`
	PackageID    *int64     `json:"package_id"`
	PricePerSeat float64    `json:"price_per_seat" binding:"gt=0"`
	Target       GiftTarget `json:"target" binding:"required"`
}

// GiftCheckoutResult 礼物下单结果
type GiftCheckoutResult struct {
	PendingGifts  []*model.PendingGift  `json:"pending_gifts,omitempty"`
	Subscriptions []*model.Subscription `json:"subscriptions,omitempty"`
	Donation      *model.Subscription   `json:"donation,omitempty"`
	Total         float64               `json:"total"`
}

// PendingGiftInput 管理员录入待领取礼物
type PendingGiftInput struct {
	GifterUserID   *int64  `json:"gifter_user_id"`
	GifterName     string  `json:"gifter_name" binding:"required"`
	WorkshopID     int64   `json:"workshop_id" binding:"required"`
	PackageID      *int64  `json:"package_id"`
	PricePaid      float64 `json:"price_paid" binding:"gte=0"`
	RecipientName  string  `json:"recipient_name" binding:"required"`
	RecipientEmail string  `json:"recipient_email" binding:"omitempty,email"`
	RecipientPhone string  `json:"recipient_phone"`
	Message        string  `json:"message"`
}

// UpdatePendingGiftInput 部分更新待领取礼物
type UpdatePendingGiftInput struct {
	GifterName     *string  `json:"gifter_name"`
	PackageID      *int64   `json:"package_id"`
	PricePaid      *float64 `json:"price_paid" binding:"omitempty,gte=0"`
	RecipientName  *string  `json:"recipient_name"`
	RecipientEmail *string  `json:"recipient_email" binding:"omitempty,email"`
	RecipientPhone *string  `json:"recipient_phone"`
	Message        *string  `json:"message"`
}

// ContactInfo 手动领取时的收件人信息，缺省字段取礼物上的收件人信息
type ContactInfo struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

// ClaimResult 领取结果
type ClaimResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	UserID         int64  `json:"user_id,omitempty"`
	SubscriptionID int64  `json:"subscription_id,omitempty"`
	UserCreated    bool   `json:"user_created"`
}
