package dto

import "github.com/qs3c/workshop_server/internal/model"

// Profile 个人中心
type Profile struct {
	User          *UserInfo            `json:"user"`
	Subscriptions []*SubscriptionView  `json:"subscriptions"`
	Credit        *CreditHistory       `json:"credit"`
	Orders        []*model.Order       `json:"orders"`
	GiftsSent     []*model.PendingGift `json:"gifts_sent"`
}
