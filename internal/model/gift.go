package model

import (
	"time"
)

// PendingGift 送给尚未注册用户的礼物名额，领取后转为 Subscription
type PendingGift struct {
	ID                    int64      `gorm:"primaryKey" json:"id"`
	Code                  string     `gorm:"size:36;uniqueIndex;not null" json:"code"`
	GifterUserID          *int64     `gorm:"index" json:"gifter_user_id,omitempty"`
	GifterName            string     `gorm:"size:100" json:"gifter_name"`
	WorkshopID            int64      `gorm:"not null;index" json:"workshop_id"`
	PackageID             *int64     `json:"package_id,omitempty"`
	PricePaid             float64    `gorm:"type:decimal(10,2);default:0" json:"price_paid"`
	RecipientName         string     `gorm:"size:100" json:"recipient_name"`
	RecipientEmail        string     `gorm:"size:100;index" json:"recipient_email,omitempty"`
	RecipientPhone        string     `gorm:"size:30;index" json:"recipient_phone,omitempty"`
	Message               string     `gorm:"type:text" json:"message,omitempty"`
	ClaimedAt             *time.Time `json:"claimed_at,omitempty"`
	ClaimedByUserID       *int64     `json:"claimed_by_user_id,omitempty"`
	ClaimedSubscriptionID *int64     `json:"claimed_subscription_id,omitempty"`
	SoftDelete
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PendingGift) TableName() string {
	return "pending_gifts"
}

func (g *PendingGift) Claimed() bool {
	return g.ClaimedAt != nil
}
