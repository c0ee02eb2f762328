package model

import (
	"time"
)

const (
	CreditAddition    = "addition"
	CreditSubtraction = "subtraction"
)

// CreditTransaction 内部余额流水，创建后只允许切换软删除标记
type CreditTransaction struct {
	ID             int64   `gorm:"primaryKey" json:"id"`
	UserID         int64   `gorm:"not null;index" json:"user_id"`
	Type           string  `gorm:"size:20;not null" json:"type"`
	Amount         float64 `gorm:"type:decimal(10,2);not null" json:"amount"`
	Description    string  `gorm:"size:500" json:"description"`
	SubscriptionID *int64  `gorm:"index" json:"subscription_id,omitempty"`
	OrderID        *int64  `gorm:"index" json:"order_id,omitempty"`
	SoftDelete
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}

// Signed 带符号金额：addition 为正，subtraction 为负
func (t *CreditTransaction) Signed() float64 {
	if t.Type == CreditSubtraction {
		return -t.Amount
	}
	return t.Amount
}
