package dto

import (
	"time"

	"github.com/qs3c/workshop_server/internal/model"
)

// AddSubscriptionInput 新建订阅；PricePaid 为现金部分，余额抵扣另计
type AddSubscriptionInput struct {
	WorkshopID     int64   `json:"workshop_id" binding:"required"`
	PackageID      *int64  `json:"package_id"`
	PricePaid      float64 `json:"price_paid" binding:"gte=0"`
	PaymentMethod  string  `json:"payment_method"`
	AttendanceType string  `json:"attendance_type"`
	Notes          string  `json:"notes"`
}

// AdminAddSubscriptionRequest 管理员为用户添加订阅
type AdminAddSubscriptionRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
	AddSubscriptionInput
	AutoApprove   bool    `json:"auto_approve"`
	Notify        bool    `json:"notify"`
	CreditApplied float64 `json:"credit_applied" binding:"gte=0"`
}

// EnrollRequest 用户自助报名
type EnrollRequest struct {
	AddSubscriptionInput
	CreditApplied float64 `json:"credit_applied" binding:"gte=0"`
}

// UpdateSubscriptionInput 部分更新，状态字段不能通过此接口修改
type UpdateSubscriptionInput struct {
	PricePaid                *float64                  `json:"price_paid" binding:"omitempty,gte=0"`
	PackageID                *int64                    `json:"package_id"`
	ClearPackage             bool                      `json:"clear_package"`
	AttendanceType           *string                   `json:"attendance_type"`
	PaymentMethod            *string                   `json:"payment_method"`
	Notes                    *string                   `json:"notes"`
	RecordingAccessOverrides *model.RecordingOverrides `json:"recording_access_overrides"`
}

// TransferRequest 转课
type TransferRequest struct {
	TargetWorkshopID int64  `json:"target_workshop_id" binding:"required"`
	TargetPackageID  *int64 `json:"target_package_id"`
	Notes            string `json:"notes"`
}

// RefundRequest 退款
type RefundRequest struct {
	Method string `json:"method" binding:"required"`
}

// TransferResult 转课结果
type TransferResult struct {
	Original    *SubscriptionView `json:"original"`
	Transferred *SubscriptionView `json:"transferred"`
	Difference  float64           `json:"difference"`
	CreditAdded float64           `json:"credit_added"`
	Debt        float64           `json:"debt"`
}

// SubscriptionView 订阅及其计算字段
type SubscriptionView struct {
	ID                       int64                    `json:"id"`
	UserID                   int64                    `json:"user_id"`
	UserName                 string                   `json:"user_name,omitempty"`
	WorkshopID               int64                    `json:"workshop_id"`
	WorkshopTitle            string                   `json:"workshop_title"`
	PackageID                *int64                   `json:"package_id,omitempty"`
	PackageName              string                   `json:"package_name,omitempty"`
	Status                   string                   `json:"status"`
	IsApproved               *bool                    `json:"is_approved,omitempty"`
	PricePaid                float64                  `json:"price_paid"`
	CreditApplied            float64                  `json:"credit_applied"`
	RequiredPrice            float64                  `json:"required_price"`
	RemainingAmount          float64                  `json:"remaining_amount"`
	PaymentMethod            string                   `json:"payment_method"`
	AttendanceType           string                   `json:"attendance_type,omitempty"`
	IsGift                   bool                     `json:"is_gift"`
	GifterName               string                   `json:"gifter_name,omitempty"`
	IsPayItForwardDonation   bool                     `json:"is_pay_it_forward_donation"`
	DonationRemaining        float64                  `json:"donation_remaining,omitempty"`
	FundedByDonationID       *int64                   `json:"funded_by_donation_id,omitempty"`
	TransferredToID          *int64                   `json:"transferred_to_id,omitempty"`
	TransferredFromID        *int64                   `json:"transferred_from_id,omitempty"`
	TransferNote             string                   `json:"transfer_note,omitempty"`
	RefundMethod             string                   `json:"refund_method,omitempty"`
	RefundDate               *time.Time               `json:"refund_date,omitempty"`
	Notes                    string                   `json:"notes,omitempty"`
	RecordingAccessOverrides model.RecordingOverrides `json:"recording_access_overrides,omitempty"`
	Actions                  []string                 `json:"actions"`
	IsDeleted                bool                     `json:"is_deleted"`
	DeletedAt                *time.Time               `json:"deleted_at,omitempty"`
	CreatedAt                time.Time                `json:"created_at"`
}

// DebtLine 欠款报表中的一行
type DebtLine struct {
	SubscriptionID int64   `json:"subscription_id"`
	UserID         int64   `json:"user_id"`
	UserName       string  `json:"user_name"`
	WorkshopID     int64   `json:"workshop_id"`
	WorkshopTitle  string  `json:"workshop_title"`
	PackageName    string  `json:"package_name,omitempty"`
	Status         string  `json:"status"`
	RequiredPrice  float64 `json:"required_price"`
	PricePaid      float64 `json:"price_paid"`
	Remaining      float64 `json:"remaining"`
}

// DebtReport 欠款报表
type DebtReport struct {
	Lines []DebtLine `json:"lines"`
	Total float64    `json:"total"`
}
