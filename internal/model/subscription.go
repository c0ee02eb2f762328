package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusActive      = "ACTIVE"
	StatusPending     = "PENDING"
	StatusTransferred = "TRANSFERRED"
	StatusRefunded    = "REFUNDED"
	StatusCompleted   = "COMPLETED"
)

const (
	PaymentCard         = "CARD"
	PaymentLink         = "LINK"
	PaymentBankTransfer = "BANK_TRANSFER"
	PaymentCash         = "CASH"
	PaymentCredit       = "CREDIT"
	PaymentGift         = "GIFT"
	PaymentPayItForward = "PAY_IT_FORWARD"
)

const (
	AttendanceOnline   = "ONLINE"
	AttendanceInPerson = "IN_PERSON"
	AttendanceRecorded = "RECORDED"
)

// AccessWindow 单个录播的访问时间覆盖
type AccessWindow struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// RecordingOverrides recordingID -> 访问窗口
type RecordingOverrides map[string]AccessWindow

type Subscription struct {
	ID                     int64                                  `gorm:"primaryKey" json:"id"`
	UserID                 int64                                  `gorm:"not null;index" json:"user_id"`
	WorkshopID             int64                                  `gorm:"not null;index" json:"workshop_id"`
	PackageID              *int64                                 `gorm:"index" json:"package_id,omitempty"`
	Status                 string                                 `gorm:"size:20;default:PENDING;index" json:"status"`
	IsApproved             *bool                                  `json:"is_approved,omitempty"`
	PricePaid              float64                                `gorm:"type:decimal(10,2);default:0" json:"price_paid"`
	CreditApplied          float64                                `gorm:"type:decimal(10,2);default:0" json:"credit_applied"`
	PaymentMethod          string                                 `gorm:"size:20" json:"payment_method"`
	AttendanceType         string                                 `gorm:"size:20" json:"attendance_type,omitempty"`
	IsPayItForwardDonation bool                                   `gorm:"default:false;index" json:"is_pay_it_forward_donation"`
	DonationRemaining      float64                                `gorm:"type:decimal(10,2);default:0" json:"donation_remaining"`
	DonationSeats          int                                    `gorm:"default:0" json:"donation_seats,omitempty"`
	FundedByDonationID     *int64                                 `gorm:"index" json:"funded_by_donation_id,omitempty"`
	IsGift                 bool                                   `gorm:"default:false" json:"is_gift"`
	GifterName             string                                 `gorm:"size:100" json:"gifter_name,omitempty"`
	GifterUserID           *int64                                 `json:"gifter_user_id,omitempty"`
	TransferredToID        *int64                                 `json:"transferred_to_id,omitempty"`
	TransferredFromID      *int64                                 `json:"transferred_from_id,omitempty"`
	TransferNote           string                                 `gorm:"type:text" json:"transfer_note,omitempty"`
	RefundMethod           string                                 `gorm:"size:20" json:"refund_method,omitempty"`
	RefundDate             *time.Time                             `json:"refund_date,omitempty"`
	Notes                  string                                 `gorm:"type:text" json:"notes,omitempty"`
	RecordingAccess        datatypes.JSONType[RecordingOverrides] `gorm:"column:recording_access_overrides" json:"recording_access_overrides"`
	SoftDelete
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Workshop *Workshop `gorm:"foreignKey:WorkshopID" json:"workshop,omitempty"`
	Package  *Package  `gorm:"foreignKey:PackageID" json:"package,omitempty"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// Live 未删除且仍占用席位
func (s *Subscription) Live() bool {
	return !s.IsDeleted && (s.Status == StatusActive || s.Status == StatusPending)
}
