package dto

const (
	ReclaimCash   = "cash"
	ReclaimCredit = "credit"
)

// DonateRequest 捐入 pay-it-forward 资金池
type DonateRequest struct {
	WorkshopID  int64   `json:"workshop_id" binding:"required"`
	TotalAmount float64 `json:"total_amount" binding:"gt=0"`
	Seats       int     `json:"seats" binding:"gte=0"`
	DonorUserID int64   `json:"donor_user_id"`
}

// GrantSeatRequest 用捐赠为受益人分配名额
type GrantSeatRequest struct {
	BeneficiaryUserID   int64   `json:"beneficiary_user_id" binding:"required"`
	WorkshopID          int64   `json:"workshop_id" binding:"required"`
	SeatPrice           float64 `json:"seat_price" binding:"gt=0"`
	DonorSubscriptionID int64   `json:"donor_subscription_id" binding:"required"`
	Notes               string  `json:"notes"`
}

// ReclaimRequest 收回捐赠余额：退现金或转为余额
type ReclaimRequest struct {
	Seats     int     `json:"seats" binding:"gt=0"`
	UnitPrice float64 `json:"unit_price" binding:"gt=0"`
	Mode      string  `json:"mode" binding:"required,oneof=cash credit"`
}

// ReclaimResult 收回结果
type ReclaimResult struct {
	Amount              float64 `json:"amount"`
	Mode                string  `json:"mode"`
	DonationRemaining   float64 `json:"donation_remaining"`
	CreditTransactionID int64   `json:"credit_transaction_id,omitempty"`
	CreditBalance       float64 `json:"credit_balance,omitempty"`
}

// DonorView 捐赠者视图
type DonorView struct {
	SubscriptionID    int64   `json:"subscription_id"`
	DonorUserID       int64   `json:"donor_user_id"`
	DonorName         string  `json:"donor_name"`
	WorkshopID        int64   `json:"workshop_id"`
	WorkshopTitle     string  `json:"workshop_title"`
	TotalDonated      float64 `json:"total_donated"`
	DonationRemaining float64 `json:"donation_remaining"`
	Seats             int     `json:"seats"`
	SeatPrice         float64 `json:"seat_price"`
	EstimatedSeats    int     `json:"estimated_seats"`
}
