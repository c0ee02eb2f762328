package dto

import "github.com/qs3c/workshop_server/internal/ledger"

// CreditRequest 管理员调整余额
type CreditRequest struct {
	Amount      float64 `json:"amount" binding:"gt=0"`
	Description string  `json:"description" binding:"max=500"`
}

// CreditHistory 余额及按时间顺序的流水
type CreditHistory struct {
	UserID  int64                `json:"user_id"`
	Balance float64              `json:"balance"`
	Lines   []ledger.BalanceLine `json:"lines"`
}

// ReconcileResult 单个用户的对账结果
type ReconcileResult struct {
	UserID    int64   `json:"user_id"`
	Cached    float64 `json:"cached"`
	Derived   float64 `json:"derived"`
	Corrected bool    `json:"corrected"`
}
