package ledger

import "math"

// epsilon 金额比较容差（半分）
const epsilon = 0.005

// Round2 四舍五入到分
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Covers 判断 balance 是否足以支付 amount
func Covers(balance, amount float64) bool {
	return balance+epsilon >= amount
}

// IsPositive 金额是否大于零（按分计）
func IsPositive(v float64) bool {
	return Round2(v) > 0
}
