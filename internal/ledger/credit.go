package ledger

import (
	"sort"

	"github.com/qs3c/workshop_server/internal/model"
)

// Balance 未删除流水的带符号合计，即用户内部余额
func Balance(txs []model.CreditTransaction) float64 {
	var sum float64
	for i := range txs {
		if txs[i].IsDeleted {
			continue
		}
		sum += txs[i].Signed()
	}
	return Round2(sum)
}

// BalanceLine 流水及其之后的累计余额
type BalanceLine struct {
	Transaction model.CreditTransaction `json:"transaction"`
	Balance     float64                 `json:"balance"`
}

// RunningBalances 按时间顺序折叠流水，已删除流水保留但不计入余额
func RunningBalances(txs []model.CreditTransaction) []BalanceLine {
	sorted := make([]model.CreditTransaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	lines := make([]BalanceLine, 0, len(sorted))
	var running float64
	for _, tx := range sorted {
		if !tx.IsDeleted {
			running = Round2(running + tx.Signed())
		}
		lines = append(lines, BalanceLine{Transaction: tx, Balance: running})
	}
	return lines
}

// BalanceIfToggled 将某条流水的删除标记设为 deleted 后的余额
func BalanceIfToggled(txs []model.CreditTransaction, id int64, deleted bool) float64 {
	toggled := make([]model.CreditTransaction, len(txs))
	copy(toggled, txs)
	for i := range toggled {
		if toggled[i].ID == id {
			toggled[i].IsDeleted = deleted
		}
	}
	return Balance(toggled)
}
