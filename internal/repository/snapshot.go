package repository

import (
	"github.com/qs3c/workshop_server/internal/model"
)

// Snapshot 账本全量导出，包含回收站中的记录
type Snapshot struct {
	Users              []model.User              `json:"users"`
	Workshops          []model.Workshop          `json:"workshops"`
	Subscriptions      []model.Subscription      `json:"subscriptions"`
	PendingGifts       []model.PendingGift       `json:"pending_gifts"`
	CreditTransactions []model.CreditTransaction `json:"credit_transactions"`
	Products           []model.Product           `json:"products"`
	Orders             []model.Order             `json:"orders"`
}

// Snapshot 读取所有账本数据，建议在只读事务中调用以保证一致
func (s *Store) Snapshot() (*Snapshot, error) {
	snap := &Snapshot{}
	steps := []func() error{
		func() error { return s.db.Order("id").Find(&snap.Users).Error },
		func() error { return s.db.Preload("Packages").Order("id").Find(&snap.Workshops).Error },
		func() error { return s.db.Order("id").Find(&snap.Subscriptions).Error },
		func() error { return s.db.Order("id").Find(&snap.PendingGifts).Error },
		func() error { return s.db.Order("id").Find(&snap.CreditTransactions).Error },
		func() error { return s.db.Order("id").Find(&snap.Products).Error },
		func() error { return s.db.Order("id").Find(&snap.Orders).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	return snap, nil
}
