package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store 聚合所有仓储，便于在同一事务内完成多步账本操作
type Store struct {
	db *gorm.DB

	Users         *UserRepository
	Workshops     *WorkshopRepository
	Subscriptions *SubscriptionRepository
	Gifts         *PendingGiftRepository
	Credits       *CreditTransactionRepository
	Products      *ProductRepository
	Orders        *OrderRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Users:         NewUserRepository(db),
		Workshops:     NewWorkshopRepository(db),
		Subscriptions: NewSubscriptionRepository(db),
		Gifts:         NewPendingGiftRepository(db),
		Credits:       NewCreditTransactionRepository(db),
		Products:      NewProductRepository(db),
		Orders:        NewOrderRepository(db),
	}
}

// DB 底层连接
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithContext 返回绑定 ctx 的 Store
func (s *Store) WithContext(ctx context.Context) *Store {
	return NewStore(s.db.WithContext(ctx))
}

// Transaction 在单个数据库事务内执行 fn，fn 返回错误时整体回滚
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
