package service

import (
	"context"

	"github.com/qs3c/workshop_server/internal/ledger"
	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/repository"
)

type UserService struct {
	store *repository.Store
}

func NewUserService(store *repository.Store) *UserService {
	return &UserService{store: store}
}

// GetProfile 个人中心：订阅、余额流水、订单和送出的礼物
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*dto.Profile, error) {
	store := s.store.WithContext(ctx)

	user, err := store.Users.GetByID(userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	subs, err := store.Subscriptions.ListByUser(userID, false)
	if err != nil {
		return nil, err
	}

	txs, err := store.Credits.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	orders, err := store.Orders.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	gifts, err := store.Gifts.ListByGifter(userID)
	if err != nil {
		return nil, err
	}

	return &dto.Profile{
		User:          toUserInfo(user),
		Subscriptions: toSubscriptionViews(subs),
		Credit: &dto.CreditHistory{
			UserID:  userID,
			Balance: ledger.Balance(txs),
			Lines:   ledger.RunningBalances(txs),
		},
		Orders:    orders,
		GiftsSent: gifts,
	}, nil
}

// ListUsers 管理后台用户列表
func (s *UserService) ListUsers(ctx context.Context, page, pageSize int) ([]*dto.UserInfo, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	users, total, err := s.store.WithContext(ctx).Users.List(page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]*dto.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, toUserInfo(u))
	}
	return infos, total, nil
}
