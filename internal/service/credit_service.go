package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qs3c/workshop_server/internal/ledger"
	"github.com/qs3c/workshop_server/internal/model"
	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/pkg/metrics"
	"github.com/qs3c/workshop_server/internal/pkg/pubsub"
	"github.com/qs3c/workshop_server/internal/pkg/queue"
	"github.com/qs3c/workshop_server/internal/repository"
)

type CreditService struct {
	store    *repository.Store
	notifier *Notifier
	now      func() time.Time
}

func NewCreditService(store *repository.Store, notifier *Notifier) *CreditService {
	return &CreditService{
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// creditEntry 追加流水所需的字段
type creditEntry struct {
	userID         int64
	typ            string
	amount         float64
	description    string
	subscriptionID *int64
	orderID        *int64
}

// derivedBalance 由流水计算的余额
func derivedBalance(tx *repository.Store, userID int64) (float64, []model.CreditTransaction, error) {
	txs, err := tx.Credits.ListByUser(userID)
	if err != nil {
		return 0, nil, err
	}
	return ledger.Balance(txs), txs, nil
}

// recomputeCredit 重算并写回缓存余额，必须与流水变更在同一事务内调用
func recomputeCredit(tx *repository.Store, userID int64) (float64, error) {
	balance, _, err := derivedBalance(tx, userID)
	if err != nil {
		return 0, err
	}
	if err := tx.Users.CacheCredit(userID, balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// appendCredit 追加一条流水并重算余额；扣减不允许透支
func appendCredit(tx *repository.Store, e creditEntry) (*model.CreditTransaction, float64, error) {
	amount := ledger.Round2(e.amount)
	if !ledger.IsPositive(amount) {
		return nil, 0, ErrInvalidAmount
	}

	if e.typ == model.CreditSubtraction {
		balance, _, err := derivedBalance(tx, e.userID)
		if err != nil {
			return nil, 0, err
		}
		if !ledger.Covers(balance, amount) {
			return nil, 0, ErrInsufficientCredit
		}
	}

	entry := &model.CreditTransaction{
		UserID:         e.userID,
		Type:           e.typ,
		Amount:         amount,
		Description:    e.description,
		SubscriptionID: e.subscriptionID,
		OrderID:        e.orderID,
	}
	if err := tx.Credits.Create(entry); err != nil {
		return nil, 0, err
	}

	balance, err := recomputeCredit(tx, e.userID)
	if err != nil {
		return nil, 0, err
	}

	metrics.CreditMovedTotal.WithLabelValues(e.typ).Add(amount)
	return entry, balance, nil
}

// AddCredit 增加余额
func (s *CreditService) AddCredit(ctx context.Context, userID int64, amount float64, description string) (*model.CreditTransaction, error) {
	return s.move(ctx, userID, model.CreditAddition, amount, description)
}

// SubtractCredit 扣减余额，不允许透支
func (s *CreditService) SubtractCredit(ctx context.Context, userID int64, amount float64, description string) (*model.CreditTransaction, error) {
	return s.move(ctx, userID, model.CreditSubtraction, amount, description)
}

func (s *CreditService) move(ctx context.Context, userID int64, typ string, amount float64, description string) (*model.CreditTransaction, error) {
	var (
		user    *model.User
		entry   *model.CreditTransaction
		balance float64
	)

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		user, err = tx.Users.GetByID(userID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		entry, balance, err = appendCredit(tx, creditEntry{
			userID:      userID,
			typ:         typ,
			amount:      amount,
			description: description,
		})
		return err
	})
	metrics.ObserveOp("credit_"+typ, err)
	if err != nil {
		return nil, err
	}

	s.announce(ctx, user, entry.Signed(), balance, description)
	return entry, nil
}

// DeleteCreditTransaction 将流水移入回收站
func (s *CreditService) DeleteCreditTransaction(ctx context.Context, userID, txID int64) error {
	return s.toggle(ctx, userID, txID, true)
}

// RestoreCreditTransaction 从回收站恢复流水
func (s *CreditService) RestoreCreditTransaction(ctx context.Context, userID, txID int64) error {
	return s.toggle(ctx, userID, txID, false)
}

func (s *CreditService) toggle(ctx context.Context, userID, txID int64, deleted bool) error {
	var (
		user    *model.User
		entry   *model.CreditTransaction
		balance float64
	)

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		user, err = tx.Users.GetByID(userID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		entry, err = tx.Credits.GetByID(txID)
		if err != nil {
			return notFound(err, ErrCreditTxNotFound)
		}
		if entry.UserID != userID || entry.IsDeleted == deleted {
			return ErrCreditTxNotFound
		}

		_, txs, err := derivedBalance(tx, userID)
		if err != nil {
			return err
		}
		if after := ledger.BalanceIfToggled(txs, txID, deleted); after < 0 {
			return ErrInsufficientCredit
		}

		if deleted {
			err = tx.Credits.SoftDelete(txID, s.now())
		} else {
			err = tx.Credits.Restore(txID)
		}
		if err != nil {
			return notFound(err, ErrCreditTxNotFound)
		}

		balance, err = recomputeCredit(tx, userID)
		return err
	})
	if deleted {
		metrics.ObserveOp("credit_delete", err)
	} else {
		metrics.ObserveOp("credit_restore", err)
	}
	if err != nil {
		return err
	}

	delta := entry.Signed()
	if deleted {
		delta = -delta
	}
	s.announce(ctx, user, delta, balance, entry.Description)
	return nil
}

// PermanentlyDeleteCreditTransaction 永久删除回收站中的流水
func (s *CreditService) PermanentlyDeleteCreditTransaction(ctx context.Context, userID, txID int64) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		entry, err := tx.Credits.GetByID(txID)
		if err != nil {
			return notFound(err, ErrCreditTxNotFound)
		}
		if entry.UserID != userID {
			return ErrCreditTxNotFound
		}
		if !entry.IsDeleted {
			return ErrNotInTrash
		}
		if err := tx.Credits.Purge(txID); err != nil {
			return notFound(err, ErrCreditTxNotFound)
		}
		_, err = recomputeCredit(tx, userID)
		return err
	})
	metrics.ObserveOp("credit_purge", err)
	return err
}

// CreditHistory 按时间顺序的流水与累计余额
func (s *CreditService) CreditHistory(ctx context.Context, userID int64) (*dto.CreditHistory, error) {
	store := s.store.WithContext(ctx)
	if _, err := store.Users.GetByID(userID); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	txs, err := store.Credits.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	return &dto.CreditHistory{
		UserID:  userID,
		Balance: ledger.Balance(txs),
		Lines:   ledger.RunningBalances(txs),
	}, nil
}

// Reconcile 用流水重算缓存余额，返回是否发生修正
func (s *CreditService) Reconcile(ctx context.Context, userID int64) (*dto.ReconcileResult, error) {
	result := &dto.ReconcileResult{UserID: userID}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := tx.Users.GetByID(userID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		result.Cached = ledger.Round2(user.InternalCredit)

		derived, _, err := derivedBalance(tx, userID)
		if err != nil {
			return err
		}
		result.Derived = derived

		if derived == result.Cached {
			return nil
		}
		result.Corrected = true
		return tx.Users.CacheCredit(userID, derived)
	})
	if err != nil {
		return nil, err
	}

	if result.Corrected {
		metrics.CreditDriftTotal.Inc()
		log.Warn().
			Int64("user_id", userID).
			Float64("cached", result.Cached).
			Float64("derived", result.Derived).
			Msg("credit cache drift corrected")
	}
	return result, nil
}

// ReconcileAll 对所有用户执行对账，返回修正的用户数
func (s *CreditService) ReconcileAll(ctx context.Context) (int, error) {
	ids, err := s.store.WithContext(ctx).Users.ListIDs()
	if err != nil {
		return 0, err
	}

	corrected := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return corrected, err
		}
		result, err := s.Reconcile(ctx, id)
		if err != nil {
			return corrected, fmt.Errorf("reconcile user %d: %w", id, err)
		}
		if result.Corrected {
			corrected++
		}
	}
	return corrected, nil
}

func (s *CreditService) announce(ctx context.Context, user *model.User, delta, balance float64, note string) {
	s.notifier.publish(ctx, &pubsub.LedgerEvent{
		Type:    pubsub.EventCreditChanged,
		UserID:  user.ID,
		Amount:  delta,
		Balance: &balance,
		Message: note,
	})
	s.notifier.enqueue(ctx, &queue.NotificationJob{
		Kind:    queue.KindCreditChanged,
		UserID:  user.ID,
		Email:   deref(user.Email),
		Name:    user.Name,
		Amount:  delta,
		Balance: balance,
		Note:    note,
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
