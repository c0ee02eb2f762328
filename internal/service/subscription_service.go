package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/qs3c/workshop_server/internal/ledger"
	"github.com/qs3c/workshop_server/internal/model"
	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/pkg/metrics"
	"github.com/qs3c/workshop_server/internal/pkg/pubsub"
	"github.com/qs3c/workshop_server/internal/pkg/queue"
	"github.com/qs3c/workshop_server/internal/repository"
)

var paymentMethods = map[string]bool{
	model.PaymentCard:         true,
	model.PaymentLink:         true,
	model.PaymentBankTransfer: true,
	model.PaymentCash:         true,
	model.PaymentCredit:       true,
	model.PaymentGift:         true,
	model.PaymentPayItForward: true,
}

var attendanceTypes = map[string]bool{
	model.AttendanceOnline:   true,
	model.AttendanceInPerson: true,
	model.AttendanceRecorded: true,
}

type SubscriptionService struct {
	store    *repository.Store
	notifier *Notifier
	now      func() time.Time
}

func NewSubscriptionService(store *repository.Store, notifier *Notifier) *SubscriptionService {
	return &SubscriptionService{
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// resolvePaymentMethod 未指定时纯余额支付记为 CREDIT，否则默认 CARD
func resolvePaymentMethod(method string, cash, credit float64) (string, error) {
	if method == "" {
		if credit > 0 && cash == 0 {
			return model.PaymentCredit, nil
		}
		return model.PaymentCard, nil
	}
	if !paymentMethods[method] {
		return "", ErrInvalidPaymentMethod
	}
	return method, nil
}

// loadWorkshop 查询未删除的工作坊及其套餐，packageID 非空时校验套餐归属
func loadWorkshop(tx *repository.Store, workshopID int64, packageID *int64) (*model.Workshop, *model.Package, error) {
	workshop, err := tx.Workshops.GetByID(workshopID)
	if err != nil {
		return nil, nil, notFound(err, ErrWorkshopNotFound)
	}
	if workshop.IsDeleted {
		return nil, nil, ErrWorkshopNotFound
	}
	if packageID == nil {
		return workshop, nil, nil
	}
	pkg := workshop.FindPackage(*packageID)
	if pkg == nil {
		return nil, nil, ErrPackageNotFound
	}
	return workshop, pkg, nil
}

// loadOwned 查询属于该用户的订阅
func loadOwned(tx *repository.Store, userID, subID int64) (*model.Subscription, error) {
	sub, err := tx.Subscriptions.GetByID(subID)
	if err != nil {
		return nil, notFound(err, ErrSubscriptionNotFound)
	}
	if sub.UserID != userID {
		return nil, ErrSubscriptionNotFound
	}
	return sub, nil
}

// AddSubscription 为用户添加订阅；in.PricePaid 为现金部分，creditApplied 从余额扣除
func (s *SubscriptionService) AddSubscription(ctx context.Context, userID int64, in *dto.AddSubscriptionInput, autoApprove, notify bool, creditApplied float64) (*dto.SubscriptionView, error) {
	cash := ledger.Round2(in.PricePaid)
	credit := ledger.Round2(creditApplied)
	if cash < 0 || credit < 0 {
		return nil, ErrInvalidAmount
	}
	method, err := resolvePaymentMethod(in.PaymentMethod, cash, credit)
	if err != nil {
		return nil, err
	}
	if in.AttendanceType != "" && !attendanceTypes[in.AttendanceType] {
		return nil, ErrInvalidAttendance
	}

	var (
		user *model.User
		sub  *model.Subscription
	)

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		user, err = tx.Users.GetByID(userID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}

		workshop, pkg, err := loadWorkshop(tx, in.WorkshopID, in.PackageID)
		if err != nil {
			return err
		}

		exists, err := tx.Subscriptions.ExistsLive(userID, workshop.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateSubscription
		}

		status, approved := ledger.InitialStatus(autoApprove)
		sub = &model.Subscription{
			UserID:         userID,
			WorkshopID:     workshop.ID,
			PackageID:      in.PackageID,
			Status:         status,
			IsApproved:     &approved,
			PricePaid:      ledger.Round2(cash + credit),
			CreditApplied:  credit,
			PaymentMethod:  method,
			AttendanceType: in.AttendanceType,
			Notes:          in.Notes,
		}
		if err := tx.Subscriptions.Create(sub); err != nil {
			return err
		}

		if credit > 0 {
			_, _, err := appendCredit(tx, creditEntry{
				userID:         userID,
				typ:            model.CreditSubtraction,
				amount:         credit,
				description:    fmt.Sprintf("报名抵扣：%s", workshop.Title),
				subscriptionID: &sub.ID,
			})
			if err != nil {
				return err
			}
		}

		sub.User = user
		sub.Workshop = workshop
		sub.Package = pkg
		return nil
	})
	metrics.ObserveOp("add_subscription", err)
	if err != nil {
		return nil, err
	}

	s.notifier.publish(ctx, &pubsub.LedgerEvent{
		Type:           pubsub.EventSubscriptionCreated,
		UserID:         userID,
		WorkshopID:     sub.WorkshopID,
		SubscriptionID: sub.ID,
		Status:         sub.Status,
		Amount:         sub.PricePaid,
	})
	if notify {
		s.notifier.enqueue(ctx, &queue.NotificationJob{
			Kind:           queue.KindEnrollment,
			UserID:         userID,
			Email:          deref(user.Email),
			Name:           user.Name,
			WorkshopID:     sub.WorkshopID,
			WorkshopTitle:  sub.Workshop.Title,
			SubscriptionID: sub.ID,
		})
	}

	return toSubscriptionView(sub), nil
}

// UpdateSubscription 部分更新订阅的非状态字段
func (s *SubscriptionService) UpdateSubscription(ctx context.Context, userID, subID int64, in *dto.UpdateSubscriptionInput) (*dto.SubscriptionView, error) {
	var view *dto.SubscriptionView

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		sub, err := loadOwned(tx, userID, subID)
		if err != nil {
			return err
		}
		if sub.IsDeleted {
			return ErrSubscriptionDeleted
		}

		if in.PricePaid != nil {
			if sub.IsPayItForwardDonation {
				return ErrDonationEntry
			}
			if *in.PricePaid < 0 {
				return ErrInvalidAmount
			}
			sub.PricePaid = ledger.Round2(*in.PricePaid)
		}

		switch {
		case in.ClearPackage:
			sub.PackageID = nil
		case in.PackageID != nil:
			if _, _, err := loadWorkshop(tx, sub.WorkshopID, in.PackageID); err != nil {
				return err
			}
			sub.PackageID = in.PackageID
		}

		if in.AttendanceType != nil {
			if *in.AttendanceType != "" && !attendanceTypes[*in.AttendanceType] {
				return ErrInvalidAttendance
			}
			sub.AttendanceType = *in.AttendanceType
		}
		if in.PaymentMethod != nil {
			if !paymentMethods[*in.PaymentMethod] {
				return ErrInvalidPaymentMethod
			}
			sub.PaymentMethod = *in.PaymentMethod
		}
		if in.Notes != nil {
			sub.Notes = *in.Notes
		}
		if in.RecordingAccessOverrides != nil {
			sub.RecordingAccess = datatypes.NewJSONType(*in.RecordingAccessOverrides)
		}

		if err := tx.Subscriptions.Save(sub); err != nil {
			return err
		}

		full, err := tx.Subscriptions.GetByIDWithRefs(sub.ID)
		if err != nil {
			return err
		}
		view = toSubscriptionView(full)
		return nil
	})
	metrics.ObserveOp("update_subscription", err)
	if err != nil {
		return nil, err
	}

	s.changed(ctx, view)
	return view, nil
}

// ApproveSubscription PENDING -> ACTIVE
func (s *SubscriptionService) ApproveSubscription(ctx context.Context, userID, subID int64) (*dto.SubscriptionView, error) {
	sub, err := s.fire(ctx, userID, subID, ledger.EventApprove, func(sub *model.Subscription) {
		approved := true
		sub.IsApproved = &approved
	})
	if err != nil {
		return nil, err
	}
	return toSubscriptionView(sub), nil
}

// RefundSubscription ACTIVE -> REFUNDED，不改动已付金额与余额
func (s *SubscriptionService) RefundSubscription(ctx context.Context, userID, subID int64, method string) (*dto.SubscriptionView, error) {
	if method == "" {
		return nil, ErrInvalidPaymentMethod
	}

	now := s.now()
	sub, err := s.fire(ctx, userID, subID, ledger.EventRefund, func(sub *model.Subscription) {
		sub.RefundMethod = method
		sub.RefundDate = &now
	})
	if err != nil {
		return nil, err
	}

	if sub.User != nil {
		s.notifier.enqueue(ctx, &queue.NotificationJob{
			Kind:           queue.KindRefund,
			UserID:         sub.UserID,
			Email:          deref(sub.User.Email),
			Name:           sub.User.Name,
			WorkshopID:     sub.WorkshopID,
			WorkshopTitle:  ledger.WorkshopLabel(sub.Workshop),
			SubscriptionID: sub.ID,
			Amount:         sub.PricePaid,
			Note:           method,
		})
	}
	return toSubscriptionView(sub), nil
}

// ReactivateSubscription REFUNDED -> ACTIVE，退款字段保留用于审计
func (s *SubscriptionService) ReactivateSubscription(ctx context.Context, userID, subID int64) (*dto.SubscriptionView, error) {
	sub, err := s.fire(ctx, userID, subID, ledger.EventReactivate, nil)
	if err != nil {
		return nil, err
	}
	return toSubscriptionView(sub), nil
}

// CompleteSubscription ACTIVE -> COMPLETED
func (s *SubscriptionService) CompleteSubscription(ctx context.Context, userID, subID int64) (*dto.SubscriptionView, error) {
	sub, err := s.fire(ctx, userID, subID, ledger.EventComplete, nil)
	if err != nil {
		return nil, err
	}
	return toSubscriptionView(sub), nil
}

// fire 执行一次状态迁移，非法迁移不写入任何数据
func (s *SubscriptionService) fire(ctx context.Context, userID, subID int64, event ledger.Event, mutate func(sub *model.Subscription)) (*model.Subscription, error) {
	var result *model.Subscription

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		sub, err := loadOwned(tx, userID, subID)
		if err != nil {
			return err
		}
		if sub.IsDeleted {
			return ErrSubscriptionDeleted
		}
		if sub.IsPayItForwardDonation {
			return ErrDonationEntry
		}

		to, err := ledger.Next(sub.Status, event)
		if err != nil {
			return err
		}
		// 退款期间可能已重新报名同一工作坊
		if event == ledger.EventReactivate {
			exists, err := tx.Subscriptions.ExistsLive(sub.UserID, sub.WorkshopID)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateSubscription
			}
		}
		ok, err := tx.Subscriptions.CompareAndSetStatus(sub.ID, sub.Status, to)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}
		sub.Status = to

		if mutate != nil {
			mutate(sub)
			if err := tx.Subscriptions.Save(sub); err != nil {
				return err
			}
		}

		result, err = tx.Subscriptions.GetByIDWithRefs(sub.ID)
		return err
	})
	metrics.ObserveOp(string(event)+"_subscription", err)
	if err != nil {
		return nil, err
	}

	s.changed(ctx, toSubscriptionView(result))
	return result, nil
}

// TransferSubscription 转课：原订阅置为 TRANSFERRED，在目标工作坊新建 ACTIVE 订阅。
// 差额为正时转入余额，为负时计入欠款
func (s *SubscriptionService) TransferSubscription(ctx context.Context, userID, subID, targetWorkshopID int64, targetPackageID *int64, notes string) (*dto.TransferResult, error) {
	result := &dto.TransferResult{}

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		sub, err := loadOwned(tx, userID, subID)
		if err != nil {
			return err
		}
		if sub.IsDeleted {
			return ErrSubscriptionDeleted
		}
		if sub.IsPayItForwardDonation {
			return ErrDonationEntry
		}
		if sub.WorkshopID == targetWorkshopID && samePackage(sub.PackageID, targetPackageID) {
			return ErrInvalidTransfer
		}

		workshop, pkg, err := loadWorkshop(tx, targetWorkshopID, targetPackageID)
		if err != nil {
			return err
		}

		to, err := ledger.Next(sub.Status, ledger.EventTransfer)
		if err != nil {
			return err
		}
		ok, err := tx.Subscriptions.CompareAndSetStatus(sub.ID, sub.Status, to)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidTransition
		}
		sub.Status = to

		exists, err := tx.Subscriptions.ExistsLive(userID, targetWorkshopID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateSubscription
		}

		required := ledger.RequiredPrice(workshop, pkg)
		diff := ledger.Round2(sub.PricePaid - required)

		newPaid := sub.PricePaid
		var note string
		switch {
		case diff > 0:
			newPaid = required
			note = fmt.Sprintf("转课差额 %.2f 已转入余额", diff)
		case diff < 0:
			note = fmt.Sprintf("转课差额 %.2f 待补缴", -diff)
		default:
			note = "转课无差额"
		}

		approved := true
		moved := &model.Subscription{
			UserID:            userID,
			WorkshopID:        targetWorkshopID,
			PackageID:         targetPackageID,
			Status:            model.StatusActive,
			IsApproved:        &approved,
			PricePaid:         newPaid,
			CreditApplied:     minAmount(sub.CreditApplied, newPaid),
			PaymentMethod:     sub.PaymentMethod,
			AttendanceType:    sub.AttendanceType,
			IsGift:            sub.IsGift,
			GifterName:        sub.GifterName,
			GifterUserID:      sub.GifterUserID,
			TransferredFromID: &sub.ID,
			TransferNote:      note,
			Notes:             notes,
		}
		if err := tx.Subscriptions.Create(moved); err != nil {
			return err
		}

		sub.TransferredToID = &moved.ID
		sub.TransferNote = note
		if err := tx.Subscriptions.Save(sub); err != nil {
			return err
		}

		if diff > 0 {
			_, _, err := appendCredit(tx, creditEntry{
				userID:         userID,
				typ:            model.CreditAddition,
				amount:         diff,
				description:    fmt.Sprintf("转课差额：%s", workshop.Title),
				subscriptionID: &moved.ID,
			})
			if err != nil {
				return err
			}
			result.CreditAdded = diff
		} else if diff < 0 {
			result.Debt = -diff
		}
		result.Difference = diff

		original, err := tx.Subscriptions.GetByIDWithRefs(sub.ID)
		if err != nil {
			return err
		}
		transferred, err := tx.Subscriptions.GetByIDWithRefs(moved.ID)
		if err != nil {
			return err
		}
		result.Original = toSubscriptionView(original)
		result.Transferred = toSubscriptionView(transferred)
		return nil
	})
	metrics.ObserveOp("transfer_subscription", err)
	if err != nil {
		return nil, err
	}

	s.changed(ctx, result.Original)
	s.notifier.publish(ctx, &pubsub.LedgerEvent{
		Type:           pubsub.EventSubscriptionCreated,
		UserID:         userID,
		WorkshopID:     result.Transferred.WorkshopID,
		SubscriptionID: result.Transferred.ID,
		Status:         result.Transferred.Status,
		Amount:         result.Difference,
		Message:        result.Transferred.TransferNote,
	})
	return result, nil
}

func samePackage(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func minAmount(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// DeleteSubscription 移入回收站；仍有余额的捐赠记录需先转出或发放完毕
func (s *SubscriptionService) DeleteSubscription(ctx context.Context, userID, subID int64) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		sub, err := loadOwned(tx, userID, subID)
		if err != nil {
			return err
		}
		if sub.Deleted() {
			return ErrSubscriptionDeleted
		}
		if sub.IsPayItForwardDonation && ledger.IsPositive(sub.DonationRemaining) {
			return ErrDonationBalanceRemaining
		}
		return tx.Subscriptions.SoftDelete(sub.ID, s.now())
	})
	metrics.ObserveOp("delete_subscription", err)
	return err
}

// RestoreSubscription 从回收站恢复；恢复后若与现有订阅重复则拒绝
func (s *SubscriptionService) RestoreSubscription(ctx context.Context, userID, subID int64) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		sub, err := loadOwned(tx, userID, subID)
		if err != nil {
			return err
		}
		if !sub.IsDeleted {
			return ErrNotInTrash
		}

		sub.Restore()
		if sub.Live() && !sub.IsPayItForwardDonation {
			exists, err := tx.Subscriptions.ExistsLive(userID, sub.WorkshopID)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateSubscription
			}
		}
		return tx.Subscriptions.Trash.Restore(sub.ID)
	})
	metrics.ObserveOp("restore_subscription", err)
	return err
}

// PermanentlyDeleteSubscription 永久删除，仅限回收站中的记录
func (s *SubscriptionService) PermanentlyDeleteSubscription(ctx context.Context, userID, subID int64) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		sub, err := loadOwned(tx, userID, subID)
		if err != nil {
			return err
		}
		return purgeSubscription(tx, sub)
	})
	metrics.ObserveOp("purge_subscription", err)
	return err
}

func purgeSubscription(tx *repository.Store, sub *model.Subscription) error {
	if !sub.IsDeleted {
		return ErrNotInTrash
	}
	if sub.IsPayItForwardDonation && ledger.IsPositive(sub.DonationRemaining) {
		return ErrDonationBalanceRemaining
	}
	if err := tx.Subscriptions.Purge(sub.ID); err != nil {
		return notFound(err, ErrSubscriptionNotFound)
	}
	metrics.TrashPurgedTotal.WithLabelValues("subscription").Inc()
	return nil
}

// DebtReport 所有未结清的 ACTIVE / PENDING 订阅
func (s *SubscriptionService) DebtReport(ctx context.Context) (*dto.DebtReport, error) {
	subs, err := s.store.WithContext(ctx).Subscriptions.ListOpen()
	if err != nil {
		return nil, err
	}

	report := &dto.DebtReport{Lines: []dto.DebtLine{}}
	for _, sub := range subs {
		remaining := ledger.RemainingAmount(sub, sub.Workshop, sub.Package)
		if !ledger.IsPositive(remaining) {
			continue
		}
		line := dto.DebtLine{
			SubscriptionID: sub.ID,
			UserID:         sub.UserID,
			WorkshopID:     sub.WorkshopID,
			WorkshopTitle:  ledger.WorkshopLabel(sub.Workshop),
			PackageName:    ledger.PackageLabel(sub.PackageID, sub.Package),
			Status:         sub.Status,
			RequiredPrice:  ledger.RequiredPrice(sub.Workshop, sub.Package),
			PricePaid:      sub.PricePaid,
			Remaining:      remaining,
		}
		if sub.User != nil {
			line.UserName = sub.User.Name
		}
		report.Lines = append(report.Lines, line)
		report.Total += remaining
	}
	report.Total = ledger.Round2(report.Total)
	return report, nil
}

func (s *SubscriptionService) GetSubscriptionView(ctx context.Context, subID int64) (*dto.SubscriptionView, error) {
	sub, err := s.store.WithContext(ctx).Subscriptions.GetByIDWithRefs(subID)
	if err != nil {
		return nil, notFound(err, ErrSubscriptionNotFound)
	}
	return toSubscriptionView(sub), nil
}

func (s *SubscriptionService) ListUserSubscriptions(ctx context.Context, userID int64, includeDeleted bool) ([]*dto.SubscriptionView, error) {
	subs, err := s.store.WithContext(ctx).Subscriptions.ListByUser(userID, includeDeleted)
	if err != nil {
		return nil, err
	}
	return toSubscriptionViews(subs), nil
}

// ListSubscriptions 管理后台分页列表，status 为空时不过滤
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, status string, page, pageSize int) ([]*dto.SubscriptionView, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	subs, total, err := s.store.WithContext(ctx).Subscriptions.ListByStatus(status, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return toSubscriptionViews(subs), total, nil
}

func (s *SubscriptionService) changed(ctx context.Context, view *dto.SubscriptionView) {
	s.notifier.publish(ctx, &pubsub.LedgerEvent{
		Type:           pubsub.EventSubscriptionChanged,
		UserID:         view.UserID,
		WorkshopID:     view.WorkshopID,
		SubscriptionID: view.ID,
		Status:         view.Status,
	})
}
