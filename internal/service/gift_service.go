package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/qs3c/workshop_server/internal/ledger"
	"github.com/qs3c/workshop_server/internal/model"
	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/pkg/metrics"
	"github.com/qs3c/workshop_server/internal/pkg/pubsub"
	"github.com/qs3c/workshop_server/internal/pkg/queue"
	"github.com/qs3c/workshop_server/internal/repository"
)

type GiftService struct {
	store    *repository.Store
	notifier *Notifier
	now      func() time.Time
}

func NewGiftService(store *repository.Store, notifier *Notifier) *GiftService {
	return &GiftService{
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// AddPendingGift 录入待领取礼物
func (s *GiftService) AddPendingGift(ctx context.Context, in *dto.PendingGiftInput) (*model.PendingGift, error) {
	if in.RecipientEmail == "" && in.RecipientPhone == "" {
		return nil, ErrContactRequired
	}
	if in.PricePaid < 0 {
		return nil, ErrInvalidAmount
	}

	var (
		gift     *model.PendingGift
		workshop *model.Workshop
	)

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		workshop, _, err = loadWorkshop(tx, in.WorkshopID, in.PackageID)
		if err != nil {
			return err
		}

		gift = &model.PendingGift{
			Code:           uuid.NewString(),
			GifterUserID:   in.GifterUserID,
			GifterName:     in.GifterName,
			WorkshopID:     in.WorkshopID,
			PackageID:      in.PackageID,
			PricePaid:      ledger.Round2(in.PricePaid),
			RecipientName:  in.RecipientName,
			RecipientEmail: in.RecipientEmail,
			RecipientPhone: in.RecipientPhone,
			Message:        in.Message,
		}
		return tx.Gifts.Create(gift)
	})
	metrics.ObserveOp("add_pending_gift", err)
	if err != nil {
		return nil, err
	}

	s.giftSent(ctx, gift, workshop.Title)
	return gift, nil
}

// UpdatePendingGift 部分更新，已领取的礼物不能修改
func (s *GiftService) UpdatePendingGift(ctx context.Context, giftID int64, in *dto.UpdatePendingGiftInput) (*model.PendingGift, error) {
	var gift *model.PendingGift

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		gift, err = tx.Gifts.GetByID(giftID)
		if err != nil {
			return notFound(err, ErrGiftNotFound)
		}
		if gift.IsDeleted {
			return ErrGiftDeleted
		}
		if gift.Claimed() {
			return ErrGiftAlreadyClaimed
		}

		if in.PackageID != nil {
			if _, _, err := loadWorkshop(tx, gift.WorkshopID, in.PackageID); err != nil {
				return err
			}
			gift.PackageID = in.PackageID
		}
		if in.PricePaid != nil {
			if *in.PricePaid < 0 {
				return ErrInvalidAmount
			}
			gift.PricePaid = ledger.Round2(*in.PricePaid)
		}
		if in.GifterName != nil {
			gift.GifterName = *in.GifterName
		}
		if in.RecipientName != nil {
			gift.RecipientName = *in.RecipientName
		}
		if in.RecipientEmail != nil {
			gift.RecipientEmail = *in.RecipientEmail
		}
		if in.RecipientPhone != nil {
			gift.RecipientPhone = *in.RecipientPhone
		}
		if in.Message != nil {
			gift.Message = *in.Message
		}
		if gift.RecipientEmail == "" && gift.RecipientPhone == "" {
			return ErrContactRequired
		}

		return tx.Gifts.Save(gift)
	})
	metrics.ObserveOp("update_pending_gift", err)
	if err != nil {
		return nil, err
	}
	return gift, nil
}

func (s *GiftService) DeletePendingGift(ctx context.Context, giftID int64) error {
	err := s.store.WithContext(ctx).Gifts.SoftDelete(giftID, s.now())
	metrics.ObserveOp("delete_pending_gift", err)
	return notFound(err, ErrGiftNotFound)
}

func (s *GiftService) RestorePendingGift(ctx context.Context, giftID int64) error {
	err := s.store.WithContext(ctx).Gifts.Restore(giftID)
	metrics.ObserveOp("restore_pending_gift", err)
	return notFound(err, ErrGiftNotFound)
}

// PermanentlyDeletePendingGift 永久删除，仅限回收站中的礼物
func (s *GiftService) PermanentlyDeletePendingGift(ctx context.Context, giftID int64) error {
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		gift, err := tx.Gifts.GetByID(giftID)
		if err != nil {
			return notFound(err, ErrGiftNotFound)
		}
		return purgeGift(tx, gift)
	})
	metrics.ObserveOp("purge_pending_gift", err)
	return err
}

func purgeGift(tx *repository.Store, gift *model.PendingGift) error {
	if !gift.IsDeleted {
		return ErrNotInTrash
	}
	if err := tx.Gifts.Purge(gift.ID); err != nil {
		return notFound(err, ErrGiftNotFound)
	}
	metrics.TrashPurgedTotal.WithLabelValues("pending_gift").Inc()
	return nil
}

// ListPendingGifts 默认只返回未领取且未删除的礼物
func (s *GiftService) ListPendingGifts(ctx context.Context, includeDeleted, includeClaimed bool) ([]*model.PendingGift, error) {
	return s.store.WithContext(ctx).Gifts.List(includeDeleted, includeClaimed)
}

// claimInTx 为用户创建礼物订阅并标记礼物已领取
func claimInTx(tx *repository.Store, gift *model.PendingGift, user *model.User, at time.Time) (*model.Subscription, error) {
	workshop, err := tx.Workshops.GetByID(gift.WorkshopID)
	if err != nil {
		return nil, notFound(err, ErrWorkshopNotFound)
	}

	exists, err := tx.Subscriptions.ExistsLive(user.ID, gift.WorkshopID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateSubscription
	}

	approved := true
	sub := &model.Subscription{
		UserID:        user.ID,
		WorkshopID:    gift.WorkshopID,
		PackageID:     gift.PackageID,
		Status:        model.StatusActive,
		IsApproved:    &approved,
		PricePaid:     gift.PricePaid,
		PaymentMethod: model.PaymentGift,
		IsGift:        true,
		GifterName:    gift.GifterName,
		GifterUserID:  gift.GifterUserID,
		Notes:         gift.Message,
	}
	if err := tx.Subscriptions.Create(sub); err != nil {
		return nil, err
	}

	ok, err := tx.Gifts.MarkClaimed(gift.ID, user.ID, sub.ID, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrGiftAlreadyClaimed
	}

	gift.ClaimedAt = &at
	gift.ClaimedByUserID = &user.ID
	gift.ClaimedSubscriptionID = &sub.ID
	sub.User = user
	sub.Workshop = workshop
	return sub, nil
}

// AdminManualClaimGift 管理员代为领取：按手机号再按邮箱匹配用户，找不到则新建
func (s *GiftService) AdminManualClaimGift(ctx context.Context, giftID int64, contact dto.ContactInfo) (*dto.ClaimResult, error) {
	var (
		sub     *model.Subscription
		gift    *model.PendingGift
		created bool
	)

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		gift, err = tx.Gifts.GetByID(giftID)
		if err != nil {
			return notFound(err, ErrGiftNotFound)
		}
		if gift.IsDeleted {
			return ErrGiftDeleted
		}
		if gift.Claimed() {
			return ErrGiftAlreadyClaimed
		}

		name := firstNonEmpty(contact.Name, gift.RecipientName)
		email := firstNonEmpty(contact.Email, gift.RecipientEmail)
		phone := firstNonEmpty(contact.Phone, gift.RecipientPhone)
		if email == "" && phone == "" {
			return ErrContactRequired
		}

		user, err := tx.Users.FindByContact(phone, email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = &model.User{
				Name:  name,
				Email: optional(email),
				Phone: optional(phone),
				Role:  model.RoleUser,
			}
			if err := tx.Users.Create(user); err != nil {
				return err
			}
			created = true
		} else if err != nil {
			return err
		}

		sub, err = claimInTx(tx, gift, user, s.now())
		return err
	})
	metrics.ObserveOp("claim_gift", err)
	if err != nil {
		return &dto.ClaimResult{Success: false, Message: err.Error()}, err
	}

	metrics.GiftsClaimedTotal.WithLabelValues("manual").Inc()
	s.giftClaimed(ctx, gift, sub)

	message := "礼物已领取"
	if created {
		message = "已创建新用户并领取礼物"
	}
	return &dto.ClaimResult{
		Success:        true,
		Message:        message,
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		UserCreated:    created,
	}, nil
}

// ClaimGiftsForUser 注册后自动领取发给该用户手机号或邮箱的礼物，返回领取数量
func (s *GiftService) ClaimGiftsForUser(ctx context.Context, user *model.User) (int, error) {
	gifts, err := s.store.WithContext(ctx).Gifts.ListClaimable(deref(user.Phone), deref(user.Email))
	if err != nil {
		return 0, err
	}

	claimed := 0
	for _, gift := range gifts {
		var sub *model.Subscription
		err := s.store.Transaction(ctx, func(tx *repository.Store) error {
			var err error
			sub, err = claimInTx(tx, gift, user, s.now())
			return err
		})
		switch {
		case errors.Is(err, ErrDuplicateSubscription), errors.Is(err, ErrGiftAlreadyClaimed):
			log.Info().Err(err).Int64("gift_id", gift.ID).Int64("user_id", user.ID).Msg("gift skipped on signup")
			continue
		case err != nil:
			metrics.ObserveOp("claim_gift", err)
			return claimed, err
		}

		claimed++
		metrics.ObserveOp("claim_gift", nil)
		metrics.GiftsClaimedTotal.WithLabelValues("signup").Inc()
		s.giftClaimed(ctx, gift, sub)
	}
	return claimed, nil
}

// GiftCheckout 礼物下单：friend 为每个收件人生成礼物，fund 捐入资金池
func (s *GiftService) GiftCheckout(ctx context.Context, gifterID int64, req *dto.GiftCheckoutRequest) (*dto.GiftCheckoutResult, error) {
	if err := req.Target.Validate(); err != nil {
		return nil, err
	}
	price := ledger.Round2(req.PricePerSeat)
	if !ledger.IsPositive(price) {
		return nil, ErrInvalidAmount
	}

	result := &dto.GiftCheckoutResult{
		Total: ledger.Round2(price * float64(req.Target.Count())),
	}
	var workshop *model.Workshop

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		gifter, err := tx.Users.GetByID(gifterID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		workshop, _, err = loadWorkshop(tx, req.WorkshopID, req.PackageID)
		if err != nil {
			return err
		}

		if req.Target.Kind == dto.GiftTargetFund {
			result.Donation, err = donateInTx(tx, workshop, gifter, result.Total, req.Target.Seats, "礼物捐赠")
			return err
		}

		for _, r := range req.Target.Recipients {
			recipient, err := tx.Users.FindByContact(r.Phone, r.Email)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				gift := &model.PendingGift{
					Code:           uuid.NewString(),
					GifterUserID:   &gifter.ID,
					GifterName:     gifter.Name,
					WorkshopID:     workshop.ID,
					PackageID:      req.PackageID,
					PricePaid:      price,
					RecipientName:  r.Name,
					RecipientEmail: r.Email,
					RecipientPhone: r.Phone,
					Message:        r.Message,
				}
				if err := tx.Gifts.Create(gift); err != nil {
					return err
				}
				result.PendingGifts = append(result.PendingGifts, gift)
			case err != nil:
				return err
			default:
				sub, err := giftDirect(tx, gifter, recipient, workshop, req.PackageID, price, r.Message)
				if err != nil {
					return err
				}
				result.Subscriptions = append(result.Subscriptions, sub)
			}
		}
		return nil
	})
	metrics.ObserveOp("gift_checkout", err)
	if err != nil {
		return nil, err
	}

	for _, gift := range result.PendingGifts {
		s.giftSent(ctx, gift, workshop.Title)
	}
	for _, sub := range result.Subscriptions {
		s.notifier.publish(ctx, &pubsub.LedgerEvent{
			Type:           pubsub.EventSubscriptionCreated,
			UserID:         sub.UserID,
			WorkshopID:     sub.WorkshopID,
			SubscriptionID: sub.ID,
			Status:         sub.Status,
			Amount:         sub.PricePaid,
		})
		s.notifier.enqueue(ctx, &queue.NotificationJob{
			Kind:           queue.KindGiftClaimed,
			UserID:         sub.UserID,
			Email:          deref(sub.User.Email),
			Name:           sub.User.Name,
			WorkshopID:     sub.WorkshopID,
			WorkshopTitle:  workshop.Title,
			SubscriptionID: sub.ID,
			GifterName:     sub.GifterName,
		})
	}
	if result.Donation != nil {
		s.notifier.publish(ctx, &pubsub.LedgerEvent{
			Type:           pubsub.EventDonationCreated,
			UserID:         gifterID,
			WorkshopID:     workshop.ID,
			SubscriptionID: result.Donation.ID,
			Amount:         result.Total,
		})
	}
	return result, nil
}

// giftDirect 收件人已有账号时直接创建礼物订阅
func giftDirect(tx *repository.Store, gifter, recipient *model.User, workshop *model.Workshop, packageID *int64, price float64, message string) (*model.Subscription, error) {
	exists, err := tx.Subscriptions.ExistsLive(recipient.ID, workshop.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateSubscription
	}

	approved := true
	sub := &model.Subscription{
		UserID:        recipient.ID,
		WorkshopID:    workshop.ID,
		PackageID:     packageID,
		Status:        model.StatusActive,
		IsApproved:    &approved,
		PricePaid:     price,
		PaymentMethod: model.PaymentGift,
		IsGift:        true,
		GifterName:    gifter.Name,
		GifterUserID:  &gifter.ID,
		Notes:         message,
	}
	if err := tx.Subscriptions.Create(sub); err != nil {
		return nil, err
	}
	sub.User = recipient
	sub.Workshop = workshop
	return sub, nil
}

func (s *GiftService) giftSent(ctx context.Context, gift *model.PendingGift, workshopTitle string) {
	s.notifier.enqueue(ctx, &queue.NotificationJob{
		Kind:          queue.KindGiftSent,
		Email:         gift.RecipientEmail,
		Name:          gift.RecipientName,
		WorkshopID:    gift.WorkshopID,
		WorkshopTitle: workshopTitle,
		GiftCode:      gift.Code,
		GifterName:    gift.GifterName,
	})
}

func (s *GiftService) giftClaimed(ctx context.Context, gift *model.PendingGift, sub *model.Subscription) {
	s.notifier.publish(ctx, &pubsub.LedgerEvent{
		Type:           pubsub.EventGiftClaimed,
		UserID:         sub.UserID,
		WorkshopID:     sub.WorkshopID,
		SubscriptionID: sub.ID,
		Status:         sub.Status,
		Amount:         sub.PricePaid,
	})
	s.notifier.enqueue(ctx, &queue.NotificationJob{
		Kind:           queue.KindGiftClaimed,
		UserID:         sub.UserID,
		Email:          deref(sub.User.Email),
		Name:           sub.User.Name,
		WorkshopID:     sub.WorkshopID,
		WorkshopTitle:  ledger.WorkshopLabel(sub.Workshop),
		SubscriptionID: sub.ID,
		GiftCode:       gift.Code,
		GifterName:     gift.GifterName,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
