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

type DonationService struct {
	store    *repository.Store
	notifier *Notifier
	now      func() time.Time
}

func NewDonationService(store *repository.Store, notifier *Notifier) *DonationService {
	return &DonationService{
		store:    store,
		notifier: notifier,
		now:      time.Now,
	}
}

// loadDonation 查询未删除的捐赠记录
func loadDonation(tx *repository.Store, donorSubID int64) (*model.Subscription, error) {
	donor, err := tx.Subscriptions.GetByID(donorSubID)
	if err != nil {
		return nil, notFound(err, ErrSubscriptionNotFound)
	}
	if donor.IsDeleted {
		return nil, ErrSubscriptionDeleted
	}
	if !donor.IsPayItForwardDonation {
		return nil, ErrNotDonation
	}
	return donor, nil
}

// consumeDonation 同时扣减捐赠余额与工作坊资金池，两者只能经由此处变动
func consumeDonation(tx *repository.Store, donor *model.Subscription, amount float64) error {
	ok, err := tx.Subscriptions.ConsumeDonation(donor.ID, amount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientDonation
	}
	if err := tx.Workshops.SubtractPayItForward(donor.WorkshopID, amount); err != nil {
		return err
	}

	donor.DonationRemaining = ledger.Round2(donor.DonationRemaining - amount)
	if donor.DonationRemaining < 0 {
		donor.DonationRemaining = 0
	}
	return nil
}

// donateInTx 创建捐赠记录并增加工作坊资金池
func donateInTx(tx *repository.Store, workshop *model.Workshop, donor *model.User, total float64, seats int, note string) (*model.Subscription, error) {
	total = ledger.Round2(total)
	if !ledger.IsPositive(total) || seats < 0 {
		return nil, ErrInvalidAmount
	}

	approved := true
	sub := &model.Subscription{
		UserID:                 donor.ID,
		WorkshopID:             workshop.ID,
		Status:                 model.StatusActive,
		IsApproved:             &approved,
		PricePaid:              total,
		PaymentMethod:          model.PaymentCard,
		IsPayItForwardDonation: true,
		DonationRemaining:      total,
		DonationSeats:          seats,
		Notes:                  note,
	}
	if err := tx.Subscriptions.Create(sub); err != nil {
		return nil, err
	}
	if err := tx.Workshops.AddPayItForward(workshop.ID, total); err != nil {
		return nil, err
	}

	sub.User = donor
	sub.Workshop = workshop
	return sub, nil
}

// DonateToPayItForward 捐入工作坊的 pay-it-forward 资金池
func (s *DonationService) DonateToPayItForward(ctx context.Context, workshopID int64, totalAmount float64, seats int, donorUserID int64) (*dto.SubscriptionView, error) {
	var donation *model.Subscription

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		donor, err := tx.Users.GetByID(donorUserID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		workshop, _, err := loadWorkshop(tx, workshopID, nil)
		if err != nil {
			return err
		}
		donation, err = donateInTx(tx, workshop, donor, totalAmount, seats, "")
		return err
	})
	metrics.ObserveOp("donate", err)
	if err != nil {
		return nil, err
	}

	s.notifier.publish(ctx, &pubsub.LedgerEvent{
		Type:           pubsub.EventDonationCreated,
		UserID:         donation.UserID,
		WorkshopID:     donation.WorkshopID,
		SubscriptionID: donation.ID,
		Amount:         donation.DonationRemaining,
	})
	return toSubscriptionView(donation), nil
}

// GrantPayItForwardSeat 用指定捐赠为受益人分配一个名额，校验不通过时不做任何修改
func (s *DonationService) GrantPayItForwardSeat(ctx context.Context, beneficiaryID, workshopID int64, seatPrice float64, donorSubID int64, notes string) (*dto.SubscriptionView, error) {
	seatPrice = ledger.Round2(seatPrice)
	if !ledger.IsPositive(seatPrice) {
		return nil, ErrInvalidAmount
	}

	var (
		beneficiary *model.User
		seat        *model.Subscription
	)

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		donor, err := loadDonation(tx, donorSubID)
		if err != nil {
			return err
		}
		if donor.WorkshopID != workshopID {
			return ErrDonationWorkshopMismatch
		}
		if !ledger.Covers(donor.DonationRemaining, seatPrice) {
			return ErrInsufficientDonation
		}

		workshop, _, err := loadWorkshop(tx, workshopID, nil)
		if err != nil {
			return err
		}
		beneficiary, err = tx.Users.GetByID(beneficiaryID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		exists, err := tx.Subscriptions.ExistsLive(beneficiaryID, workshopID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateSubscription
		}

		if err := consumeDonation(tx, donor, seatPrice); err != nil {
			return err
		}

		approved := true
		seat = &model.Subscription{
			UserID:             beneficiaryID,
			WorkshopID:         workshopID,
			Status:             model.StatusActive,
			IsApproved:         &approved,
			PricePaid:          seatPrice,
			PaymentMethod:      model.PaymentPayItForward,
			FundedByDonationID: &donor.ID,
			Notes:              notes,
		}
		if err := tx.Subscriptions.Create(seat); err != nil {
			return err
		}

		seat.User = beneficiary
		seat.Workshop = workshop
		return nil
	})
	metrics.ObserveOp("grant_seat", err)
	if err != nil {
		return nil, err
	}

	metrics.SeatsGrantedTotal.Inc()
	log.Info().
		Int64("beneficiary_id", beneficiaryID).
		Int64("donation_id", donorSubID).
		Float64("seat_price", seatPrice).
		Msg("pay-it-forward seat granted")

	s.notifier.publish(ctx, &pubsub.LedgerEvent{
		Type:           pubsub.EventSeatGranted,
		UserID:         beneficiaryID,
		WorkshopID:     workshopID,
		SubscriptionID: seat.ID,
		Status:         seat.Status,
		Amount:         seatPrice,
	})
	s.notifier.enqueue(ctx, &queue.NotificationJob{
		Kind:           queue.KindSeatGranted,
		UserID:         beneficiaryID,
		Email:          deref(beneficiary.Email),
		Name:           beneficiary.Name,
		WorkshopID:     workshopID,
		WorkshopTitle:  seat.Workshop.Title,
		SubscriptionID: seat.ID,
	})
	return toSubscriptionView(seat), nil
}

// ReclaimDonation 收回部分捐赠：cash 线下退款，credit 转入捐赠者余额
func (s *DonationService) ReclaimDonation(ctx context.Context, donorSubID int64, seats int, unitPrice float64, mode string) (*dto.ReclaimResult, error) {
	if mode != dto.ReclaimCash && mode != dto.ReclaimCredit {
		return nil, ErrInvalidReclaimMode
	}
	if seats <= 0 || unitPrice <= 0 {
		return nil, ErrInvalidAmount
	}
	amount := ledger.Round2(float64(seats) * unitPrice)

	var (
		donor  *model.Subscription
		result = &dto.ReclaimResult{Amount: amount, Mode: mode}
	)

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		donor, err = loadDonation(tx, donorSubID)
		if err != nil {
			return err
		}
		if !ledger.Covers(donor.DonationRemaining, amount) {
			return ErrInsufficientDonation
		}

		if err := consumeDonation(tx, donor, amount); err != nil {
			return err
		}
		result.DonationRemaining = donor.DonationRemaining

		if mode == dto.ReclaimCredit {
			entry, balance, err := appendCredit(tx, creditEntry{
				userID:         donor.UserID,
				typ:            model.CreditAddition,
				amount:         amount,
				description:    fmt.Sprintf("捐赠转余额：%d 个名额", seats),
				subscriptionID: &donor.ID,
			})
			if err != nil {
				return err
			}
			result.CreditTransactionID = entry.ID
			result.CreditBalance = balance
		}
		return nil
	})
	metrics.ObserveOp("reclaim_donation", err)
	if err != nil {
		return nil, err
	}

	event := &pubsub.LedgerEvent{
		Type:           pubsub.EventDonationReclaimed,
		UserID:         donor.UserID,
		WorkshopID:     donor.WorkshopID,
		SubscriptionID: donor.ID,
		Amount:         amount,
		Message:        mode,
	}
	if mode == dto.ReclaimCredit {
		event.Balance = &result.CreditBalance
	}
	s.notifier.publish(ctx, event)
	return result, nil
}

// ListDonors 捐赠列表，workshopID 为 0 时返回全部
func (s *DonationService) ListDonors(ctx context.Context, workshopID int64) ([]*dto.DonorView, error) {
	donations, err := s.store.WithContext(ctx).Subscriptions.ListDonations(workshopID)
	if err != nil {
		return nil, err
	}

	views := make([]*dto.DonorView, 0, len(donations))
	for _, d := range donations {
		seatPrice := ledger.SeatPrice(d.Workshop)
		view := &dto.DonorView{
			SubscriptionID:    d.ID,
			DonorUserID:       d.UserID,
			WorkshopID:        d.WorkshopID,
			WorkshopTitle:     ledger.WorkshopLabel(d.Workshop),
			TotalDonated:      d.PricePaid,
			DonationRemaining: d.DonationRemaining,
			Seats:             d.DonationSeats,
			SeatPrice:         seatPrice,
			EstimatedSeats:    ledger.EstimatedSeats(d.DonationRemaining, seatPrice),
		}
		if d.User != nil {
			view.DonorName = d.User.Name
		}
		views = append(views, view)
	}
	return views, nil
}
