package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/workshop_server/internal/model"
)

type PendingGiftRepository struct {
	db *gorm.DB
	Trash[model.PendingGift, *model.PendingGift]
}

func NewPendingGiftRepository(db *gorm.DB) *PendingGiftRepository {
	return &PendingGiftRepository{
		db:    db,
		Trash: NewTrash[model.PendingGift](db),
	}
}

func (r *PendingGiftRepository) Create(gift *model.PendingGift) error {
	return r.db.Create(gift).Error
}

func (r *PendingGiftRepository) GetByID(id int64) (*model.PendingGift, error) {
	var gift model.PendingGift
	err := r.db.Where("id = ?", id).First(&gift).Error
	if err != nil {
		return nil, err
	}
	return &gift, nil
}

func (r *PendingGiftRepository) Save(gift *model.PendingGift) error {
	return r.db.Save(gift).Error
}

// List 礼物列表；默认只返回未领取且未删除的
func (r *PendingGiftRepository) List(includeDeleted, includeClaimed bool) ([]*model.PendingGift, error) {
	var gifts []*model.PendingGift
	query := r.db.Model(&model.PendingGift{})
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	if !includeClaimed {
		query = query.Where("claimed_at IS NULL")
	}
	err := query.Order("created_at DESC").Find(&gifts).Error
	return gifts, err
}

// ListClaimable 按收件人手机号或邮箱查找可领取的礼物
func (r *PendingGiftRepository) ListClaimable(phone, email string) ([]*model.PendingGift, error) {
	var gifts []*model.PendingGift
	if phone == "" && email == "" {
		return gifts, nil
	}

	query := r.db.Where("is_deleted = ? AND claimed_at IS NULL", false)
	switch {
	case phone != "" && email != "":
		query = query.Where("recipient_phone = ? OR recipient_email = ?", phone, email)
	case phone != "":
		query = query.Where("recipient_phone = ?", phone)
	default:
		query = query.Where("recipient_email = ?", email)
	}
	err := query.Order("created_at, id").Find(&gifts).Error
	return gifts, err
}

func (r *PendingGiftRepository) ListByGifter(userID int64) ([]*model.PendingGift, error) {
	var gifts []*model.PendingGift
	err := r.db.Where("gifter_user_id = ?", userID).Order("created_at DESC").Find(&gifts).Error
	return gifts, err
}

// MarkClaimed 标记为已领取；已被领取时返回 false
func (r *PendingGiftRepository) MarkClaimed(id, userID, subscriptionID int64, at time.Time) (bool, error) {
	res := r.db.Model(&model.PendingGift{}).
		Where("id = ? AND claimed_at IS NULL AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"claimed_at":              at,
			"claimed_by_user_id":      userID,
			"claimed_subscription_id": subscriptionID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
