package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/workshop_server/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
	Trash[model.Subscription, *model.Subscription]
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{
		db:    db,
		Trash: NewTrash[model.Subscription](db),
	}
}

func (r *SubscriptionRepository) Create(sub *model.Subscription) error {
	return r.db.Create(sub).Error
}

func (r *SubscriptionRepository) GetByID(id int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// GetByIDWithRefs 查询订阅并预加载工作坊与套餐
func (r *SubscriptionRepository) GetByIDWithRefs(id int64) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.Preload("Workshop").Preload("Package").Preload("User").
		Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// Save 保存订阅的普通字段，不会写入 donation_remaining
func (r *SubscriptionRepository) Save(sub *model.Subscription) error {
	return r.db.Omit("User", "Workshop", "Package", "donation_remaining").Save(sub).Error
}

func (r *SubscriptionRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.Subscription{}).Where("id = ?", id).Updates(fields).Error
}

func (r *SubscriptionRepository) ListByUser(userID int64, includeDeleted bool) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	query := r.db.Preload("Workshop").Preload("Package").Where("user_id = ?", userID)
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	err := query.Order("created_at DESC").Find(&subs).Error
	return subs, err
}

// ExistsLive 用户是否已持有该工作坊的有效订阅（不含捐赠记录）
func (r *SubscriptionRepository) ExistsLive(userID, workshopID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Subscription{}).
		Where("user_id = ? AND workshop_id = ? AND is_deleted = ? AND is_pay_it_forward_donation = ?",
			userID, workshopID, false, false).
		Where("status IN ?", []string{model.StatusActive, model.StatusPending}).
		Count(&count).Error
	return count > 0, err
}

// ListOpen 未删除的 ACTIVE / PENDING 个人订阅，用于欠款报表
func (r *SubscriptionRepository) ListOpen() ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.Preload("Workshop").Preload("Package").Preload("User").
		Where("is_deleted = ? AND is_pay_it_forward_donation = ?", false, false).
		Where("status IN ?", []string{model.StatusActive, model.StatusPending}).
		Order("created_at").Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepository) ListByStatus(status string, page, pageSize int) ([]*model.Subscription, int64, error) {
	var subs []*model.Subscription
	var total int64

	query := r.db.Model(&model.Subscription{}).Where("is_deleted = ?", false)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Workshop").Preload("Package").Preload("User").
		Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&subs).Error
	return subs, total, err
}

// ListDonations 工作坊的捐赠记录，workshopID 为 0 时返回全部
func (r *SubscriptionRepository) ListDonations(workshopID int64) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	query := r.db.Preload("Workshop.Packages", "is_deleted = ?", false).Preload("User").
		Where("is_pay_it_forward_donation = ? AND is_deleted = ?", true, false)
	if workshopID > 0 {
		query = query.Where("workshop_id = ?", workshopID)
	}
	err := query.Order("created_at").Find(&subs).Error
	return subs, err
}

// ConsumeDonation 扣减捐赠余额，余额不足时不修改并返回 false
func (r *SubscriptionRepository) ConsumeDonation(id int64, amount float64) (bool, error) {
	res := r.db.Model(&model.Subscription{}).
		Where("id = ? AND is_pay_it_forward_donation = ? AND donation_remaining >= ?", id, true, amount-0.001).
		UpdateColumn("donation_remaining", gorm.Expr(
			"CASE WHEN donation_remaining > ? THEN donation_remaining - ? ELSE 0 END",
			amount, amount,
		))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CompareAndSetStatus 仅当当前状态为 from 时改为 to
func (r *SubscriptionRepository) CompareAndSetStatus(id int64, from, to string) (bool, error) {
	res := r.db.Model(&model.Subscription{}).
		Where("id = ? AND status = ? AND is_deleted = ?", id, from, false).
		UpdateColumn("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
