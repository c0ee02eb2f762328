package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/workshop_server/internal/model"
)

type CreditTransactionRepository struct {
	db *gorm.DB
	Trash[model.CreditTransaction, *model.CreditTransaction]
}

func NewCreditTransactionRepository(db *gorm.DB) *CreditTransactionRepository {
	return &CreditTransactionRepository{
		db:    db,
		Trash: NewTrash[model.CreditTransaction](db),
	}
}

// Create 追加一条流水
func (r *CreditTransactionRepository) Create(tx *model.CreditTransaction) error {
	return r.db.Create(tx).Error
}

func (r *CreditTransactionRepository) GetByID(id int64) (*model.CreditTransaction, error) {
	var tx model.CreditTransaction
	err := r.db.Where("id = ?", id).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListByUser 用户全部流水（含已删除），按时间正序
func (r *CreditTransactionRepository) ListByUser(userID int64) ([]model.CreditTransaction, error) {
	var txs []model.CreditTransaction
	err := r.db.Where("user_id = ?", userID).Order("created_at, id").Find(&txs).Error
	return txs, err
}
