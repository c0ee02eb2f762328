package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/workshop_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByPhone(phone string) (*model.User, error) {
	var user model.User
	err := r.db.Where("phone = ?", phone).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByContact 先按手机号再按邮箱查找用户
func (r *UserRepository) FindByContact(phone, email string) (*model.User, error) {
	if phone != "" {
		user, err := r.GetByPhone(phone)
		if err == nil {
			return user, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}
	if email != "" {
		return r.GetByEmail(email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *UserRepository) Update(user *model.User) error {
	return r.db.Omit("internal_credit").Save(user).Error
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	delete(fields, "internal_credit")
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// CacheCredit 写入由流水推导出的余额，仅供 credit 重算使用
func (r *UserRepository) CacheCredit(id int64, balance float64) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		UpdateColumn("internal_credit", balance).Error
}

func (r *UserRepository) ListIDs() ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.User{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (r *UserRepository) List(page, pageSize int) ([]*model.User, int64, error) {
	var users []*model.User
	var total int64

	query := r.db.Model(&model.User{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("id DESC").Offset(offset).Limit(pageSize).Find(&users).Error
	return users, total, err
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByPhone(phone string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("phone = ?", phone).Count(&count).Error
	return count > 0, err
}
