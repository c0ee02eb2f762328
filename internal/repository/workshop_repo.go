package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/workshop_server/internal/model"
)

type WorkshopRepository struct {
	db *gorm.DB
	Trash[model.Workshop, *model.Workshop]
	Packages Trash[model.Package, *model.Package]
}

func NewWorkshopRepository(db *gorm.DB) *WorkshopRepository {
	return &WorkshopRepository{
		db:       db,
		Trash:    NewTrash[model.Workshop](db),
		Packages: NewTrash[model.Package](db),
	}
}

func (r *WorkshopRepository) Create(workshop *model.Workshop) error {
	return r.db.Create(workshop).Error
}

// GetByID 查询工作坊及其全部套餐（含已删除套餐，用于降级显示）
func (r *WorkshopRepository) GetByID(id int64) (*model.Workshop, error) {
	var workshop model.Workshop
	err := r.db.Preload("Packages").Where("id = ?", id).First(&workshop).Error
	if err != nil {
		return nil, err
	}
	return &workshop, nil
}

func (r *WorkshopRepository) Update(workshop *model.Workshop) error {
	return r.db.Omit("Packages", "pay_it_forward_balance").Save(workshop).Error
}

func (r *WorkshopRepository) List(includeDeleted bool) ([]*model.Workshop, error) {
	var workshops []*model.Workshop
	query := r.db.Preload("Packages", "is_deleted = ?", false)
	if !includeDeleted {
		query = query.Where("is_deleted = ?", false)
	}
	err := query.Order("id DESC").Find(&workshops).Error
	return workshops, err
}

// AddPayItForward 增加工作坊的 pay-it-forward 资金池
func (r *WorkshopRepository) AddPayItForward(id int64, amount float64) error {
	return r.db.Model(&model.Workshop{}).Where("id = ?", id).
		UpdateColumn("pay_it_forward_balance", gorm.Expr("pay_it_forward_balance + ?", amount)).Error
}

// SubtractPayItForward 扣减资金池，最低为 0
func (r *WorkshopRepository) SubtractPayItForward(id int64, amount float64) error {
	return r.db.Model(&model.Workshop{}).Where("id = ?", id).
		UpdateColumn("pay_it_forward_balance", gorm.Expr(
			"CASE WHEN pay_it_forward_balance > ? THEN pay_it_forward_balance - ? ELSE 0 END",
			amount, amount,
		)).Error
}

func (r *WorkshopRepository) CreatePackage(pkg *model.Package) error {
	return r.db.Create(pkg).Error
}

func (r *WorkshopRepository) GetPackage(id int64) (*model.Package, error) {
	var pkg model.Package
	err := r.db.Where("id = ?", id).First(&pkg).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *WorkshopRepository) UpdatePackage(pkg *model.Package) error {
	return r.db.Save(pkg).Error
}
