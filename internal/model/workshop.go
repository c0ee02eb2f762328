package model

import (
	"time"
)

type Workshop struct {
	ID                  int64      `gorm:"primaryKey" json:"id"`
	Title               string     `gorm:"size:200;not null" json:"title"`
	Instructor          string     `gorm:"size:100" json:"instructor"`
	Description         string     `gorm:"type:text" json:"description"`
	Price               *float64   `gorm:"type:decimal(10,2)" json:"price,omitempty"`
	StartsAt            *time.Time `json:"starts_at,omitempty"`
	PayItForwardBalance float64    `gorm:"type:decimal(10,2);default:0" json:"pay_it_forward_balance"`
	SoftDelete
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Packages []Package `gorm:"foreignKey:WorkshopID" json:"packages,omitempty"`
}

func (Workshop) TableName() string {
	return "workshops"
}

// FindPackage 按 ID 查找未删除的套餐
func (w *Workshop) FindPackage(id int64) *Package {
	for i := range w.Packages {
		if w.Packages[i].ID == id && !w.Packages[i].IsDeleted {
			return &w.Packages[i]
		}
	}
	return nil
}

type Package struct {
	ID            int64    `gorm:"primaryKey" json:"id"`
	WorkshopID    int64    `gorm:"not null;index" json:"workshop_id"`
	Name          string   `gorm:"size:100;not null" json:"name"`
	Price         float64  `gorm:"type:decimal(10,2);not null" json:"price"`
	DiscountPrice *float64 `gorm:"type:decimal(10,2)" json:"discount_price,omitempty"`
	SoftDelete
	CreatedAt time.Time `json:"created_at"`
}

func (Package) TableName() string {
	return "packages"
}
