package dto

import "time"

// WorkshopInput 新建或更新工作坊
type WorkshopInput struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Instructor  string     `json:"instructor"`
	Description string     `json:"description"`
	Price       *float64   `json:"price" binding:"omitempty,gte=0"`
	StartsAt    *time.Time `json:"starts_at"`
}

// PackageInput 新建或更新套餐
type PackageInput struct {
	Name          string   `json:"name" binding:"required,max=100"`
	Price         float64  `json:"price" binding:"gte=0"`
	DiscountPrice *float64 `json:"discount_price" binding:"omitempty,gte=0"`
}
