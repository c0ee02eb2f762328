package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

type Product struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:200;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int       `gorm:"default:0" json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type Order struct {
	ID            int64                           `gorm:"primaryKey" json:"id"`
	UserID        int64                           `gorm:"not null;index" json:"user_id"`
	Items         datatypes.JSONType[[]OrderItem] `gorm:"column:items" json:"items"`
	Total         float64                         `gorm:"type:decimal(10,2)" json:"total"`
	CreditApplied float64                         `gorm:"type:decimal(10,2);default:0" json:"credit_applied"`
	AmountPaid    float64                         `gorm:"type:decimal(10,2)" json:"amount_paid"`
	PaymentMethod string                          `gorm:"size:20" json:"payment_method"`
	Status        string                          `gorm:"size:20;default:paid;index" json:"status"`
	CreatedAt     time.Time                       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time                       `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
