package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Email          *string   `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	Phone          *string   `gorm:"size:30;uniqueIndex" json:"phone,omitempty"`
	PasswordHash   *string   `gorm:"size:255" json:"-"`
	Role           string    `gorm:"size:20;default:user" json:"role"`
	InternalCredit float64   `gorm:"type:decimal(10,2);default:0" json:"internal_credit"` // 由 credit_transactions 推导，禁止直接写入
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// 关联
	Subscriptions      []Subscription      `gorm:"foreignKey:UserID" json:"subscriptions,omitempty"`
	CreditTransactions []CreditTransaction `gorm:"foreignKey:UserID" json:"credit_transactions,omitempty"`
	Orders             []Order             `gorm:"foreignKey:UserID" json:"orders,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
