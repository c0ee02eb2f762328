package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/qs3c/workshop_server/internal/model"
)

var seq int64

func next() int64 {
	return atomic.AddInt64(&seq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	n := next()
	email := fmt.Sprintf("test_%d_%d@example.com", time.Now().UnixNano(), n)
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Name:         fmt.Sprintf("testuser_%d", n),
		Email:        &email,
		PasswordHash: &passwordHash,
		Role:         model.RoleUser,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithName 设置姓名
func WithName(name string) func(*model.User) {
	return func(u *model.User) {
		u.Name = name
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithPhone 设置手机号
func WithPhone(phone string) func(*model.User) {
	return func(u *model.User) {
		u.Phone = &phone
	}
}

// WithoutEmail 只有手机号的用户
func WithoutEmail() func(*model.User) {
	return func(u *model.User) {
		u.Email = nil
	}
}

// WithPassword 设置密码哈希
func WithPassword(hash string) func(*model.User) {
	return func(u *model.User) {
		u.PasswordHash = &hash
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// TestAdmin 创建管理员
func TestAdmin(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	return TestUser(t, db, WithRole(model.RoleAdmin))
}

// TestWorkshop 创建测试工作坊
func TestWorkshop(t *testing.T, db *gorm.DB, opts ...func(*model.Workshop)) *model.Workshop {
	t.Helper()

	workshop := &model.Workshop{
		Title:      fmt.Sprintf("Workshop %d", next()),
		Instructor: "Test Instructor",
	}

	for _, opt := range opts {
		opt(workshop)
	}

	if err := db.Omit("Packages").Create(workshop).Error; err != nil {
		t.Fatalf("Failed to create test workshop: %v", err)
	}

	return workshop
}

// WithWorkshopPrice 设置工作坊基础价格
func WithWorkshopPrice(price float64) func(*model.Workshop) {
	return func(w *model.Workshop) {
		w.Price = &price
	}
}

// WithPayItForwardBalance 设置资金池余额
func WithPayItForwardBalance(balance float64) func(*model.Workshop) {
	return func(w *model.Workshop) {
		w.PayItForwardBalance = balance
	}
}

// TestPackage 为工作坊创建套餐
func TestPackage(t *testing.T, db *gorm.DB, workshopID int64, price float64, discount *float64) *model.Package {
	t.Helper()

	pkg := &model.Package{
		WorkshopID:    workshopID,
		Name:          fmt.Sprintf("Package %d", next()),
		Price:         price,
		DiscountPrice: discount,
	}

	if err := db.Create(pkg).Error; err != nil {
		t.Fatalf("Failed to create test package: %v", err)
	}

	return pkg
}

// TestSubscription 创建测试订阅
func TestSubscription(t *testing.T, db *gorm.DB, userID, workshopID int64, opts ...func(*model.Subscription)) *model.Subscription {
	t.Helper()

	approved := true
	sub := &model.Subscription{
		UserID:        userID,
		WorkshopID:    workshopID,
		Status:        model.StatusActive,
		IsApproved:    &approved,
		PaymentMethod: model.PaymentCard,
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Omit("User", "Workshop", "Package").Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}

	return sub
}

// WithPricePaid 设置实付金额
func WithPricePaid(amount float64) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.PricePaid = amount
	}
}

// WithPackage 设置套餐
func WithPackage(packageID int64) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.PackageID = &packageID
	}
}

// WithStatus 设置订阅状态
func WithStatus(status string) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.Status = status
		if status == model.StatusPending {
			approved := false
			s.IsApproved = &approved
		}
	}
}

// AsDonation 设置为 pay-it-forward 捐赠记录
func AsDonation(amount float64) func(*model.Subscription) {
	return func(s *model.Subscription) {
		s.IsPayItForwardDonation = true
		s.PricePaid = amount
		s.DonationRemaining = amount
	}
}

// TestPendingGift 创建待领取礼物
func TestPendingGift(t *testing.T, db *gorm.DB, workshopID int64, opts ...func(*model.PendingGift)) *model.PendingGift {
	t.Helper()

	gift := &model.PendingGift{
		Code:          uuid.NewString(),
		GifterName:    "Test Gifter",
		WorkshopID:    workshopID,
		RecipientName: "Test Recipient",
	}

	for _, opt := range opts {
		opt(gift)
	}

	if err := db.Create(gift).Error; err != nil {
		t.Fatalf("Failed to create test gift: %v", err)
	}

	return gift
}

// ForRecipient 设置礼物收件人联系方式
func ForRecipient(phone, email string) func(*model.PendingGift) {
	return func(g *model.PendingGift) {
		g.RecipientPhone = phone
		g.RecipientEmail = email
	}
}

// TestCreditTx 创建余额流水，不会刷新用户缓存余额
func TestCreditTx(t *testing.T, db *gorm.DB, userID int64, typ string, amount float64) *model.CreditTransaction {
	t.Helper()

	tx := &model.CreditTransaction{
		UserID:      userID,
		Type:        typ,
		Amount:      amount,
		Description: "test",
	}

	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("Failed to create test credit transaction: %v", err)
	}

	return tx
}

// TestProduct 创建测试商品
func TestProduct(t *testing.T, db *gorm.DB, price float64, stock int) *model.Product {
	t.Helper()

	product := &model.Product{
		Name:  fmt.Sprintf("Product %d", next()),
		Price: price,
		Stock: stock,
	}

	if err := db.Create(product).Error; err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}

	return product
}
