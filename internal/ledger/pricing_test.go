package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qs3c/workshop_server/internal/model"
)

func ptr[T any](v T) *T { return &v }

func TestRequiredPrice(t *testing.T) {
	workshop := &model.Workshop{Price: ptr(600.0)}

	tests := []struct {
		name     string
		workshop *model.Workshop
		pkg      *model.Package
		want     float64
	}{
		{"workshop price", workshop, nil, 600},
		{"package price", workshop, &model.Package{Price: 450}, 450},
		{"package discount wins", workshop, &model.Package{Price: 450, DiscountPrice: ptr(399.5)}, 399.5},
		{"no price anywhere", &model.Workshop{}, nil, 0},
		{"nil workshop", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RequiredPrice(tt.workshop, tt.pkg))
		})
	}
}

func TestRemainingAmount(t *testing.T) {
	workshop := &model.Workshop{Price: ptr(600.0)}

	t.Run("partial payment leaves debt", func(t *testing.T) {
		sub := &model.Subscription{PricePaid: 500, PaymentMethod: model.PaymentCard}
		assert.Equal(t, 100.0, RemainingAmount(sub, workshop, nil))
	})

	t.Run("overpayment clamps to zero", func(t *testing.T) {
		sub := &model.Subscription{PricePaid: 700, PaymentMethod: model.PaymentCard}
		assert.Equal(t, 0.0, RemainingAmount(sub, workshop, nil))
	})

	t.Run("gift is always settled", func(t *testing.T) {
		sub := &model.Subscription{PricePaid: 0, PaymentMethod: model.PaymentGift}
		assert.Equal(t, 0.0, RemainingAmount(sub, workshop, nil))
	})

	t.Run("package discount price is used", func(t *testing.T) {
		pkg := &model.Package{Price: 800, DiscountPrice: ptr(650.0)}
		sub := &model.Subscription{PricePaid: 600, PaymentMethod: model.PaymentBankTransfer}
		assert.Equal(t, 50.0, RemainingAmount(sub, workshop, pkg))
	})
}

func TestEstimatedSeats(t *testing.T) {
	assert.Equal(t, 2, EstimatedSeats(700, 350))
	assert.Equal(t, 1, EstimatedSeats(699.99, 350))
	assert.Equal(t, 3, EstimatedSeats(0.3, 0.1))
	assert.Equal(t, 0, EstimatedSeats(700, 0))
	assert.Equal(t, 0, EstimatedSeats(0, 350))
}

func TestLabels(t *testing.T) {
	id := int64(3)

	assert.Equal(t, "Pottery", WorkshopLabel(&model.Workshop{Title: "Pottery"}))
	assert.Equal(t, DeletedWorkshopLabel, WorkshopLabel(nil))
	assert.Equal(t, DeletedWorkshopLabel, WorkshopLabel(&model.Workshop{Title: "x", SoftDelete: model.SoftDelete{IsDeleted: true}}))

	assert.Equal(t, "", PackageLabel(nil, nil))
	assert.Equal(t, DeletedPackageLabel, PackageLabel(&id, nil))
	assert.Equal(t, "VIP", PackageLabel(&id, &model.Package{Name: "VIP"}))
}

func TestSeatPrice(t *testing.T) {
	assert.Equal(t, 350.0, SeatPrice(&model.Workshop{Price: ptr(350.0)}))
	assert.Equal(t, 0.0, SeatPrice(nil))

	withPackages := &model.Workshop{Packages: []model.Package{
		{Price: 500},
		{Price: 400, DiscountPrice: ptr(320.0)},
		{Price: 100, SoftDelete: model.SoftDelete{IsDeleted: true}},
	}}
	assert.Equal(t, 320.0, SeatPrice(withPackages))
}
