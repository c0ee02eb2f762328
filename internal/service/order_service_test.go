package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/workshop_server/internal/model"
	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/pkg/pubsub"
	"github.com/qs3c/workshop_server/internal/testutil"
)

func TestOrderService_Checkout(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	user := testutil.TestUser(t, env.db)
	book := testutil.TestProduct(t, env.db, 45.5, 10)
	mat := testutil.TestProduct(t, env.db, 120, 1)

	_, err := env.credits.AddCredit(ctx, user.ID, 100, "")
	require.NoError(t, err)

	order, err := env.orders.Checkout(ctx, user.ID, &dto.CheckoutRequest{
		Items: []dto.OrderItemInput{
			{ProductID: book.ID, Quantity: 2},
			{ProductID: mat.ID, Quantity: 1},
		},
		CreditApplied: 60,
	})
	require.NoError(t, err)

	assert.Equal(t, 211.0, order.Total)
	assert.Equal(t, 60.0, order.CreditApplied)
	assert.Equal(t, 151.0, order.AmountPaid)
	assert.Equal(t, model.PaymentCard, order.PaymentMethod)
	assert.Equal(t, model.OrderStatusPaid, order.Status)
	require.Len(t, order.Items.Data(), 2)
	assert.Equal(t, book.Name, order.Items.Data()[0].Name)

	assert.Equal(t, 40.0, env.reloadUser(t, user.ID).InternalCredit)

	products, err := env.orders.ListProducts(ctx)
	require.NoError(t, err)
	stock := map[int64]int{}
	for _, p := range products {
		stock[p.ID] = p.Stock
	}
	assert.Equal(t, 8, stock[book.ID])
	assert.Equal(t, 0, stock[mat.ID])

	history, err := env.credits.CreditHistory(ctx, user.ID)
	require.NoError(t, err)
	last := history.Lines[len(history.Lines)-1].Transaction
	require.NotNil(t, last.OrderID)
	assert.Equal(t, order.ID, *last.OrderID)

	orders, err := env.orders.ListOrders(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Contains(t, env.rec.eventTypes(), pubsub.EventOrderPaid)
}

func TestOrderService_CheckoutRejections(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	user := testutil.TestUser(t, env.db)
	product := testutil.TestProduct(t, env.db, 50, 2)

	_, err := env.credits.AddCredit(ctx, user.ID, 30, "")
	require.NoError(t, err)

	tests := []struct {
		name string
		req  *dto.CheckoutRequest
		want error
	}{
		{
			name: "out of stock",
			req:  &dto.CheckoutRequest{Items: []dto.OrderItemInput{{ProductID: product.ID, Quantity: 3}}},
			want: ErrOutOfStock,
		},
		{
			name: "credit above total",
			req:  &dto.CheckoutRequest{Items: []dto.OrderItemInput{{ProductID: product.ID, Quantity: 1}}, CreditApplied: 60},
			want: ErrCreditExceedsTotal,
		},
		{
			name: "credit above balance",
			req:  &dto.CheckoutRequest{Items: []dto.OrderItemInput{{ProductID: product.ID, Quantity: 1}}, CreditApplied: 40},
			want: ErrInsufficientCredit,
		},
		{
			name: "missing product",
			req:  &dto.CheckoutRequest{Items: []dto.OrderItemInput{{ProductID: 99999, Quantity: 1}}},
			want: ErrProductNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.orders.Checkout(ctx, user.ID, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// 所有失败都已回滚
	reloaded, err := env.store.Products.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Stock)
	assert.Equal(t, 30.0, env.reloadUser(t, user.ID).InternalCredit)

	orders, err := env.orders.ListOrders(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_ProductCRUD(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	product, err := env.orders.CreateProduct(ctx, &dto.ProductInput{Name: "Yoga mat", Price: 99.999, Stock: 3})
	require.NoError(t, err)
	assert.Equal(t, 100.0, product.Price)

	updated, err := env.orders.UpdateProduct(ctx, product.ID, &dto.ProductInput{Name: "Yoga mat XL", Price: 120, Stock: 5})
	require.NoError(t, err)
	assert.Equal(t, "Yoga mat XL", updated.Name)
	assert.Equal(t, 5, updated.Stock)

	_, err = env.orders.UpdateProduct(ctx, 99999, &dto.ProductInput{Name: "x", Price: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)
}
