package service

import (
	"context"
	"fmt"

	"gorm.io/datatypes"

	"github.com/qs3c/workshop_server/internal/ledger"
	"github.com/qs3c/workshop_server/internal/model"
	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/pkg/metrics"
	"github.com/qs3c/workshop_server/internal/pkg/pubsub"
	"github.com/qs3c/workshop_server/internal/repository"
)

type OrderService struct {
	store    *repository.Store
	notifier *Notifier
}

func NewOrderService(store *repository.Store, notifier *Notifier) *OrderService {
	return &OrderService{
		store:    store,
		notifier: notifier,
	}
}

func (s *OrderService) ListProducts(ctx context.Context) ([]*model.Product, error) {
	return s.store.WithContext(ctx).Products.List()
}

func (s *OrderService) CreateProduct(ctx context.Context, in *dto.ProductInput) (*model.Product, error) {
	product := &model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       ledger.Round2(in.Price),
		Stock:       in.Stock,
	}
	if err := s.store.WithContext(ctx).Products.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *OrderService) UpdateProduct(ctx context.Context, id int64, in *dto.ProductInput) (*model.Product, error) {
	store := s.store.WithContext(ctx)
	product, err := store.Products.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}

	product.Name = in.Name
	product.Description = in.Description
	product.Price = ledger.Round2(in.Price)
	product.Stock = in.Stock
	if err := store.Products.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Checkout 下单：扣减库存，余额抵扣部分记入流水
func (s *OrderService) Checkout(ctx context.Context, userID int64, req *dto.CheckoutRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrInvalidAmount
	}
	credit := ledger.Round2(req.CreditApplied)
	if credit < 0 {
		return nil, ErrInvalidAmount
	}

	var (
		order   *model.Order
		balance float64
	)

	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Users.GetByID(userID); err != nil {
			return notFound(err, ErrUserNotFound)
		}

		items := make([]model.OrderItem, 0, len(req.Items))
		var total float64
		for _, in := range req.Items {
			if in.Quantity <= 0 {
				return ErrInvalidAmount
			}
			product, err := tx.Products.GetByID(in.ProductID)
			if err != nil {
				return notFound(err, ErrProductNotFound)
			}
			ok, err := tx.Products.DecrementStock(product.ID, in.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", ErrOutOfStock, product.Name)
			}

			items = append(items, model.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  in.Quantity,
				UnitPrice: product.Price,
			})
			total += product.Price * float64(in.Quantity)
		}
		total = ledger.Round2(total)

		if credit > total {
			return ErrCreditExceedsTotal
		}
		paid := ledger.Round2(total - credit)
		method, err := resolvePaymentMethod(req.PaymentMethod, paid, credit)
		if err != nil {
			return err
		}

		order = &model.Order{
			UserID:        userID,
			Items:         datatypes.NewJSONType(items),
			Total:         total,
			CreditApplied: credit,
			AmountPaid:    paid,
			PaymentMethod: method,
			Status:        model.OrderStatusPaid,
		}
		if err := tx.Orders.Create(order); err != nil {
			return err
		}

		if credit > 0 {
			_, balance, err = appendCredit(tx, creditEntry{
				userID:      userID,
				typ:         model.CreditSubtraction,
				amount:      credit,
				description: fmt.Sprintf("商城订单 #%d 抵扣", order.ID),
				orderID:     &order.ID,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	metrics.ObserveOp("checkout", err)
	if err != nil {
		return nil, err
	}

	event := &pubsub.LedgerEvent{
		Type:   pubsub.EventOrderPaid,
		UserID: userID,
		Amount: order.Total,
	}
	if credit > 0 {
		event.Balance = &balance
	}
	s.notifier.publish(ctx, event)
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID int64) ([]*model.Order, error) {
	return s.store.WithContext(ctx).Orders.ListByUser(userID)
}
